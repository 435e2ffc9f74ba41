package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
)

const entitlementQuery = `
select
  id,
  discord_id,
  donator_end_time,
  usergroups
from users
where
  discord_id = ?
limit 1
`

// SQLEntitlements reads entitlement records from billing database
type SQLEntitlements struct {
	db    *sqlx.DB
	query string
}

var _ EntitlementStore = (*SQLEntitlements)(nil)

// OpenEntitlements connects to billing database, capping pool at maxOpen connections
func OpenEntitlements(driver, dsn string, maxOpen int) (*SQLEntitlements, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return NewEntitlements(db, maxOpen), nil
}

// NewEntitlements wraps existing database handle
func NewEntitlements(db *sqlx.DB, maxOpen int) *SQLEntitlements {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}

	return &SQLEntitlements{
		db:    db,
		query: db.Rebind(entitlementQuery),
	}
}

// Entitlement returns billing record for discord id or ErrRecordNotFound
func (s *SQLEntitlements) Entitlement(ctx context.Context, discordID string) (*EntitlementRecord, error) {
	rec := &EntitlementRecord{}

	err := s.db.GetContext(ctx, rec, s.query, discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("querying entitlement %s: %w", discordID, err)
	}

	return rec, nil
}

// Ping checks database connectivity
func (s *SQLEntitlements) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes database pool
func (s *SQLEntitlements) Close() error {
	return s.db.Close()
}
