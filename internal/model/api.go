// Package model provides billing, mute history and settings repositories
package model

import (
	"context"
	"errors"
	"time"
)

// HistoryLimit is the number of most recent mute reasons returned by history reads
const HistoryLimit = 6

var (
	// ErrRecordNotFound is returned when no entitlement record or mute history exists for id
	ErrRecordNotFound = errors.New("record not found")
)

// EntitlementRecord is the billing row linked to a discord account
type EntitlementRecord struct {
	ID         int64  `db:"id"`
	DiscordID  string `db:"discord_id"`
	DonatorEnd int64  `db:"donator_end_time"`
	UserGroups int64  `db:"usergroups"`
}

// Permanent reports whether entitlement never expires
func (rec *EntitlementRecord) Permanent() bool {
	return rec.DonatorEnd == 0
}

// Active reports whether entitlement is valid at given time
func (rec *EntitlementRecord) Active(now time.Time) bool {
	return rec.Permanent() || rec.DonatorEnd > now.UnixMilli()
}

// EntitlementStore looks up billing records by discord id
type EntitlementStore interface {
	Entitlement(ctx context.Context, discordID string) (*EntitlementRecord, error)
}

// MuteHistoryStore keeps ordered mute reasons per user
type MuteHistoryStore interface {
	AppendMute(ctx context.Context, guildID, userID, reason string) error
	MuteHistory(ctx context.Context, guildID, userID string, limit int) ([]string, error)
}

// Settings stores per-guild runtime configuration overrides
type Settings interface {
	ConfigGet(guildID, scope, key string) (string, error)
	ConfigSet(guildID, scope, key, value string) error
	ConfigDel(guildID, scope, key string) error
	// ConfigList returns values keyed by "scope.key" matching glob mask
	ConfigList(guildID, mask string) (map[string]string, error)
}

func tail(list []string, limit int) []string {
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}

	return append([]string(nil), list...)
}
