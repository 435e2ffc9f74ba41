// Package config with configuration models and utilities
package config

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	yaml "gopkg.in/yaml.v2"
)

// Defaults for optional configuration values
const (
	DefaultPrefix       = "!"
	DefaultSyncInterval = 10 * time.Second
	DefaultMaxOpen      = 10
	DefaultListen       = ":8081"
	DefaultSQLDriver    = "mysql"
	DefaultHistoryFile  = "mutes.json"

	HistoryBackendRedis = "redis"
	HistoryBackendFile  = "file"

	DefaultScamTemplate       = "Deleted a message from $USER ($ID). Reason: $REASON"
	DefaultMembershipTemplate = "$USER just bought membership!"
	DefaultShopTemplate       = "$USER just bought $LABEL!"
	DefaultNoHistoryTemplate  = "This user has no mute history."
)

// Environment variables overriding secrets from configuration file
const (
	EnvToken         = "QBOT_TOKEN"
	EnvSecret        = "QBOT_SECRET"
	EnvSQLDSN        = "QBOT_SQL_DSN"
	EnvRedisPassword = "QBOT_REDIS_PASSWORD"
)

var (
	// ErrMissingToken is returned when bot token is not configured
	ErrMissingToken = errors.New("missing token in config")
	// ErrMissingGuild is returned when server id is not configured
	ErrMissingGuild = errors.New("missing server id in config")
	// ErrUnknownHistoryBackend is returned for unsupported mute history backend
	ErrUnknownHistoryBackend = errors.New("unknown history backend")
)

// Read reads configuration
func Read(reader io.Reader) (root *Root, err error) {
	root = &Root{}
	err = yaml.NewDecoder(reader).Decode(root)

	if err == io.EOF {
		err = nil
	}

	return
}

// Write writes configuration
func Write(writer io.Writer, root *Root) (err error) {
	err = yaml.NewEncoder(writer).Encode(root)

	return
}

// ApplyEnv overrides secrets with values from environment, if set
func (root *Root) ApplyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		root.Private.Token = v
	}

	if v := os.Getenv(EnvSecret); v != "" {
		root.Private.API.Secret = v
	}

	if v := os.Getenv(EnvSQLDSN); v != "" {
		root.Private.SQL.DSN = v
	}

	if v := os.Getenv(EnvRedisPassword); v != "" {
		root.Private.Redis.Password = v
	}
}

// Defaults fills unset optional values
func (root *Root) Defaults() {
	if root.Server.Prefix == "" {
		root.Server.Prefix = DefaultPrefix
	}

	if root.Private.SQL.Driver == "" {
		root.Private.SQL.Driver = DefaultSQLDriver
	}

	if root.Private.SQL.MaxOpen == 0 {
		root.Private.SQL.MaxOpen = DefaultMaxOpen
	}

	if root.Private.API.Listen == "" {
		root.Private.API.Listen = DefaultListen
	}

	if root.Private.History.Backend == "" {
		root.Private.History.Backend = HistoryBackendRedis
	}

	if root.Private.History.File == "" {
		root.Private.History.File = DefaultHistoryFile
	}

	if root.Server.Sync.Interval <= 0 {
		root.Server.Sync.Interval = DefaultSyncInterval
	}

	if root.Server.ModeratorPermission == 0 {
		root.Server.ModeratorPermission = discordgo.PermissionManageMessages
	}

	t := &root.Server.Templates

	if t.Scam == "" {
		t.Scam = DefaultScamTemplate
	}

	if t.Membership == "" {
		t.Membership = DefaultMembershipTemplate
	}

	if t.Shop == "" {
		t.Shop = DefaultShopTemplate
	}

	if t.NoHistory == "" {
		t.NoHistory = DefaultNoHistoryTemplate
	}
}

// Validate checks values required for startup
func (root *Root) Validate() error {
	if root.Private.Token == "" {
		return ErrMissingToken
	}

	if root.Server.GuildID == "" {
		return ErrMissingGuild
	}

	switch root.Private.History.Backend {
	case HistoryBackendRedis, HistoryBackendFile:
	default:
		return ErrUnknownHistoryBackend
	}

	return nil
}
