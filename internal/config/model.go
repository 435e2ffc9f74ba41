package config

import (
	"time"
)

// Redis connection part of configuration
type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SQL billing database connection
type SQL struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	MaxOpen int    `yaml:"max_open"`
}

// API is internal REST endpoint configuration
type API struct {
	Listen  string `yaml:"listen"`
	Secret  string `yaml:"secret"`
	Metrics bool   `yaml:"metrics"`
}

// History selects mute history backend
type History struct {
	Backend string `yaml:"backend"`
	File    string `yaml:"file"`
}

// Private part of configuration
type Private struct {
	Token    string  `yaml:"token"`
	LogLevel string  `yaml:"log_level"`
	LogJSON  bool    `yaml:"log_json"`
	Redis    Redis   `yaml:"redis"`
	SQL      SQL     `yaml:"sql"`
	API      API     `yaml:"api"`
	History  History `yaml:"history"`
}

// Channels used for bot announcements
type Channels struct {
	Deleted    string `yaml:"deleted"`
	Membership string `yaml:"membership"`
}

// Sync controls donator role reconciliation
type Sync struct {
	Enabled  *bool         `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Scam controls scam-content detection
type Scam struct {
	Enabled   bool     `yaml:"enabled"`
	BodyWords bool     `yaml:"body_words"`
	Words     []string `yaml:"words"`
}

// Templates for announcements, $USER, $ID, $REASON and $LABEL are substituted
type Templates struct {
	Scam       string `yaml:"scam"`
	Membership string `yaml:"membership"`
	Shop       string `yaml:"shop"`
	NoHistory  string `yaml:"no_history"`
}

// Server specific part of configuration
type Server struct {
	GuildID             string            `yaml:"id"`
	Prefix              string            `yaml:"prefix"`
	DonatorRole         string            `yaml:"donator_role"`
	MembershipRole      string            `yaml:"membership_role"`
	ShopRoles           map[string]string `yaml:"shop_roles"`
	WebhookBots         []string          `yaml:"webhook_bots"`
	Channels            Channels          `yaml:"channels"`
	Sync                Sync              `yaml:"sync"`
	Scam                Scam              `yaml:"scam"`
	Templates           Templates         `yaml:"templates"`
	Color               string            `yaml:"color"`
	ModeratorPermission int64             `yaml:"moderator_permission"`
	Admins              []string          `yaml:"admins"`
}

// Root of configuration
type Root struct {
	Server  Server  `yaml:"server"`
	Private Private `yaml:"private"`
}

// SyncEnabled reports whether reconciliation loop should run
func (s *Server) SyncEnabled() bool {
	return s.Sync.Enabled == nil || *s.Sync.Enabled
}
