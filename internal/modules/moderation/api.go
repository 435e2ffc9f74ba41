// Package moderation provides bot module for message moderation and membership announcements
package moderation

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/modules/auth"
)

// New provides module instance
func New() *Module {
	return &Module{}
}

// Module provides reaction bot, mute history, scam detection and membership announcements
type Module struct {
	config   *bot.Configuration
	detector *Detector
	scam     atomic.Bool
	color    int
}

// Initialize initialized module at start
func (mod *Module) Initialize(config *bot.Configuration) error {
	mod.config = config

	server := &config.Config.Server

	mod.detector = NewDetector(server.Scam.Words, server.Scam.BodyWords)
	mod.scam.Store(server.Scam.Enabled)
	mod.color = parseColor(config, server.Color)

	config.AddCheck("reactions", bot.PriorityReactions, mod.checkReactions)
	config.AddCheck("scam", bot.PriorityScam, mod.checkScam)

	mod.registerCommands(config, &auth.RouteConfig{
		Permissions: server.ModeratorPermission,
		Silent:      true,
	})

	return nil
}

// Configure applies runtime overrides for given guild
func (mod *Module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	enabled := config.Config.Server.Scam.Enabled

	s, err := config.Settings.ConfigGet(guild.ID, "scam", "enabled")
	if err != nil {
		config.Log.WithError(err).Error("Getting scam detection override")
	}

	if s != "" {
		v, perr := strconv.ParseBool(s)
		if perr != nil {
			config.Log.WithError(perr).WithField("value", s).Error("Parsing scam detection override")
		} else {
			enabled = v
		}
	}

	mod.scam.Store(enabled)

	config.Log.WithField("enabled", enabled).Debug("Scam detection configured")
}

// Shutdown tears-down bot module
func (mod *Module) Shutdown(config *bot.Configuration) {

}

// ScamEnabled reports whether scam detection currently runs
func (mod *Module) ScamEnabled() bool {
	return mod.scam.Load()
}

func parseColor(config *bot.Configuration, hex string) int {
	if hex == "" {
		return 0
	}

	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		config.Log.WithError(err).WithField("color", hex).Warn("Parsing announcement color")
		return 0
	}

	r, g, b := c.RGB255()

	return int(r)<<16 | int(g)<<8 | int(b)
}

func render(tpl string, user *discordgo.User, reason, label string) string {
	var tag, id string

	if user != nil {
		tag, id = user.String(), user.ID
	}

	return strings.NewReplacer(
		"$USER", tag,
		"$ID", id,
		"$REASON", reason,
		"$LABEL", label,
	).Replace(tpl)
}
