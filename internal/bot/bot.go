package bot

import (
	"context"
	"sync"
)

// Bot is a main implementation of bot
type Bot struct {
	Configuration
	m           *sync.RWMutex
	servers     map[string]*server
	roleModules []RoleModule
}

// Serve opens discord session and blocks until context is done
func (bot *Bot) Serve(ctx context.Context) error {
	err := bot.Discord.Open()
	if err != nil {
		return err
	}

	bot.Log.WithField("guild", bot.GuildID()).Info("Running")

	<-ctx.Done()

	bot.Log.Info("Shutting down")

	for _, m := range bot.Modules {
		m.Shutdown(&bot.Configuration)
	}

	return bot.Discord.Close()
}

// Reload performs reload of all configuration values in configured modules
func (bot *Bot) Reload() {
	bot.m.RLock()

	ids := make([]string, 0, len(bot.servers))
	for k := range bot.servers {
		ids = append(ids, k)
	}

	bot.m.RUnlock()

	for _, k := range ids {
		guild, err := bot.Session.Guild(k)
		if err != nil {
			bot.Log.WithError(err).WithField("guild", k).Error("Getting guild")
			continue
		}

		bot.configure(bot.guild(guild.ID), guild.ID)

		for _, m := range bot.Modules {
			m.Configure(&bot.Configuration, guild)
		}
	}
}

func (bot *Bot) configure(s *server, guildID string) {
	prefix, err := bot.Settings.ConfigGet(guildID, "global", "prefix")
	if err != nil {
		bot.Log.WithError(err).WithField("guild", guildID).Error("Getting server prefix")
		return
	}

	if prefix == "" {
		prefix = bot.Config.Server.Prefix
	}

	s.setPrefix(prefix)
}
