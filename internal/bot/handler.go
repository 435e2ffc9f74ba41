package bot

import (
	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) handlerMessageCreate(_ *discordgo.Session, messageCreate *discordgo.MessageCreate) {
	bot.handleMessage(messageCreate.Message)
}

func (bot *Bot) handleMessage(msg *discordgo.Message) {
	if msg.GuildID != bot.GuildID() || msg.Author == nil || msg.Author.ID == bot.Session.UserID() {
		return
	}

	for _, res := range bot.RunChecks(msg) {
		if res.Err == nil {
			continue
		}

		bot.Log.WithError(res.Err).
			WithField("check", res.Name).
			WithField("channel", msg.ChannelID).
			WithField("message", msg.ID).
			WithField("author", msg.Author.ID).
			Error("Message check failed")
	}
}

func (bot *Bot) handlerGuildCreate(_ *discordgo.Session, guildCreate *discordgo.GuildCreate) {
	if guildCreate.ID != bot.GuildID() {
		bot.Log.WithField("guild", guildCreate.ID).Warn("Ignoring unconfigured guild")
		return
	}

	bot.configure(bot.guild(guildCreate.ID), guildCreate.ID)

	for _, m := range bot.Modules {
		m.Configure(&bot.Configuration, guildCreate.Guild)
	}

	if bot.Discord == nil {
		return
	}

	err := bot.Discord.RequestGuildMembers(guildCreate.ID, "", 0, false)
	if err != nil {
		bot.Log.WithError(err).WithField("guild", guildCreate.ID).Error("Requesting members")
	}
}
