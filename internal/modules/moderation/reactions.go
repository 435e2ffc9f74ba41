package moderation

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

const (
	emojiCheckMark = "✅"
	emojiCross     = "❌"
	emojiQuestion  = "❓"
)

var voteEmojis = []string{emojiCheckMark, emojiCross, emojiQuestion}

func (mod *Module) isWebhookBot(msg *discordgo.Message) bool {
	for _, id := range mod.config.Config.Server.WebhookBots {
		if id == msg.Author.ID || (msg.WebhookID != "" && id == msg.WebhookID) {
			return true
		}
	}

	return false
}

// checkReactions attaches vote reactions to webhook bot posts and stops further checks
func (mod *Module) checkReactions(msg *discordgo.Message) (bool, error) {
	if !mod.isWebhookBot(msg) {
		return false, nil
	}

	var errs []error

	for _, e := range voteEmojis {
		err := mod.config.Session.React(msg.ChannelID, msg.ID, e)
		if err != nil {
			errs = append(errs, err)
		}
	}

	actionCount.WithLabelValues("react").Inc()

	return true, errors.Join(errs...)
}
