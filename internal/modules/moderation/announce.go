package moderation

import (
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/bot"
)

// RolesChanged announces newly bought membership and shop roles
func (mod *Module) RolesChanged(change *bot.RoleChange) {
	server := &mod.config.Config.Server

	var user *discordgo.User
	if change.Member != nil {
		user = change.Member.User
	}

	added := change.Added()
	sort.Strings(added)

	for _, r := range added {
		if r == server.MembershipRole && server.MembershipRole != "" {
			mod.announce(change, render(server.Templates.Membership, user, "", ""))
		}

		if name := server.ShopRoles[r]; name != "" {
			mod.announce(change, render(server.Templates.Shop, user, "", name))
		}
	}
}

func (mod *Module) announce(change *bot.RoleChange, text string) {
	channelID := mod.config.Config.Server.Channels.Membership
	log := mod.config.Log.WithField("user", change.UserID)

	if channelID == "" {
		log.Warn("Membership channel is not configured, skipping announcement")
		return
	}

	_, err := mod.config.Session.SendEmbed(channelID, &discordgo.MessageEmbed{
		Description: text,
		Color:       mod.color,
	})
	if err != nil {
		log.WithError(err).Error("Announcing membership")
		return
	}

	actionCount.WithLabelValues("announce").Inc()
}
