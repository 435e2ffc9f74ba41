// Package help provides bot module for command help message
package help

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/router"
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	config.Router.Group("info").SetDescription("general commands").On("help", "prints help", mod.commandHelp)

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {

}

func (mod *module) Shutdown(config *bot.Configuration) {

}

// render lists routes grouped by registration, hidden routes are skipped
func render(r *router.Router, prefix string) string {
	max := 0

	for _, v := range r.Routes {
		if len(v.Name) > max {
			max = len(v.Name)
		}
	}

	buf := &strings.Builder{}

	buf.WriteString("```\n")

	for _, g := range r.Groups {
		_, _ = buf.WriteString("\n==" + strings.ToUpper(g.Name) + "==")

		if g.Description != "" {
			_, _ = buf.WriteString(" " + g.Description)
		}

		buf.WriteString("\n")

		for _, v := range g.Routes {
			if v.Description == "" {
				continue
			}

			_, _ = buf.WriteString(strings.Repeat(" ", max-len(v.Name)))
			_, _ = buf.WriteString(prefix + v.Name)
			_, _ = buf.WriteString(": ")
			_, _ = buf.WriteString(v.Description)
			buf.WriteString("\n")
		}
	}

	buf.WriteString("```")

	return buf.String()
}

func (mod *module) commandHelp(ctx *router.Context) error {
	return ctx.ReplyEmbed(render(ctx.Route.Router, mod.config.Prefix(ctx.Message.GuildID)))
}
