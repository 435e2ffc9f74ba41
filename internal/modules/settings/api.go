// Package settings provides bot module for runtime per-guild configuration overrides
package settings

import (
	"errors"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/modules/auth"
	"github.com/quaver/qbot/internal/router"
)

var (
	// ErrInvalidArguments is returned on malformed command
	ErrInvalidArguments = errors.New("invalid argument number")
	// ErrInvalidKey is returned when key is not in scope.key form
	ErrInvalidKey = errors.New("key must be in scope.key form")
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

	group := config.Router.Group("config").SetDescription("runtime settings")
	group.Set(auth.RouteConfigKey, auth.Admin())

	group.On("config.get", "get setting: config.get <scope.key>", mod.commandGet)
	group.On("config.set", "set setting: config.set <scope.key> <value>", mod.commandSet)
	group.On("config.del", "delete setting: config.del <scope.key>", mod.commandDel)
	group.On("config.list", "list settings: config.list [mask]", mod.commandList)

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {

}

func (mod *module) Shutdown(config *bot.Configuration) {

}

func splitKey(raw string) (scope, key string, err error) {
	idx := strings.Index(raw, ".")
	if idx <= 0 || idx == len(raw)-1 {
		return "", "", ErrInvalidKey
	}

	return raw[:idx], raw[idx+1:], nil
}

func (mod *module) commandGet(ctx *router.Context) error {
	if len(ctx.Args) < 2 {
		return ErrInvalidArguments
	}

	scope, key, err := splitKey(ctx.Args.Get(1))
	if err != nil {
		return err
	}

	value, err := mod.config.Settings.ConfigGet(ctx.Message.GuildID, scope, key)
	if err != nil {
		return err
	}

	return ctx.ReplyEmbed("```\n" + value + "```")
}

func (mod *module) commandSet(ctx *router.Context) error {
	if len(ctx.Args) < 3 {
		return ErrInvalidArguments
	}

	scope, key, err := splitKey(ctx.Args.Get(1))
	if err != nil {
		return err
	}

	err = mod.config.Settings.ConfigSet(ctx.Message.GuildID, scope, key, ctx.Args.Join(2))
	if err != nil {
		return err
	}

	mod.config.Reload()

	return nil
}

func (mod *module) commandDel(ctx *router.Context) error {
	if len(ctx.Args) < 2 {
		return ErrInvalidArguments
	}

	scope, key, err := splitKey(ctx.Args.Get(1))
	if err != nil {
		return err
	}

	err = mod.config.Settings.ConfigDel(ctx.Message.GuildID, scope, key)
	if err != nil {
		return err
	}

	mod.config.Reload()

	return nil
}

func (mod *module) commandList(ctx *router.Context) error {
	values, err := mod.config.Settings.ConfigList(ctx.Message.GuildID, ctx.Args.Get(1))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	max := 0

	for k := range values {
		keys = append(keys, k)

		if len(k) > max {
			max = len(k)
		}
	}

	sort.Strings(keys)

	buf := &strings.Builder{}

	buf.WriteString("```\n")

	for _, k := range keys {
		_, _ = buf.WriteString(strings.Repeat(" ", max-len(k)))
		_, _ = buf.WriteString(k)
		_, _ = buf.WriteString(": ")
		_, _ = buf.WriteString(values[k])
		_, _ = buf.WriteString("\n")
	}

	buf.WriteString("```")

	return ctx.ReplyEmbed(buf.String())
}
