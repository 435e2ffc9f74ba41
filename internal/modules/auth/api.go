// Package auth provides bot module middleware for authentication on bot commands
package auth

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/bot"
	"github.com/quaver/qbot/internal/router"
)

// RouteConfigKey is used in route/group data configuration
const RouteConfigKey = "auth"

var (
	// ErrNotAuthorized is returned when user is not authorized to execute this command
	ErrNotAuthorized = errors.New("not authorized")
)

// RouteConfig holds authentication requirements for given route or route group
type RouteConfig struct {
	Permissions int64
	RoleIDs     []string
	// Silent routes do not report denial back to caller
	Silent bool
}

// Moderator returns route config requiring configured moderator permission
func Moderator(config *bot.Configuration) *RouteConfig {
	return &RouteConfig{
		Permissions: config.Config.Server.ModeratorPermission,
	}
}

// Admin returns route config requiring administrator permission
func Admin() *RouteConfig {
	return &RouteConfig{
		Permissions: discordgo.PermissionAdministrator,
	}
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	config.Router.AppendMiddleware(mod.middlewareAuth)

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {

}

func (mod *module) Shutdown(config *bot.Configuration) {

}

func (mod *module) middlewareAuth(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		raw := ctx.Route.Get(RouteConfigKey)

		var auth *RouteConfig

		switch v := raw.(type) {
		case *RouteConfig:
			auth = v
		case RouteConfig:
			auth = &v
		default:
			return handler(ctx)
		}

		if mod.config.HasPermission(ctx.Message, auth.Permissions, auth.RoleIDs) {
			return handler(ctx)
		}

		if auth.Silent {
			return bot.ErrNoReply
		}

		return ErrNotAuthorized
	}
}
