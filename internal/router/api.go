// Package router provides command router
package router

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/discord"
)

// Args provide abstraction for getting arguments
type Args []string

// Get returns bound-safe argument by index
func (args Args) Get(i int) string {
	if len(args) <= i {
		return ""
	}

	return args[i]
}

// Join joins arguments starting with given index
func (args Args) Join(i int) string {
	if len(args) <= i {
		return ""
	}

	return strings.Join(args[i:], " ")
}

// MatcherFunc implements matching message, returning submatches on success
type MatcherFunc func(raw string) ([]string, bool)

// MiddlewareFunc implements command wrapping
type MiddlewareFunc func(handler HandlerFunc) HandlerFunc

// HandlerFunc implements command execution
type HandlerFunc func(ctx *Context) error

// Context simplifies request handling
type Context struct {
	Session discord.Session
	Message *discordgo.Message
	Route   *Route
	Args    Args
	Match   []string
}

// React reacts to original message with emoji
func (ctx *Context) React(emoji string) error {
	return ctx.Session.React(ctx.Message.ChannelID, ctx.Message.ID, emoji)
}

// ReplyEmbed replies to original message with embed
func (ctx *Context) ReplyEmbed(desc string) error {
	_, err := ctx.Session.SendEmbed(ctx.Message.ChannelID, &discordgo.MessageEmbed{
		Description: desc,
	})

	return err
}

// Reply replies to original message
func (ctx *Context) Reply(content string) (*discordgo.Message, error) {
	return ctx.Session.Send(ctx.Message.ChannelID, content)
}

// Submatch returns first non-empty submatch among given indexes
func (ctx *Context) Submatch(idx ...int) string {
	for _, i := range idx {
		if i < len(ctx.Match) && ctx.Match[i] != "" {
			return ctx.Match[i]
		}
	}

	return ""
}

// NewRouter returns new router instance
func NewRouter() *Router {
	return &Router{
		index: make(map[string]*Route),
	}
}

// Route describes command route
type Route struct {
	Router      *Router
	Name        string
	Description string
	Matcher     MatcherFunc
	Handler     HandlerFunc
	Baked       HandlerFunc
	Data        map[string]interface{}
	Middleware  []MiddlewareFunc
	Groups      []*Group
}

// Set sets route config value
func (route *Route) Set(k string, v interface{}) *Route {
	route.Data[k] = v

	return route
}

// Get returns route (or any of parent groups) config value
func (route *Route) Get(k string) interface{} {
	if v, ok := route.Data[k]; ok {
		return v
	}

	for _, g := range route.Groups {
		if v, ok := g.Data[k]; ok {
			return v
		}
	}

	return nil
}
