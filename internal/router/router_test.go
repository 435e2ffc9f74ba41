package router

import (
	"errors"
	"regexp"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/discord/discordtest"
	"github.com/stretchr/testify/assert"
)

func message(author, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: author},
	}
}

func TestDispatchOrder(t *testing.T) {
	assert := assert.New(t)
	session := discordtest.New()

	var called []string

	r := NewRouter()
	r.OnRegex("mod", "first", "records mute target", regexp.MustCompile(`^(mute|tempmute)\s+(\d+)`), func(ctx *Context) error {
		called = append(called, "first:"+ctx.Submatch(2))
		return nil
	})
	r.OnRegex("mod", "second", "never reached", regexp.MustCompile(`^mute`), func(ctx *Context) error {
		called = append(called, "second")
		return nil
	})
	r.On("info", "help", "prints help", func(ctx *Context) error {
		called = append(called, "help")
		return nil
	})

	assert.NoError(r.Dispatch(session, "!", message("u1", "!mute 42 spam")))
	assert.NoError(r.Dispatch(session, "!", message("u1", "!help")))
	assert.ErrorIs(r.Dispatch(session, "!", message("u1", "!unknown")), ErrNotMatched)
	assert.ErrorIs(r.Dispatch(session, "!", message("u1", "help")), ErrNotMatched)
	assert.ErrorIs(r.Dispatch(session, "!", message(session.Self, "!help")), ErrNotMatched)

	assert.Equal([]string{"first:42", "help"}, called)
	assert.Len(r.Groups, 2)
	assert.Len(r.Group("mod").Routes, 2)
}

func TestMiddlewareChain(t *testing.T) {
	assert := assert.New(t)
	session := discordtest.New()

	var trace []string

	wrap := func(name string) MiddlewareFunc {
		return func(handler HandlerFunc) HandlerFunc {
			return func(ctx *Context) error {
				trace = append(trace, name)
				return handler(ctx)
			}
		}
	}

	errBoom := errors.New("boom")

	r := NewRouter()
	r.AppendMiddleware(wrap("router"))
	r.PrependMiddleware(wrap("outer"))

	g := r.Group("g")
	g.Middleware = append(g.Middleware, wrap("group"))
	g.On("cmd", "does things", func(ctx *Context) error {
		trace = append(trace, "handler")
		assert.Equal(Args{"cmd", "a b", "c"}, ctx.Args)
		return errBoom
	}).Set("key", 1)

	g.Set("other", 2)

	err := r.Dispatch(session, "!", message("u1", `!cmd "a b" c`))
	assert.ErrorIs(err, errBoom)
	assert.Equal([]string{"outer", "router", "group", "handler"}, trace)

	route := r.Routes[0]
	assert.Equal(1, route.Get("key"))
	assert.Equal(2, route.Get("other"))
	assert.Nil(route.Get("missing"))
}

func TestArgs(t *testing.T) {
	assert := assert.New(t)

	args := Args{"mute", "42", "1d", "being", "rude"}
	assert.Equal("42", args.Get(1))
	assert.Equal("", args.Get(10))
	assert.Equal("1d being rude", args.Join(2))
	assert.Equal("", args.Join(10))

	assert.Equal(Args{"say", `he"llo`}, splitArgs(`say he"llo`))
}
