package router

import (
	"encoding/csv"
	"errors"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/quaver/qbot/internal/discord"
)

var (
	// ErrNotMatched is returned when unknown command is issued
	ErrNotMatched = errors.New("command not matched")
)

// Router implements routing dispatch, routes are tried in registration order
type Router struct {
	Routes     []*Route
	Groups     []*Group
	Middleware []MiddlewareFunc
	index      map[string]*Route
}

func splitArgs(raw string) Args {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = ' '
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	args, err := reader.Read()
	if err != nil {
		return strings.Fields(raw)
	}

	return args
}

// Dispatch tries to find matching route and execute it
func (router *Router) Dispatch(session discord.Session, prefix string, msg *discordgo.Message) error {
	if msg.Author == nil || msg.Author.ID == session.UserID() {
		return ErrNotMatched
	}

	raw := msg.Content
	if prefix == "" || !strings.HasPrefix(raw, prefix) {
		return ErrNotMatched
	}

	raw = strings.TrimPrefix(raw, prefix)

	for _, r := range router.Routes {
		match, ok := r.Matcher(raw)
		if !ok {
			continue
		}

		if r.Baked == nil {
			var middlewares []MiddlewareFunc

			middlewares = append(middlewares, router.Middleware...)

			for _, g := range r.Groups {
				middlewares = append(middlewares, g.Middleware...)
			}

			middlewares = append(middlewares, r.Middleware...)

			r.Baked = r.Handler
			for i := len(middlewares) - 1; i >= 0; i-- {
				r.Baked = middlewares[i](r.Baked)
			}
		}

		return r.Baked(&Context{
			Session: session,
			Message: msg,
			Route:   r,
			Args:    splitArgs(raw),
			Match:   match,
		})
	}

	return ErrNotMatched
}

// Group returns group with given name
func (router *Router) Group(name string) *Group {
	for _, g := range router.Groups {
		if g.Name == name {
			return g
		}
	}

	g := &Group{
		Name:   name,
		Router: router,
		Data:   make(map[string]interface{}),
	}

	router.Groups = append(router.Groups, g)

	return g
}

// Route return route with given parameters
func (router *Router) Route(matcher MatcherFunc, name, desc string, handler HandlerFunc) (route *Route) {
	var ok bool
	if route, ok = router.index[name]; !ok {
		route = &Route{
			Name:        name,
			Description: desc,
			Matcher:     matcher,
			Handler:     handler,
			Router:      router,
			Data:        make(map[string]interface{}),
		}
		router.index[name] = route
		router.Routes = append(router.Routes, route)
	}

	return
}

func nameMatcher(name string) MatcherFunc {
	return func(raw string) ([]string, bool) {
		parts := strings.Fields(raw)

		if len(parts) > 0 && parts[0] == name {
			return parts, true
		}

		return nil, false
	}
}

func regexMatcher(reg *regexp.Regexp) MatcherFunc {
	return func(raw string) ([]string, bool) {
		m := reg.FindStringSubmatch(raw)

		return m, m != nil
	}
}

// On creates new route in given group using name matcher
func (router *Router) On(group, name, desc string, handler HandlerFunc) (route *Route) {
	return router.Group(group).On(name, desc, handler)
}

// OnRegex creates new route in given group using regex matcher
func (router *Router) OnRegex(group, name, desc string, reg *regexp.Regexp, handler HandlerFunc) (route *Route) {
	return router.Group(group).OnRegex(name, desc, reg, handler)
}

// AppendMiddleware append middleware to end of the chain
func (router *Router) AppendMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append(router.Middleware, middleware)
}

// PrependMiddleware append middleware to beginning of the chain
func (router *Router) PrependMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append([]MiddlewareFunc{middleware}, router.Middleware...)
}
