package router

import (
	"regexp"
)

// Group groups a number of routes
type Group struct {
	Name        string
	Description string
	Routes      []*Route
	Middleware  []MiddlewareFunc
	Router      *Router
	Data        map[string]interface{}
}

// On adds route to group using name matcher
func (group *Group) On(name, desc string, handler HandlerFunc) (route *Route) {
	route = group.Router.Route(nameMatcher(name), name, desc, handler)

	group.AddRoute(route)

	return route
}

// OnRegex adds route to group using regex matcher
func (group *Group) OnRegex(name, desc string, reg *regexp.Regexp, handler HandlerFunc) (route *Route) {
	route = group.Router.Route(regexMatcher(reg), name, desc, handler)

	group.AddRoute(route)

	return route
}

// OnCustom adds route to group using custom matcher
func (group *Group) OnCustom(name, desc string, matcher MatcherFunc, handler HandlerFunc) (route *Route) {
	route = group.Router.Route(matcher, name, desc, handler)

	group.AddRoute(route)

	return route
}

// AddRoute appends route keeping registration order
func (group *Group) AddRoute(route *Route) {
	for _, r := range group.Routes {
		if r.Name == route.Name {
			return
		}
	}

	group.Routes = append(group.Routes, route)
	route.Groups = append(route.Groups, group)
}

// SetDescription sets group description shown in help
func (group *Group) SetDescription(desc string) *Group {
	group.Description = desc

	return group
}

// Set sets group data entry
func (group *Group) Set(k string, v interface{}) *Group {
	group.Data[k] = v

	return group
}

// Get returns group data entry
func (group *Group) Get(k string) interface{} {
	return group.Data[k]
}
