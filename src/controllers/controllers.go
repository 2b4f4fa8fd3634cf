// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package controllers

import (
	"path"

	"github.com/hexya-erp/quickboard/src/server"
)

// A Route is the combination of a URI (Path) and an HTTP Method
type Route struct {
	Path   string
	Method string
}

// String returns the method and path of the route, e.g. "POST /quickboard/generate"
func (r Route) String() string {
	return r.Method + " " + r.Path
}

// A Controller is a server function that is called through
// an http route.
type Controller struct {
	route   Route
	handler server.HandlerFunc
}

// A Group holds the controllers and sub groups sharing a path prefix
// and a set of middlewares.
//
// Groups and controllers are kept in declaration order so that routes
// are always registered in the same order.
type Group struct {
	relativePath string
	controllers  []*Controller
	groups       []*Group
	middleWares  []server.HandlerFunc
}

// NewGroup returns a pointer to a new empty Group
func NewGroup(relativePath string) *Group {
	return &Group{relativePath: relativePath}
}

// AddGroup adds a sub-group with the given relativePath and returns it.
// It panics if the group already exists.
func (g *Group) AddGroup(relativePath string) *Group {
	if _, exists := g.GetGroup(relativePath); exists {
		log.Panic("Group already exists in this group", "path", relativePath, "group", g.relativePath)
	}
	newGrp := NewGroup(relativePath)
	g.groups = append(g.groups, newGrp)
	return newGrp
}

// GetGroup returns the sub group of this group for the given relativePath.
func (g *Group) GetGroup(relativePath string) (*Group, bool) {
	for _, grp := range g.groups {
		if grp.relativePath == relativePath {
			return grp, true
		}
	}
	return nil, false
}

// HasController returns true if the given method and path already has a controller function
func (g *Group) HasController(method, relativePath string) bool {
	route := Route{Method: method, Path: relativePath}
	for _, ctlr := range g.controllers {
		if ctlr.route == route {
			return true
		}
	}
	return false
}

// AddController sets fnct as the handler of the given method and path.
// It panics if such a controller already exists.
func (g *Group) AddController(method, relativePath string, fnct server.HandlerFunc) {
	if g.HasController(method, relativePath) {
		log.Panic("Trying to add a controller that already exists", "method", method, "path", relativePath)
	}
	g.controllers = append(g.controllers, &Controller{
		route:   Route{Method: method, Path: relativePath},
		handler: fnct,
	})
}

// AddMiddleWare adds the given fnct as a new middleware for this group.
// The last added middleware runs first. Call Next() on the context to
// run the following ones before the end of fnct.
func (g *Group) AddMiddleWare(fnct server.HandlerFunc) {
	g.middleWares = append([]server.HandlerFunc{fnct}, g.middleWares...)
}

// Routes returns the full routes of this group and its sub groups,
// relative to the given prefix.
func (g *Group) Routes(prefix string) []Route {
	base := path.Join(prefix, g.relativePath)
	var res []Route
	for _, ctlr := range g.controllers {
		res = append(res, Route{Method: ctlr.route.Method, Path: path.Join(base, ctlr.route.Path)})
	}
	for _, grp := range g.groups {
		res = append(res, grp.Routes(base)...)
	}
	return res
}

// createRoutes registers the middlewares and controllers of this Group
// and its sub groups in the given server.RouterGroup.
func (g *Group) createRoutes(base *server.RouterGroup) {
	for _, mw := range g.middleWares {
		base.Use(mw)
	}
	for _, ctlr := range g.controllers {
		base.Handle(ctlr.route.Method, ctlr.route.Path, ctlr.handler)
	}
	for _, grp := range g.groups {
		grp.createRoutes(base.Group(grp.relativePath))
	}
}
