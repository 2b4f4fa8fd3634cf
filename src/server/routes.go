// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import "github.com/gin-gonic/gin"

// A HandlerFunc is a function that can be used for handling a given request or as a middleware
type HandlerFunc func(*Context)

// RouterGroup is used internally to configure router, a RouterGroup is associated with a prefix
// and an array of handlers (middleware)
type RouterGroup struct {
	gin.RouterGroup
}

// wrap turns a HandlerFunc into a gin.HandlerFunc
func (hf HandlerFunc) wrap() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		hf(&Context{Context: ctx})
	}
}

// wrapContextFuncs returns a slice of gin.HandlerFunc from a slice of HandlerFunc
func wrapContextFuncs(handlers ...HandlerFunc) []gin.HandlerFunc {
	wrappedHandlers := make([]gin.HandlerFunc, len(handlers))
	for i, hf := range handlers {
		wrappedHandlers[i] = hf.wrap()
	}
	return wrappedHandlers
}

// Group creates a new router group. You should add all the routes that have common middlewares or the same path prefix.
func (rg *RouterGroup) Group(relativePath string, handlers ...HandlerFunc) *RouterGroup {
	return &RouterGroup{
		RouterGroup: *rg.RouterGroup.Group(relativePath, wrapContextFuncs(handlers...)...),
	}
}

// Use adds middleware to the group.
func (rg *RouterGroup) Use(middleware ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.Use(wrapContextFuncs(middleware...)...)
}

// Handle registers a new request handle and middleware with the given path and method.
func (rg *RouterGroup) Handle(httpMethod, relativePath string, handlers ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.Handle(httpMethod, relativePath, wrapContextFuncs(handlers...)...)
}
