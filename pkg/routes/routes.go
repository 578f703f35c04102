// Package routes provides a detached route collection that an app returns
// from its entrypoint so the host can mount it under the app's prefix.
//
//	func Register(engine *gin.Engine) *routes.Collection {
//	    rc := routes.New()
//	    rc.GET("/posts", listPosts)
//	    return rc
//	}
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is one declared handler chain.
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Collection accumulates routes and group middleware without touching an
// engine. Paths are relative to the prefix the collection is mounted at.
type Collection struct {
	middleware []gin.HandlerFunc
	routes     []Route
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{}
}

// Use appends middleware applied to every route of the collection.
func (c *Collection) Use(middleware ...gin.HandlerFunc) *Collection {
	c.middleware = append(c.middleware, middleware...)
	return c
}

// Handle declares a route. Validation of method and path is left to the
// engine at mount time.
func (c *Collection) Handle(method, path string, handlers ...gin.HandlerFunc) *Collection {
	c.routes = append(c.routes, Route{Method: method, Path: path, Handlers: handlers})
	return c
}

func (c *Collection) GET(path string, handlers ...gin.HandlerFunc) *Collection {
	return c.Handle(http.MethodGet, path, handlers...)
}

func (c *Collection) POST(path string, handlers ...gin.HandlerFunc) *Collection {
	return c.Handle(http.MethodPost, path, handlers...)
}

func (c *Collection) PUT(path string, handlers ...gin.HandlerFunc) *Collection {
	return c.Handle(http.MethodPut, path, handlers...)
}

func (c *Collection) PATCH(path string, handlers ...gin.HandlerFunc) *Collection {
	return c.Handle(http.MethodPatch, path, handlers...)
}

func (c *Collection) DELETE(path string, handlers ...gin.HandlerFunc) *Collection {
	return c.Handle(http.MethodDelete, path, handlers...)
}

func (c *Collection) OPTIONS(path string, handlers ...gin.HandlerFunc) *Collection {
	return c.Handle(http.MethodOptions, path, handlers...)
}

func (c *Collection) HEAD(path string, handlers ...gin.HandlerFunc) *Collection {
	return c.Handle(http.MethodHead, path, handlers...)
}

// Routes returns the declared routes in declaration order.
func (c *Collection) Routes() []Route {
	out := make([]Route, len(c.routes))
	copy(out, c.routes)
	return out
}

// Middleware returns the group middleware.
func (c *Collection) Middleware() []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, len(c.middleware))
	copy(out, c.middleware)
	return out
}

// Len returns the number of declared routes.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.routes)
}
