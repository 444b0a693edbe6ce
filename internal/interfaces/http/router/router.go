package router

import (
	"github.com/gin-gonic/gin"
)

// APIPrefix is where every catalog API group is mounted
const APIPrefix = "/api/v1"

// Route binds one method and path to a handler
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Group is one API area; its middleware runs only for its own routes
type Group struct {
	Prefix     string
	Middleware []gin.HandlerFunc
	Routes     []Route
}

// Mount registers groups under APIPrefix
func Mount(engine *gin.Engine, groups ...Group) {
	api := engine.Group(APIPrefix)
	for _, g := range groups {
		rg := api.Group(g.Prefix, g.Middleware...)
		for _, r := range g.Routes {
			rg.Handle(r.Method, r.Path, r.Handler)
		}
	}
}
