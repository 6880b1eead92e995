package http

import (
	"github.com/gin-gonic/gin"

	_ "github.com/orris-inc/warden/docs"
)

// Router represents the HTTP router configuration
type Router struct {
	engine    *gin.Engine
	container *Container
}

// NewRouter wraps a wired container. Call SetupRoutes before serving.
func NewRouter(c *Container) *Router {
	return &Router{
		engine:    c.engine,
		container: c,
	}
}

// GetEngine returns the gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Container exposes the wired dependencies for the server command.
func (r *Router) Container() *Container {
	return r.container
}
