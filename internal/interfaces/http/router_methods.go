package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/orris-inc/warden/internal/interfaces/http/middleware"
	"github.com/orris-inc/warden/internal/interfaces/http/routes"
	"github.com/orris-inc/warden/internal/shared/utils"
)

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() error {
	c := r.container
	cfg := c.cfg

	if err := utils.RegisterGinValidators(); err != nil {
		return err
	}

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CustomLogger(c.log.Named("http")))
	r.engine.Use(middleware.Recovery(c.log))
	r.engine.Use(middleware.Metrics(c.svcs.metrics))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.CSRF())

	r.engine.GET("/health", healthHandler(c.db, c.redis))
	r.engine.GET("/metrics", gin.WrapH(c.svcs.metrics.Handler()))
	if cfg.Server.Mode != gin.ReleaseMode {
		r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authCfg := &routes.AuthRouteConfig{
		AuthHandler:      c.hdlrs.authHandler,
		AuthMiddleware:   c.authMiddleware,
		AccessMiddleware: c.accessMiddleware,
		LoginPath:        cfg.Access.LoginPath,
	}
	routes.SetupAuthRoutes(r.engine, authCfg)
	routes.SetupAPIRoutes(r.engine, cfg.Access.APIPrefix, authCfg)

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		UserGroupHandler: c.hdlrs.userGroupHandler,
		AuthMiddleware:   c.authMiddleware,
		AccessMiddleware: c.accessMiddleware,
		AdminRoles:       cfg.Access.AdminRoles,
	})

	return nil
}
