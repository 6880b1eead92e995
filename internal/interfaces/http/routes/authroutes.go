package routes

import (
	"github.com/gin-gonic/gin"

	authhandler "github.com/orris-inc/warden/internal/interfaces/http/handlers/auth"
	"github.com/orris-inc/warden/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication routes.
type AuthRouteConfig struct {
	AuthHandler      *authhandler.Handler
	AuthMiddleware   *middleware.AuthMiddleware
	AccessMiddleware *middleware.AccessMiddleware
	LoginPath        string
}

// SetupAuthRoutes configures authentication routes. The password routes
// stay reachable while a change is pending; the active check still applies.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	engine.GET(cfg.LoginPath, cfg.AuthHandler.LoginPage)

	auth := engine.Group("/auth")
	{
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/logout", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Logout)

		password := auth.Group("/password")
		password.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AccessMiddleware.RequireRole())
		{
			password.GET("", cfg.AuthHandler.PasswordForm)
			password.PUT("", cfg.AuthHandler.ChangePassword)
		}
	}
}

// SetupAPIRoutes configures JSON-only routes for bearer clients.
func SetupAPIRoutes(engine *gin.Engine, prefix string, cfg *AuthRouteConfig) {
	api := engine.Group(prefix)
	api.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AccessMiddleware.RequireRole())
	{
		api.GET("/me", cfg.AuthHandler.Me)
	}
}
