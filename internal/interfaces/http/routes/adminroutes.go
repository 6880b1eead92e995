package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/interfaces/http/handlers/admin/usergroup"
	"github.com/orris-inc/warden/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for the admin surface.
type AdminRouteConfig struct {
	UserGroupHandler *usergroup.Handler
	AuthMiddleware   *middleware.AuthMiddleware
	AccessMiddleware *middleware.AccessMiddleware
	AdminRoles       []string
}

// SetupAdminRoutes configures the admin routes. Every route requires an
// admin role, a settled password and the route's own capability.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(
		cfg.AuthMiddleware.RequireAuth(),
		cfg.AccessMiddleware.RequireRole(cfg.AdminRoles...),
		cfg.AccessMiddleware.ForcePasswordChange(),
	)

	can := func(name string) gin.HandlerFunc {
		return cfg.AccessMiddleware.RequirePermission(permission.MustCapability(name))
	}

	groups := admin.Group("/user-groups")
	{
		h := cfg.UserGroupHandler

		// Named routes must come before /:id.
		groups.GET("/ajax", can("view user groups"), h.Search)

		groups.GET("", can("view user groups"), h.List)
		groups.POST("", can("create user groups"), h.Create)
		groups.GET("/:id", can("view user groups"), h.Get)
		groups.PUT("/:id", can("edit user groups"), h.Update)
		groups.DELETE("/:id", can("delete user groups"), h.Delete)

		groups.GET("/:id/assign-users", can("assign user groups"), h.AssignForm)
		groups.POST("/:id/assign-users", can("assign user groups"), h.AssignUsers)
		groups.DELETE("/:id/users/:userId", can("assign user groups"), h.RemoveUser)

		groups.GET("/:id/permissions", can("manage permissions user groups"), h.Permissions)
		groups.PUT("/:id/permissions", can("manage permissions user groups"), h.UpdatePermissions)
	}
}
