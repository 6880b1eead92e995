package http

import (
	"github.com/orris-inc/warden/internal/infrastructure/config"
	"github.com/orris-inc/warden/internal/interfaces/http/handlers/admin/usergroup"
	authhandler "github.com/orris-inc/warden/internal/interfaces/http/handlers/auth"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type allHandlers struct {
	userGroupHandler *usergroup.Handler
	authHandler      *authhandler.Handler
}

func newHandlers(ucs *allUseCases, svcs *services, cfg *config.Config, log logger.Interface) *allHandlers {
	return &allHandlers{
		userGroupHandler: usergroup.NewHandler(
			ucs.listGroups,
			ucs.searchGroups,
			ucs.getGroup,
			ucs.createGroup,
			ucs.updateGroup,
			ucs.deleteGroup,
			ucs.assignUsers,
			ucs.removeUser,
			ucs.groupPermissions,
			log.Named("handler.usergroup"),
		),
		authHandler: authhandler.NewHandler(
			ucs.login,
			ucs.logout,
			ucs.changePassword,
			svcs.access,
			svcs.flash,
			cfg.Auth.Cookie,
			log.Named("handler.auth"),
		),
	}
}
