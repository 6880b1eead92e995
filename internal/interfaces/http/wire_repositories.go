package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/infrastructure/repository"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
// Types match the return types of the repository constructors.
type repositories struct {
	userRepo       user.Repository
	sessionRepo    user.SessionRepository
	roleRepo       permission.RoleRepository
	catalogRepo    permission.CatalogRepository
	userGroupRepo  usergroup.Repository
	membershipRepo usergroup.MembershipRepository
	activityRepo   activity.Repository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		userRepo:       repository.NewUserRepository(db, log),
		sessionRepo:    repository.NewSessionRepository(db, log),
		roleRepo:       repository.NewRoleRepository(db, log),
		catalogRepo:    repository.NewPermissionCatalogRepository(db, log),
		userGroupRepo:  repository.NewUserGroupRepository(db, log),
		membershipRepo: repository.NewMembershipRepository(db, log),
		activityRepo:   repository.NewActivityRepository(db, log),
	}
}
