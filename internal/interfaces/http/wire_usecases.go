package http

import (
	authUsecases "github.com/orris-inc/warden/internal/application/auth/usecases"
	groupUsecases "github.com/orris-inc/warden/internal/application/usergroup/usecases"
	"github.com/orris-inc/warden/internal/infrastructure/config"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// allUseCases groups the use cases by bounded context.
type allUseCases struct {
	// User groups
	listGroups       *groupUsecases.ListUserGroupsUseCase
	searchGroups     *groupUsecases.SearchUserGroupsUseCase
	getGroup         *groupUsecases.GetUserGroupUseCase
	createGroup      *groupUsecases.CreateUserGroupUseCase
	updateGroup      *groupUsecases.UpdateUserGroupUseCase
	deleteGroup      *groupUsecases.DeleteUserGroupUseCase
	assignUsers      *groupUsecases.AssignUsersUseCase
	removeUser       *groupUsecases.RemoveUserUseCase
	groupPermissions *groupUsecases.GroupPermissionsUseCase

	// Auth
	login          *authUsecases.LoginUseCase
	logout         *authUsecases.LogoutUseCase
	changePassword *authUsecases.ChangePasswordUseCase
}

func newUseCases(repos *repositories, svcs *services, cfg *config.Config, log logger.Interface) *allUseCases {
	groupLog := log.Named("usergroup")
	authLog := log.Named("auth")

	return &allUseCases{
		listGroups:   groupUsecases.NewListUserGroupsUseCase(repos.userGroupRepo, repos.membershipRepo, groupLog),
		searchGroups: groupUsecases.NewSearchUserGroupsUseCase(repos.userGroupRepo, groupLog),
		getGroup: groupUsecases.NewGetUserGroupUseCase(
			repos.userGroupRepo, repos.membershipRepo, repos.userRepo, svcs.policyStore, svcs.markdown, groupLog,
		),
		createGroup: groupUsecases.NewCreateUserGroupUseCase(
			repos.userGroupRepo, svcs.policyStore, svcs.enforcer, svcs.txMgr, svcs.markdown, svcs.recorder, groupLog,
		),
		updateGroup: groupUsecases.NewUpdateUserGroupUseCase(
			repos.userGroupRepo, svcs.policyStore, svcs.enforcer, svcs.txMgr, svcs.markdown, svcs.recorder, groupLog,
		),
		deleteGroup: groupUsecases.NewDeleteUserGroupUseCase(
			repos.userGroupRepo, repos.membershipRepo, svcs.policyStore, svcs.enforcer, svcs.txMgr, svcs.recorder, groupLog,
		),
		assignUsers: groupUsecases.NewAssignUsersUseCase(
			repos.userGroupRepo, repos.membershipRepo, repos.userRepo, svcs.txMgr, svcs.recorder, groupLog,
		),
		removeUser: groupUsecases.NewRemoveUserUseCase(repos.userGroupRepo, repos.membershipRepo, svcs.recorder, groupLog),
		groupPermissions: groupUsecases.NewGroupPermissionsUseCase(
			repos.userGroupRepo, svcs.policyStore, svcs.enforcer, svcs.txMgr, svcs.recorder, groupLog,
		),

		login: authUsecases.NewLoginUseCase(
			repos.userRepo, repos.sessionRepo, svcs.hasher, svcs.jwtSvc, svcs.limiter,
			cfg.Auth, svcs.metrics, svcs.recorder, authLog,
		),
		logout:         authUsecases.NewLogoutUseCase(repos.sessionRepo, svcs.recorder, authLog),
		changePassword: authUsecases.NewChangePasswordUseCase(repos.userRepo, repos.sessionRepo, svcs.hasher, svcs.recorder, authLog),
	}
}
