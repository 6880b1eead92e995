package usergroup

import (
	"context"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/shared/authorization"
)

// Use case interfaces for Handler

type listUserGroupsUseCase interface {
	Execute(ctx context.Context, req dto.ListUserGroupsRequest) (*dto.ListUserGroupsResponse, error)
}

type searchUserGroupsUseCase interface {
	Execute(ctx context.Context, term string) ([]dto.SearchResultResponse, error)
}

type getUserGroupUseCase interface {
	Execute(ctx context.Context, id uint) (*dto.UserGroupDetailResponse, error)
}

type createUserGroupUseCase interface {
	Execute(ctx context.Context, actor *authorization.Principal, req dto.CreateUserGroupRequest) (*dto.UserGroupResponse, error)
}

type updateUserGroupUseCase interface {
	Execute(ctx context.Context, actor *authorization.Principal, id uint, req dto.UpdateUserGroupRequest) (*dto.UserGroupResponse, error)
}

type deleteUserGroupUseCase interface {
	Execute(ctx context.Context, actor *authorization.Principal, id uint) error
}

type assignUsersUseCase interface {
	Form(ctx context.Context, groupID uint) (*dto.AssignUsersFormResponse, error)
	Execute(ctx context.Context, actor *authorization.Principal, groupID uint, req dto.AssignUsersRequest) (*dto.AssignUsersResponse, error)
}

type removeUserUseCase interface {
	Execute(ctx context.Context, actor *authorization.Principal, groupID, userID uint) (bool, error)
}

type groupPermissionsUseCase interface {
	Form(ctx context.Context, groupID uint) (*dto.PermissionFormResponse, error)
	Update(ctx context.Context, actor *authorization.Principal, groupID uint, req dto.UpdatePermissionsRequest) (*dto.UpdatePermissionsResponse, error)
}
