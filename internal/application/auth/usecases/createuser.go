package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/warden/internal/application/auth/dto"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/user"
	vo "github.com/orris-inc/warden/internal/domain/user/valueobjects"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

// CreateUserUseCase provisions accounts from the command line. Account
// management proper belongs to the wider platform.
type CreateUserUseCase struct {
	users  user.Repository
	roles  permission.RoleRepository
	hasher user.PasswordHasher
	logger logger.Interface
}

func NewCreateUserUseCase(users user.Repository, roles permission.RoleRepository, hasher user.PasswordHasher, logger logger.Interface) *CreateUserUseCase {
	return &CreateUserUseCase{
		users:  users,
		roles:  roles,
		hasher: hasher,
		logger: logger,
	}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	email, err := vo.NewEmail(req.Email)
	if err != nil {
		return nil, errors.NewFieldError("email", err.Error())
	}
	if err := vo.DefaultPasswordPolicy().ValidatePassword(req.Password); err != nil {
		return nil, errors.NewFieldError("password", err.Error())
	}

	for i, slug := range req.Roles {
		role, err := uc.roles.GetBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to look up role: %w", err)
		}
		if role == nil {
			key := fmt.Sprintf("roles.%d", i)
			return nil, errors.NewFieldError(key, fmt.Sprintf("The selected %s is invalid.", key))
		}
	}

	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := user.NewUser(req.TenantID, req.Name, email, hash, req.MustChangePassword)
	if err != nil {
		return nil, err
	}
	u.AssignRoles(req.Roles...)

	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Infow("user created", "user_id", u.ID(), "roles", u.Roles())
	resp := toUserResponse(u)
	return &resp, nil
}

// SetUserActiveUseCase activates or deactivates an account. Deactivated
// users are logged out by the access gate on their next request.
type SetUserActiveUseCase struct {
	users  user.Repository
	logger logger.Interface
}

func NewSetUserActiveUseCase(users user.Repository, logger logger.Interface) *SetUserActiveUseCase {
	return &SetUserActiveUseCase{users: users, logger: logger}
}

func (uc *SetUserActiveUseCase) Execute(ctx context.Context, email string, active bool) error {
	u, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return errors.NewNotFoundError("user not found")
	}
	if err := uc.users.SetActive(ctx, u.ID(), active); err != nil {
		return err
	}
	uc.logger.Infow("user status changed", "user_id", u.ID(), "active", active)
	return nil
}

func toUserResponse(u *user.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 u.ID(),
		TenantID:           u.TenantID(),
		Name:               u.Name(),
		Email:              u.Email().String(),
		Roles:              u.Roles(),
		IsActive:           u.IsActive(),
		MustChangePassword: u.MustChangePassword(),
	}
}
