package mappers

import (
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/mapper"
)

// UserMapper handles the conversion between domain entities and persistence models
type UserMapper interface {
	ToEntity(model *models.UserModel) (*user.User, error)
	ToModel(entity *user.User) *models.UserModel
	ToEntities(models []*models.UserModel) ([]*user.User, error)
	SessionToEntity(model *models.SessionModel) *user.Session
	SessionToModel(entity *user.Session) *models.SessionModel
}

type userMapper struct{}

func NewUserMapper() UserMapper {
	return &userMapper{}
}

func (m *userMapper) ToEntity(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}
	return user.ReconstructUser(user.Snapshot{
		ID:                 model.ID,
		TenantID:           model.TenantID,
		Name:               model.Name,
		Email:              model.Email,
		PasswordHash:       model.PasswordHash,
		IsActive:           model.IsActive,
		MustChangePassword: model.MustChangePassword,
		Roles:              mapper.MapSlice(model.Roles, func(r models.UserRoleModel) string { return r.RoleSlug }),
		PasswordChangedAt:  model.PasswordChangedAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	})
}

// ToModel leaves Roles empty; role rows are written separately.
func (m *userMapper) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:                 entity.ID(),
		TenantID:           entity.TenantID(),
		Name:               entity.Name(),
		Email:              entity.Email().String(),
		PasswordHash:       entity.PasswordHash(),
		IsActive:           entity.IsActive(),
		MustChangePassword: entity.MustChangePassword(),
		PasswordChangedAt:  entity.PasswordChangedAt(),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}
}

func (m *userMapper) ToEntities(modelList []*models.UserModel) ([]*user.User, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.UserModel) uint { return model.ID })
}

func (m *userMapper) SessionToEntity(model *models.SessionModel) *user.Session {
	if model == nil {
		return nil
	}
	return &user.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		IPAddress: model.IPAddress,
		UserAgent: model.UserAgent,
		ExpiresAt: model.ExpiresAt,
		RevokedAt: model.RevokedAt,
		CreatedAt: model.CreatedAt,
	}
}

func (m *userMapper) SessionToModel(entity *user.Session) *models.SessionModel {
	if entity == nil {
		return nil
	}
	return &models.SessionModel{
		ID:        entity.ID,
		UserID:    entity.UserID,
		IPAddress: entity.IPAddress,
		UserAgent: entity.UserAgent,
		ExpiresAt: entity.ExpiresAt,
		RevokedAt: entity.RevokedAt,
		CreatedAt: entity.CreatedAt,
	}
}
