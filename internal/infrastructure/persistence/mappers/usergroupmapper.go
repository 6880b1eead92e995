package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/mapper"
)

// UserGroupMapper converts between the group aggregate and its row.
type UserGroupMapper interface {
	ToEntity(model *models.UserGroupModel) (*usergroup.UserGroup, error)
	ToModel(entity *usergroup.UserGroup) (*models.UserGroupModel, error)
	ToEntities(models []*models.UserGroupModel) ([]*usergroup.UserGroup, error)
	MembershipToEntity(model *models.UserGroupMemberModel) *usergroup.Membership
	MembershipToModel(entity *usergroup.Membership) *models.UserGroupMemberModel
}

type userGroupMapper struct{}

func NewUserGroupMapper() UserGroupMapper {
	return &userGroupMapper{}
}

func (m *userGroupMapper) ToEntity(model *models.UserGroupModel) (*usergroup.UserGroup, error) {
	if model == nil {
		return nil, nil
	}

	metadata := map[string]any{}
	if len(model.Metadata) > 0 && string(model.Metadata) != "null" {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}

	return usergroup.ReconstructUserGroup(model.ID, usergroup.Details{
		Name:          model.Name,
		DisplayName:   model.DisplayName,
		Description:   model.Description,
		IsActive:      model.IsActive,
		SortOrder:     model.SortOrder,
		LegacyGroupID: model.LegacyGroupID,
		Metadata:      metadata,
	}, model.CreatedAt, model.UpdatedAt)
}

func (m *userGroupMapper) ToModel(entity *usergroup.UserGroup) (*models.UserGroupModel, error) {
	if entity == nil {
		return nil, nil
	}

	metadata, err := json.Marshal(entity.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	return &models.UserGroupModel{
		ID:            entity.ID(),
		Name:          entity.Name(),
		DisplayName:   entity.DisplayName(),
		Description:   entity.Description(),
		IsActive:      entity.IsActive(),
		SortOrder:     entity.SortOrder(),
		LegacyGroupID: entity.LegacyGroupID(),
		Metadata:      datatypes.JSON(metadata),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}

func (m *userGroupMapper) ToEntities(modelList []*models.UserGroupModel) ([]*usergroup.UserGroup, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.UserGroupModel) uint { return model.ID })
}

func (m *userGroupMapper) MembershipToEntity(model *models.UserGroupMemberModel) *usergroup.Membership {
	if model == nil {
		return nil
	}
	return usergroup.ReconstructMembership(model.UserID, model.UserGroupID, model.IsPrimaryGroup, model.AssignedAt, model.ExpiresAt)
}

func (m *userGroupMapper) MembershipToModel(entity *usergroup.Membership) *models.UserGroupMemberModel {
	if entity == nil {
		return nil
	}
	return &models.UserGroupMemberModel{
		UserID:         entity.UserID(),
		UserGroupID:    entity.GroupID(),
		IsPrimaryGroup: entity.IsPrimary(),
		AssignedAt:     entity.AssignedAt(),
		ExpiresAt:      entity.ExpiresAt(),
	}
}
