package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	apperrors "github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// UserGroupRepositoryImpl implements usergroup.Repository.
type UserGroupRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UserGroupMapper
	logger logger.Interface
}

func NewUserGroupRepository(db *gorm.DB, logger logger.Interface) usergroup.Repository {
	return &UserGroupRepositoryImpl{
		db:     db,
		mapper: mappers.NewUserGroupMapper(),
		logger: logger,
	}
}

func (r *UserGroupRepositoryImpl) Create(ctx context.Context, group *usergroup.UserGroup) error {
	model, err := r.mapper.ToModel(group)
	if err != nil {
		r.logger.Errorw("failed to map user group entity to model", "error", err)
		return fmt.Errorf("failed to map user group entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewFieldError("name", "The name has already been taken.")
		}
		r.logger.Errorw("failed to create user group", "name", model.Name, "error", err)
		return fmt.Errorf("failed to create user group: %w", err)
	}

	if err := group.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set user group ID: %w", err)
	}

	r.logger.Infow("user group created", "id", model.ID, "name", model.Name)
	return nil
}

// Update writes every editable column. Concurrent edits are last-writer-wins.
func (r *UserGroupRepositoryImpl) Update(ctx context.Context, group *usergroup.UserGroup) error {
	model, err := r.mapper.ToModel(group)
	if err != nil {
		r.logger.Errorw("failed to map user group entity to model", "error", err)
		return fmt.Errorf("failed to map user group entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":            model.Name,
			"display_name":    model.DisplayName,
			"description":     model.Description,
			"is_active":       model.IsActive,
			"sort_order":      model.SortOrder,
			"legacy_group_id": model.LegacyGroupID,
			"metadata":        model.Metadata,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return apperrors.NewFieldError("name", "The name has already been taken.")
		}
		r.logger.Errorw("failed to update user group", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update user group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("User group not found")
	}

	r.logger.Infow("user group updated", "id", model.ID, "name", model.Name)
	return nil
}

// Delete hard-deletes the group row. Callers check memberships first.
func (r *UserGroupRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.UserGroupModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete user group", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete user group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("User group not found")
	}

	r.logger.Infow("user group deleted", "id", id)
	return nil
}

func (r *UserGroupRepositoryImpl) GetByID(ctx context.Context, id uint) (*usergroup.UserGroup, error) {
	var model models.UserGroupModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get user group by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user group: %w", err)
	}

	group, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map user group model to entity", "id", id, "error", err)
		return nil, fmt.Errorf("failed to map user group: %w", err)
	}
	return group, nil
}

func (r *UserGroupRepositoryImpl) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupModel{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		r.logger.Errorw("failed to check user group name", "name", name, "error", err)
		return false, fmt.Errorf("failed to check user group name: %w", err)
	}
	return count > 0, nil
}

func (r *UserGroupRepositoryImpl) List(ctx context.Context, filter usergroup.ListFilter) ([]*usergroup.UserGroup, int64, error) {
	q := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupModel{}).
		Scopes(db.Search(filter.Search, "name", "display_name", "description"))

	switch filter.Status {
	case usergroup.StatusActive:
		q = q.Where("is_active = ?", true)
	case usergroup.StatusInactive:
		q = q.Where("is_active = ?", false)
	}
	switch filter.Legacy {
	case usergroup.LegacyYes:
		q = q.Where("legacy_group_id IS NOT NULL")
	case usergroup.LegacyNo:
		q = q.Where("legacy_group_id IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count user groups", "error", err)
		return nil, 0, fmt.Errorf("failed to count user groups: %w", err)
	}

	var rows []*models.UserGroupModel
	if err := q.Order("sort_order ASC").Order("id ASC").
		Offset(filter.Offset()).Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list user groups", "error", err)
		return nil, 0, fmt.Errorf("failed to list user groups: %w", err)
	}

	groups, err := r.mapper.ToEntities(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map user groups: %w", err)
	}
	return groups, total, nil
}

func (r *UserGroupRepositoryImpl) SearchActive(ctx context.Context, term string, limit int) ([]*usergroup.UserGroup, error) {
	var rows []*models.UserGroupModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Scopes(db.Search(term, "name", "display_name")).
		Order("sort_order ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to search user groups", "term", term, "error", err)
		return nil, fmt.Errorf("failed to search user groups: %w", err)
	}
	return r.mapper.ToEntities(rows)
}
