package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/mapper"
)

// MembershipRepositoryImpl implements usergroup.MembershipRepository over
// the user_group_members pivot.
type MembershipRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UserGroupMapper
	logger logger.Interface
}

func NewMembershipRepository(db *gorm.DB, logger logger.Interface) usergroup.MembershipRepository {
	return &MembershipRepositoryImpl{
		db:     db,
		mapper: mappers.NewUserGroupMapper(),
		logger: logger,
	}
}

// Upsert keeps the original assigned_at when the pair already exists.
func (r *MembershipRepositoryImpl) Upsert(ctx context.Context, m *usergroup.Membership) error {
	model := r.mapper.MembershipToModel(m)
	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "user_group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_primary_group", "expires_at", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert group membership", "user_id", model.UserID, "group_id", model.UserGroupID, "error", err)
		return fmt.Errorf("failed to upsert group membership: %w", err)
	}
	return nil
}

func (r *MembershipRepositoryImpl) Delete(ctx context.Context, groupID, userID uint) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("user_group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.UserGroupMemberModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete group membership", "user_id", userID, "group_id", groupID, "error", result.Error)
		return false, fmt.Errorf("failed to delete group membership: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *MembershipRepositoryImpl) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupMemberModel{}).
		Where("user_group_id = ?", groupID).Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count group members", "group_id", groupID, "error", err)
		return 0, fmt.Errorf("failed to count group members: %w", err)
	}
	return count, nil
}

func (r *MembershipRepositoryImpl) CountByGroups(ctx context.Context, groupIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		UserGroupID uint
		Total       int64
	}
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupMemberModel{}).
		Select("user_group_id, COUNT(*) AS total").
		Where("user_group_id IN ?", groupIDs).
		Group("user_group_id").
		Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to count members per group", "error", err)
		return nil, fmt.Errorf("failed to count members per group: %w", err)
	}

	for _, row := range rows {
		counts[row.UserGroupID] = row.Total
	}
	return counts, nil
}

func (r *MembershipRepositoryImpl) ListByGroup(ctx context.Context, groupID uint) ([]*usergroup.Membership, error) {
	var rows []*models.UserGroupMemberModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_group_id = ?", groupID).
		Order("is_primary_group DESC").Order("user_id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list group members", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return mapper.MapSlice(rows, r.mapper.MembershipToEntity), nil
}

func (r *MembershipRepositoryImpl) MemberUserIDs(ctx context.Context, groupID uint) ([]uint, error) {
	var ids []uint
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupMemberModel{}).
		Where("user_group_id = ?", groupID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list member ids: %w", err)
	}
	return ids, nil
}

func (r *MembershipRepositoryImpl) ActiveGroupIDsForUser(ctx context.Context, userID uint, now time.Time) ([]uint, error) {
	var ids []uint
	err := db.GetTxFromContext(ctx, r.db).
		Table(models.UserGroupMemberModel{}.TableName()+" AS m").
		Joins("JOIN "+models.UserGroupModel{}.TableName()+" AS g ON g.id = m.user_group_id").
		Where("m.user_id = ?", userID).
		Where("g.is_active = ?", true).
		Where("(m.expires_at IS NULL OR m.expires_at > ?)", now).
		Order("m.user_group_id").
		Pluck("m.user_group_id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to resolve active groups", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to resolve active groups: %w", err)
	}
	return ids, nil
}

func (r *MembershipRepositoryImpl) ClearPrimaryForUsers(ctx context.Context, userIDs []uint, exceptGroupID uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	err := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupMemberModel{}).
		Where("user_id IN ?", userIDs).
		Where("user_group_id <> ?", exceptGroupID).
		Where("is_primary_group = ?", true).
		Updates(map[string]any{"is_primary_group": false, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		r.logger.Errorw("failed to clear primary group flags", "error", err)
		return fmt.Errorf("failed to clear primary group flags: %w", err)
	}
	return nil
}
