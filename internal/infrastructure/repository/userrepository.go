package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	apperrors "github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// UserRepositoryImpl implements user.Repository.
type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

func NewUserRepository(db *gorm.DB, logger logger.Interface) user.Repository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: logger,
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, u *user.User) error {
	model := r.mapper.ToModel(u)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Omit("Roles").Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewFieldError("email", "The email has already been taken.")
		}
		r.logger.Errorw("failed to create user", "email", model.Email, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	if err := u.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set user ID: %w", err)
	}
	if err := r.SetRoles(ctx, model.ID, u.Roles()); err != nil {
		return err
	}

	r.logger.Infow("user created", "id", model.ID, "email", model.Email)
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepositoryImpl) first(ctx context.Context, cond string, arg any) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Preload("Roles").Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get user", "cond", cond, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *UserRepositoryImpl) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		r.logger.Errorw("failed to check user ids", "error", err)
		return nil, fmt.Errorf("failed to check user ids: %w", err)
	}
	return found, nil
}

func (r *UserRepositoryImpl) ListNotInGroup(ctx context.Context, groupID uint, limit int) ([]*user.User, error) {
	members := db.GetTxFromContext(ctx, r.db).Model(&models.UserGroupMemberModel{}).
		Select("user_id").
		Where("user_group_id = ?", groupID)

	var rows []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Preload("Roles").
		Where("id NOT IN (?)", members).
		Order("name ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list assignable users", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to list assignable users: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *UserRepositoryImpl) ListByIDs(ctx context.Context, ids []uint) ([]*user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Preload("Roles").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list users by ids", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, u *user.User) error {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{}).
		Where("id = ?", u.ID()).
		Updates(map[string]any{
			"password_hash":        u.PasswordHash(),
			"must_change_password": u.MustChangePassword(),
			"password_changed_at":  u.PasswordChangedAt(),
			"updated_at":           u.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update password", "user_id", u.ID(), "error", result.Error)
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("User not found")
	}
	return nil
}

func (r *UserRepositoryImpl) SetActive(ctx context.Context, id uint, active bool) error {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update user status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("User not found")
	}
	return nil
}

// SetRoles replaces the user's role rows.
func (r *UserRepositoryImpl) SetRoles(ctx context.Context, userID uint, roles []string) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserRoleModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear user roles: %w", err)
	}
	if len(roles) == 0 {
		return nil
	}
	rows := make([]models.UserRoleModel, len(roles))
	for i, slug := range roles {
		rows[i] = models.UserRoleModel{UserID: userID, RoleSlug: slug}
	}
	if err := tx.Create(&rows).Error; err != nil {
		r.logger.Errorw("failed to assign user roles", "user_id", userID, "error", err)
		return fmt.Errorf("failed to assign user roles: %w", err)
	}
	return nil
}
