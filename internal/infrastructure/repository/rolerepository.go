package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/mapper"
)

type RoleRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewRoleRepository(db *gorm.DB, logger logger.Interface) permission.RoleRepository {
	return &RoleRepositoryImpl{db: db, logger: logger}
}

// Upsert inserts the role or refreshes its name and description by slug.
func (r *RoleRepositoryImpl) Upsert(ctx context.Context, role *permission.Role) error {
	model := &models.RoleModel{
		Slug:        role.Slug(),
		Name:        role.Name(),
		Description: role.Description(),
	}
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(model).Error; err != nil {
		r.logger.Errorw("failed to upsert role", "slug", role.Slug(), "error", err)
		return fmt.Errorf("failed to upsert role: %w", err)
	}
	return nil
}

func (r *RoleRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*permission.Role, error) {
	var model models.RoleModel
	if err := db.GetTxFromContext(ctx, r.db).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return toRole(&model)
}

func (r *RoleRepositoryImpl) List(ctx context.Context) ([]*permission.Role, error) {
	var rows []*models.RoleModel
	if err := db.GetTxFromContext(ctx, r.db).Order("slug").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return mapper.MapSlicePtrWithID(rows, toRole, func(m *models.RoleModel) uint { return m.ID })
}

func toRole(m *models.RoleModel) (*permission.Role, error) {
	return permission.ReconstructRole(m.ID, m.Slug, m.Name, m.Description, m.CreatedAt, m.UpdatedAt)
}
