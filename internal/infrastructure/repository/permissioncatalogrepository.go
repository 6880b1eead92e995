package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// PermissionCatalogRepositoryImpl keeps the permissions table aligned with
// the capability registry.
type PermissionCatalogRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPermissionCatalogRepository(db *gorm.DB, logger logger.Interface) permission.CatalogRepository {
	return &PermissionCatalogRepositoryImpl{db: db, logger: logger}
}

// Sync inserts missing capabilities and refreshes descriptions. Rows for
// names no longer registered are left alone.
func (r *PermissionCatalogRepositoryImpl) Sync(ctx context.Context, capabilities []permission.Capability) (int, error) {
	existing, err := r.ListNames(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		known[n] = struct{}{}
	}

	rows := make([]models.PermissionModel, 0, len(capabilities))
	added := 0
	for _, c := range capabilities {
		if _, ok := known[c.String()]; !ok {
			added++
		}
		rows = append(rows, models.PermissionModel{Name: c.String(), Description: c.Description()})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
	}).Create(&rows).Error; err != nil {
		r.logger.Errorw("failed to sync permission catalogue", "error", err)
		return 0, fmt.Errorf("failed to sync permissions: %w", err)
	}

	r.logger.Infow("permission catalogue synced", "total", len(rows), "added", added)
	return added, nil
}

func (r *PermissionCatalogRepositoryImpl) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.PermissionModel{}).
		Order("name").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return names, nil
}
