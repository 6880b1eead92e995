package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type ActivityRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewActivityRepository(db *gorm.DB, logger logger.Interface) activity.Repository {
	return &ActivityRepositoryImpl{db: db, logger: logger}
}

func (r *ActivityRepositoryImpl) Append(ctx context.Context, entry *activity.Entry) error {
	props, err := json.Marshal(entry.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode activity properties: %w", err)
	}

	model := &models.ActivityLogModel{
		TenantID:    entry.TenantID,
		ActorID:     entry.ActorID,
		Action:      entry.Action,
		SubjectType: entry.SubjectType,
		SubjectID:   entry.SubjectID,
		Properties:  datatypes.JSON(props),
		CreatedAt:   entry.CreatedAt,
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	entry.ID = model.ID
	return nil
}

func (r *ActivityRepositoryImpl) ListForSubject(ctx context.Context, subjectType string, subjectID uint, limit int) ([]*activity.Entry, error) {
	var rows []*models.ActivityLogModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	out := make([]*activity.Entry, 0, len(rows))
	for _, m := range rows {
		props := map[string]any{}
		if len(m.Properties) > 0 {
			if err := json.Unmarshal(m.Properties, &props); err != nil {
				r.logger.Warnw("skipping undecodable activity properties", "id", m.ID, "error", err)
			}
		}
		out = append(out, &activity.Entry{
			ID:          m.ID,
			TenantID:    m.TenantID,
			ActorID:     m.ActorID,
			Action:      m.Action,
			SubjectType: m.SubjectType,
			SubjectID:   m.SubjectID,
			Properties:  props,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}
