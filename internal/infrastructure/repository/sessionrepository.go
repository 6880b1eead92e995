package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

func NewSessionRepository(db *gorm.DB, logger logger.Interface) user.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: logger,
	}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *user.Session) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(r.mapper.SessionToModel(session)).Error; err != nil {
		r.logger.Errorw("failed to create session", "user_id", session.UserID, "error", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID returns nil, nil for an unknown session.
func (r *SessionRepositoryImpl) GetByID(ctx context.Context, id string) (*user.Session, error) {
	var model models.SessionModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return r.mapper.SessionToEntity(&model), nil
}

// Revoke is idempotent; an already revoked session keeps its first timestamp.
func (r *SessionRepositoryImpl) Revoke(ctx context.Context, id string, at time.Time) error {
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error; err != nil {
		r.logger.Errorw("failed to revoke session", "session_id", id, "error", err)
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) RevokeAllForUser(ctx context.Context, userID uint, at time.Time) error {
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error; err != nil {
		r.logger.Errorw("failed to revoke user sessions", "user_id", userID, "error", err)
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) RevokeAllExcept(ctx context.Context, userID uint, keepID string, at time.Time) error {
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SessionModel{}).
		Where("user_id = ? AND id <> ? AND revoked_at IS NULL", userID, keepID).
		Update("revoked_at", at).Error; err != nil {
		r.logger.Errorw("failed to revoke other sessions", "user_id", userID, "error", err)
		return fmt.Errorf("failed to revoke other sessions: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", cutoff, cutoff).
		Delete(&models.SessionModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete stale sessions", "cutoff", cutoff, "error", result.Error)
		return 0, fmt.Errorf("failed to delete stale sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
