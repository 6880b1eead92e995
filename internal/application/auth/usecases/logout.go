package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type LogoutUseCase struct {
	sessions user.SessionRepository
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewLogoutUseCase(sessions user.SessionRepository, recorder ActivityRecorder, logger logger.Interface) *LogoutUseCase {
	return &LogoutUseCase{
		sessions: sessions,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute revokes the principal's current session.
func (uc *LogoutUseCase) Execute(ctx context.Context, p *authorization.Principal) error {
	if err := uc.sessions.Revoke(ctx, p.SessionID, biztime.NowUTC()); err != nil {
		uc.logger.Errorw("failed to revoke session", "error", err, "session_id", p.SessionID)
		return fmt.Errorf("failed to logout: %w", err)
	}

	uc.recorder.Record(p, activity.ActionUserLoggedOut, activity.SubjectUser, p.UserID, nil)
	uc.logger.Infow("user logged out", "user_id", p.UserID, "session_id", p.SessionID)
	return nil
}
