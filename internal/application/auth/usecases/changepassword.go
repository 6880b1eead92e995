package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/warden/internal/application/auth/dto"
	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/user"
	vo "github.com/orris-inc/warden/internal/domain/user/valueobjects"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

type ChangePasswordUseCase struct {
	users    user.Repository
	sessions user.SessionRepository
	hasher   user.PasswordHasher
	policy   *vo.PasswordPolicy
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewChangePasswordUseCase(
	users user.Repository,
	sessions user.SessionRepository,
	hasher user.PasswordHasher,
	recorder ActivityRecorder,
	logger logger.Interface,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		policy:   vo.DefaultPasswordPolicy(),
		recorder: recorder,
		logger:   logger,
	}
}

// Execute replaces the principal's password and lifts the forced-change
// flag. The current session stays valid.
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, p *authorization.Principal, req dto.ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	u, err := uc.users.GetByID(ctx, p.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get user", "user_id", p.UserID, "error", err)
		return fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return errors.NewNotFoundError("user not found")
	}

	if err := uc.hasher.Verify(req.CurrentPassword, u.PasswordHash()); err != nil {
		return errors.NewFieldError("current_password", "The current password is incorrect.")
	}
	if req.Password == req.CurrentPassword {
		return errors.NewFieldError("password", "The new password must be different from the current password.")
	}
	if err := uc.policy.ValidatePassword(req.Password); err != nil {
		return errors.NewFieldError("password", err.Error())
	}

	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	now := biztime.NowUTC()
	if err := u.ChangePassword(hash, now); err != nil {
		return err
	}
	if err := uc.users.UpdatePassword(ctx, u); err != nil {
		uc.logger.Errorw("failed to persist password", "user_id", p.UserID, "error", err)
		return fmt.Errorf("failed to save password: %w", err)
	}

	if req.LogoutOtherSessions {
		if err := uc.sessions.RevokeAllExcept(ctx, p.UserID, p.SessionID, now); err != nil {
			uc.logger.Warnw("failed to revoke other sessions", "user_id", p.UserID, "error", err)
		}
	}

	uc.recorder.Record(p, activity.ActionUserPasswordChanged, activity.SubjectUser, p.UserID, nil)
	uc.logger.Infow("password changed", "user_id", p.UserID)
	return nil
}
