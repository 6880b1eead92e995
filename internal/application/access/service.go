// Package access resolves the request principal and answers capability
// checks against the loaded policy.
package access

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/infrastructure/auth"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type ActivityRecorder interface {
	Record(actor *authorization.Principal, action, subjectType string, subjectID uint, properties map[string]any)
}

type Service struct {
	tokens   TokenVerifier
	users    user.Repository
	sessions user.SessionRepository
	members  usergroup.MembershipRepository
	enforcer permission.Enforcer
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewService(
	tokens TokenVerifier,
	users user.Repository,
	sessions user.SessionRepository,
	members usergroup.MembershipRepository,
	enforcer permission.Enforcer,
	recorder ActivityRecorder,
	logger logger.Interface,
) *Service {
	return &Service{
		tokens:   tokens,
		users:    users,
		sessions: sessions,
		members:  members,
		enforcer: enforcer,
		recorder: recorder,
		logger:   logger,
	}
}

// Authenticate turns an access token into a principal. The token must
// reference a live session of an existing user. Inactive users still
// authenticate; the role gate decides what happens to them.
func (s *Service) Authenticate(ctx context.Context, token string) (*authorization.Principal, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("Unauthenticated.")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		if stderrors.Is(err, auth.ErrTokenExpired) {
			return nil, errors.NewTokenExpiredError()
		}
		return nil, errors.NewTokenInvalidError(err.Error())
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		s.logger.Errorw("failed to load session", "session_id", claims.SessionID, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.UserID != claims.UserID || !session.IsValid(biztime.NowUTC()) {
		return nil, errors.NewSessionExpiredError()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Errorw("failed to load user", "user_id", claims.UserID, "error", err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, errors.NewSessionExpiredError()
	}

	return NewPrincipal(u, session.ID), nil
}

// NewPrincipal snapshots u for one request bound to sessionID.
func NewPrincipal(u *user.User, sessionID string) *authorization.Principal {
	return &authorization.Principal{
		UserID:             u.ID(),
		TenantID:           u.TenantID(),
		SessionID:          sessionID,
		Name:               u.Name(),
		Email:              u.Email().String(),
		Roles:              u.Roles(),
		IsActive:           u.IsActive(),
		MustChangePassword: u.MustChangePassword(),
	}
}

// Can reports whether p is allowed capability through its roles and the
// groups it is an unexpired member of.
func (s *Service) Can(ctx context.Context, p *authorization.Principal, capability permission.Capability) (bool, error) {
	if p == nil {
		return false, nil
	}

	groupIDs, err := s.members.ActiveGroupIDsForUser(ctx, p.UserID, biztime.NowUTC())
	if err != nil {
		s.logger.Errorw("failed to load group memberships", "user_id", p.UserID, "error", err)
		return false, fmt.Errorf("failed to load group memberships: %w", err)
	}

	allowed, err := s.enforcer.Allowed(permission.Subjects(p.Roles, groupIDs), capability)
	if err != nil {
		s.logger.Errorw("failed to evaluate permission", "user_id", p.UserID, "capability", capability, "error", err)
		return false, fmt.Errorf("failed to evaluate permission: %w", err)
	}
	return allowed, nil
}

// Capabilities lists every registered capability p is allowed, in
// registry order.
func (s *Service) Capabilities(ctx context.Context, p *authorization.Principal) ([]permission.Capability, error) {
	if p == nil {
		return nil, nil
	}

	groupIDs, err := s.members.ActiveGroupIDsForUser(ctx, p.UserID, biztime.NowUTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load group memberships: %w", err)
	}
	subjects := permission.Subjects(p.Roles, groupIDs)

	var out []permission.Capability
	for _, c := range permission.All() {
		allowed, err := s.enforcer.Allowed(subjects, c)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate permission: %w", err)
		}
		if allowed {
			out = append(out, c)
		}
	}
	return out, nil
}

// EndInactiveSession revokes the session of a deactivated principal.
func (s *Service) EndInactiveSession(ctx context.Context, p *authorization.Principal) error {
	if err := s.sessions.Revoke(ctx, p.SessionID, biztime.NowUTC()); err != nil {
		s.logger.Errorw("failed to revoke session of inactive user", "user_id", p.UserID, "error", err)
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.recorder.Record(p, activity.ActionUserDeactivatedOut, activity.SubjectUser, p.UserID, nil)
	s.logger.Warnw("inactive user logged out", "user_id", p.UserID, "session_id", p.SessionID)
	return nil
}
