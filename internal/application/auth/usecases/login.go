package usecases

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/orris-inc/warden/internal/application/access"
	"github.com/orris-inc/warden/internal/application/auth/dto"
	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/infrastructure/auth"
	"github.com/orris-inc/warden/internal/infrastructure/metrics"
	"github.com/orris-inc/warden/internal/infrastructure/ratelimit"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/config"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

type TokenIssuer interface {
	Issue(userID, tenantID uint, sessionID string) (*auth.IssuedToken, error)
}

type ActivityRecorder interface {
	Record(actor *authorization.Principal, action, subjectType string, subjectID uint, properties map[string]any)
}

type LoginMetrics interface {
	LoginAttempt(result string)
}

type LoginCommand struct {
	dto.LoginRequest
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	Principal *authorization.Principal
	Token     *auth.IssuedToken
}

type LoginUseCase struct {
	users      user.Repository
	sessions   user.SessionRepository
	hasher     user.PasswordHasher
	tokens     TokenIssuer
	limiter    ratelimit.RateLimiter
	limits     ratelimit.Limits
	metrics    LoginMetrics
	recorder   ActivityRecorder
	sessionTTL time.Duration
	logger     logger.Interface
}

func NewLoginUseCase(
	users user.Repository,
	sessions user.SessionRepository,
	hasher user.PasswordHasher,
	tokens TokenIssuer,
	limiter ratelimit.RateLimiter,
	cfg config.AuthConfig,
	metrics LoginMetrics,
	recorder ActivityRecorder,
	logger logger.Interface,
) *LoginUseCase {
	ttl := time.Duration(cfg.Session.ExpHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &LoginUseCase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		limits: ratelimit.Limits{
			PerMinute: cfg.LoginRateLimit.RequestsPerMinute,
			PerHour:   cfg.LoginRateLimit.RequestsPerHour,
		},
		metrics:    metrics,
		recorder:   recorder,
		sessionTTL: ttl,
		logger:     logger,
	}
}

// Execute checks the credentials and opens a session. Deactivated accounts
// are refused here as well as at the access gate.
func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := utils.ValidateStruct(cmd.LoginRequest); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	key := "login:" + cmd.IPAddress + ":" + email

	decision, err := uc.limiter.Allow(ctx, key, uc.limits)
	if err != nil {
		// a broken limiter must not lock everyone out
		uc.logger.Warnw("login rate limiter unavailable", "error", err)
	} else if !decision.Allowed {
		uc.metrics.LoginAttempt(metrics.ResultRateLimited)
		seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
		return nil, errors.NewRateLimitedError(fmt.Sprintf("Too many login attempts. Please try again in %d seconds.", seconds))
	}

	u, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil || uc.hasher.Verify(cmd.Password, u.PasswordHash()) != nil {
		uc.metrics.LoginAttempt(metrics.ResultInvalid)
		return nil, errors.NewInvalidCredentialsError()
	}
	if !u.IsActive() {
		uc.metrics.LoginAttempt(metrics.ResultInactive)
		uc.logger.Warnw("login refused for inactive user", "user_id", u.ID())
		return nil, errors.NewAccountInactiveError()
	}

	session, err := user.NewSession(u.ID(), cmd.IPAddress, cmd.UserAgent, biztime.NowUTC(), uc.sessionTTL)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		uc.logger.Errorw("failed to create session", "user_id", u.ID(), "error", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := uc.tokens.Issue(u.ID(), u.TenantID(), session.ID)
	if err != nil {
		uc.logger.Errorw("failed to issue access token", "user_id", u.ID(), "error", err)
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	if err := uc.limiter.Reset(ctx, key); err != nil {
		uc.logger.Warnw("failed to reset login rate limit", "error", err)
	}

	principal := access.NewPrincipal(u, session.ID)
	uc.metrics.LoginAttempt(metrics.ResultAllowed)
	uc.recorder.Record(principal, activity.ActionUserLoggedIn, activity.SubjectUser, u.ID(), map[string]any{
		"ip_address": cmd.IPAddress,
	})
	uc.logger.Infow("user logged in", "user_id", u.ID(), "session_id", session.ID)

	return &LoginResult{Principal: principal, Token: token}, nil
}
