package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/warden/internal/application/auth/dto"
	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/infrastructure/auth"
	"github.com/orris-inc/warden/internal/infrastructure/metrics"
	"github.com/orris-inc/warden/internal/infrastructure/ratelimit"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/config"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

const testPassword = "correct-horse-1"

var hasher = auth.NewBcryptPasswordHasher(4)

func storedUser(t *testing.T, id uint, email string, active, mustChange bool) *user.User {
	t.Helper()
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)
	u, err := user.ReconstructUser(user.Snapshot{
		ID: id, TenantID: 2, Name: "Grace", Email: email, PasswordHash: hash,
		IsActive: active, MustChangePassword: mustChange, Roles: []string{"admin"},
	})
	require.NoError(t, err)
	return u
}

func newLogin(users *memoryUsers, sessions *memorySessions, limiter ratelimit.RateLimiter, counter *loginCounter, recorder *mockRecorder) *LoginUseCase {
	cfg := config.AuthConfig{Session: config.SessionConfig{ExpHours: 1}}
	return NewLoginUseCase(users, sessions, hasher, auth.NewJWTService("secret", 30), limiter, cfg, counter, recorder, logger.NewNopLogger())
}

func TestLogin_Success(t *testing.T) {
	users := newMemoryUsers(storedUser(t, 1, "grace@example.com", true, true))
	sessions := &memorySessions{}
	limiter := &scriptedLimiter{decision: ratelimit.Decision{Allowed: true}}
	counter := &loginCounter{}
	recorder := &mockRecorder{}
	uc := newLogin(users, sessions, limiter, counter, recorder)

	res, err := uc.Execute(context.Background(), LoginCommand{
		LoginRequest: dto.LoginRequest{Email: "Grace@Example.com", Password: testPassword},
		IPAddress:    "10.0.0.1",
	})
	require.NoError(t, err)

	require.Len(t, sessions.created, 1)
	assert.Equal(t, sessions.created[0].ID, res.Principal.SessionID)
	assert.True(t, res.Principal.MustChangePassword)
	assert.NotEmpty(t, res.Token.Token)

	claims, err := auth.NewJWTService("secret", 30).Verify(res.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, res.Principal.SessionID, claims.SessionID)

	assert.Equal(t, []string{"login:10.0.0.1:grace@example.com"}, limiter.resets)
	assert.Equal(t, []string{metrics.ResultAllowed}, counter.results)
	assert.Equal(t, []string{activity.ActionUserLoggedIn}, recorder.actions)
}

func TestLogin_Refusals(t *testing.T) {
	tests := []struct {
		name     string
		user     *user.User
		password string
		decision ratelimit.Decision
		errType  errors.ErrorType
		result   string
	}{
		{"wrong password", storedUser(t, 1, "grace@example.com", true, false), "nope-nope-1", ratelimit.Decision{Allowed: true}, errors.ErrorTypeInvalidCredentials, metrics.ResultInvalid},
		{"unknown email", nil, testPassword, ratelimit.Decision{Allowed: true}, errors.ErrorTypeInvalidCredentials, metrics.ResultInvalid},
		{"inactive account", storedUser(t, 1, "grace@example.com", false, false), testPassword, ratelimit.Decision{Allowed: true}, errors.ErrorTypeAccountInactive, metrics.ResultInactive},
		{"rate limited", storedUser(t, 1, "grace@example.com", true, false), testPassword, ratelimit.Decision{RetryAfter: 1500 * time.Millisecond}, errors.ErrorTypeRateLimited, metrics.ResultRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemoryUsers()
			if tt.user != nil {
				users = newMemoryUsers(tt.user)
			}
			sessions := &memorySessions{}
			counter := &loginCounter{}
			uc := newLogin(users, sessions, &scriptedLimiter{decision: tt.decision}, counter, &mockRecorder{})

			_, err := uc.Execute(context.Background(), LoginCommand{
				LoginRequest: dto.LoginRequest{Email: "grace@example.com", Password: tt.password},
			})
			require.Error(t, err)
			assert.Equal(t, tt.errType, errors.GetAppError(err).Type)
			assert.Empty(t, sessions.created)
			assert.Equal(t, []string{tt.result}, counter.results)
		})
	}
}

func TestLogin_LimiterFailureFailsOpen(t *testing.T) {
	users := newMemoryUsers(storedUser(t, 1, "grace@example.com", true, false))
	uc := newLogin(users, &memorySessions{}, &scriptedLimiter{err: assert.AnError}, &loginCounter{}, &mockRecorder{})

	_, err := uc.Execute(context.Background(), LoginCommand{
		LoginRequest: dto.LoginRequest{Email: "grace@example.com", Password: testPassword},
	})
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	sessions := &memorySessions{}
	recorder := &mockRecorder{}
	uc := NewLogoutUseCase(sessions, recorder, logger.NewNopLogger())

	require.NoError(t, uc.Execute(context.Background(), &authorization.Principal{UserID: 1, SessionID: "abc"}))
	assert.Equal(t, []string{"abc"}, sessions.revoked)
	assert.Equal(t, []string{activity.ActionUserLoggedOut}, recorder.actions)
}

func TestChangePassword(t *testing.T) {
	principal := &authorization.Principal{UserID: 1, SessionID: "current"}

	t.Run("clears forced change", func(t *testing.T) {
		users := newMemoryUsers(storedUser(t, 1, "grace@example.com", true, true))
		sessions := &memorySessions{}
		uc := NewChangePasswordUseCase(users, sessions, hasher, &mockRecorder{}, logger.NewNopLogger())

		err := uc.Execute(context.Background(), principal, dto.ChangePasswordRequest{
			CurrentPassword:      testPassword,
			Password:             "brand-new-pass-2",
			PasswordConfirmation: "brand-new-pass-2",
			LogoutOtherSessions:  true,
		})
		require.NoError(t, err)

		u, _ := users.GetByID(context.Background(), 1)
		assert.False(t, u.MustChangePassword())
		assert.NoError(t, hasher.Verify("brand-new-pass-2", u.PasswordHash()))
		assert.Equal(t, "current", sessions.revokedExcept)
	})

	tests := []struct {
		name  string
		req   dto.ChangePasswordRequest
		field string
	}{
		{"wrong current", dto.ChangePasswordRequest{CurrentPassword: "nope", Password: "brand-new-pass-2", PasswordConfirmation: "brand-new-pass-2"}, "current_password"},
		{"same as current", dto.ChangePasswordRequest{CurrentPassword: testPassword, Password: testPassword, PasswordConfirmation: testPassword}, "password"},
		{"confirmation mismatch", dto.ChangePasswordRequest{CurrentPassword: testPassword, Password: "brand-new-pass-2", PasswordConfirmation: "other-pass-3"}, "password_confirmation"},
		{"no digit", dto.ChangePasswordRequest{CurrentPassword: testPassword, Password: "lettersonly", PasswordConfirmation: "lettersonly"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemoryUsers(storedUser(t, 1, "grace@example.com", true, true))
			uc := NewChangePasswordUseCase(users, &memorySessions{}, hasher, &mockRecorder{}, logger.NewNopLogger())

			err := uc.Execute(context.Background(), principal, tt.req)
			require.True(t, errors.IsValidationError(err), "got %v", err)
			assert.Contains(t, errors.GetAppError(err).Fields, tt.field)

			u, _ := users.GetByID(context.Background(), 1)
			assert.True(t, u.MustChangePassword())
		})
	}
}

func TestCreateUser(t *testing.T) {
	users := newMemoryUsers()
	uc := NewCreateUserUseCase(users, stubRoles{slugs: []string{"admin"}}, hasher, logger.NewNopLogger())

	resp, err := uc.Execute(context.Background(), dto.CreateUserRequest{
		TenantID: 1, Name: "Linus", Email: "Linus@Example.com", Password: "kernel-hacker-1",
		Roles: []string{"admin"}, MustChangePassword: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "linus@example.com", resp.Email)
	assert.Equal(t, []string{"admin"}, resp.Roles)
	assert.True(t, resp.MustChangePassword)

	_, err = uc.Execute(context.Background(), dto.CreateUserRequest{
		TenantID: 1, Name: "Eve", Email: "eve@example.com", Password: "kernel-hacker-1", Roles: []string{"root"},
	})
	assert.Contains(t, errors.GetAppError(err).Fields, "roles.0")
}

func TestSetUserActive(t *testing.T) {
	users := newMemoryUsers(storedUser(t, 1, "grace@example.com", true, false))
	uc := NewSetUserActiveUseCase(users, logger.NewNopLogger())

	require.NoError(t, uc.Execute(context.Background(), "grace@example.com", false))
	assert.Equal(t, map[uint]bool{1: false}, users.activeSet)
	assert.True(t, errors.IsNotFoundError(uc.Execute(context.Background(), "nobody@example.com", true)))
}
