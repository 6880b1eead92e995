package access

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/infrastructure/auth"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (v stubVerifier) Verify(string) (*auth.Claims, error) { return v.claims, v.err }

type stubUsers struct {
	user.Repository
	users map[uint]*user.User
}

func (s stubUsers) GetByID(_ context.Context, id uint) (*user.User, error) { return s.users[id], nil }

type stubSessions struct {
	user.SessionRepository
	sessions map[string]*user.Session
	revoked  []string
}

func (s *stubSessions) GetByID(_ context.Context, id string) (*user.Session, error) {
	return s.sessions[id], nil
}

func (s *stubSessions) Revoke(_ context.Context, id string, _ time.Time) error {
	s.revoked = append(s.revoked, id)
	return nil
}

type stubMembers struct {
	usergroup.MembershipRepository
	groupIDs []uint
}

func (s stubMembers) ActiveGroupIDsForUser(context.Context, uint, time.Time) ([]uint, error) {
	return s.groupIDs, nil
}

// mapEnforcer allows a capability when some subject holds allow and none holds deny.
type mapEnforcer map[permission.Subject]map[permission.Capability]permission.Disposition

func (e mapEnforcer) Allowed(subjects []permission.Subject, c permission.Capability) (bool, error) {
	allowed := false
	for _, s := range subjects {
		switch e[s][c] {
		case permission.Deny:
			return false, nil
		case permission.Allow:
			allowed = true
		}
	}
	return allowed, nil
}

func (e mapEnforcer) Reload() error { return nil }

type countingRecorder struct{ actions []string }

func (r *countingRecorder) Record(_ *authorization.Principal, action, _ string, _ uint, _ map[string]any) {
	r.actions = append(r.actions, action)
}

func fixture(t *testing.T, active bool) (*user.User, *user.Session) {
	t.Helper()
	u, err := user.ReconstructUser(user.Snapshot{
		ID: 3, TenantID: 9, Name: "Ada", Email: "ada@example.com",
		IsActive: active, MustChangePassword: true, Roles: []string{"admin"},
	})
	require.NoError(t, err)
	s, err := user.NewSession(3, "127.0.0.1", "test", biztime.NowUTC(), time.Hour)
	require.NoError(t, err)
	return u, s
}

func TestAuthenticate(t *testing.T) {
	u, s := fixture(t, false)
	sessions := &stubSessions{sessions: map[string]*user.Session{s.ID: s}}
	users := stubUsers{users: map[uint]*user.User{3: u}}
	claims := &auth.Claims{UserID: 3, TenantID: 9, SessionID: s.ID}

	t.Run("valid token", func(t *testing.T) {
		svc := NewService(stubVerifier{claims: claims}, users, sessions, stubMembers{}, mapEnforcer{}, &countingRecorder{}, logger.NewNopLogger())
		p, err := svc.Authenticate(context.Background(), "token")
		require.NoError(t, err)
		assert.Equal(t, uint(3), p.UserID)
		assert.Equal(t, uint(9), p.TenantID)
		assert.Equal(t, s.ID, p.SessionID)
		assert.False(t, p.IsActive)
		assert.True(t, p.MustChangePassword)
		assert.Equal(t, []string{"admin"}, p.Roles)
	})

	tests := []struct {
		name     string
		verifier stubVerifier
		errType  errors.ErrorType
	}{
		{"expired token", stubVerifier{err: fmt.Errorf("%w: exp", auth.ErrTokenExpired)}, errors.ErrorTypeTokenExpired},
		{"bad token", stubVerifier{err: fmt.Errorf("%w: sig", auth.ErrTokenInvalid)}, errors.ErrorTypeTokenInvalid},
		{"unknown session", stubVerifier{claims: &auth.Claims{UserID: 3, SessionID: "gone"}}, errors.ErrorTypeSessionExpired},
		{"session of another user", stubVerifier{claims: &auth.Claims{UserID: 4, SessionID: s.ID}}, errors.ErrorTypeSessionExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.verifier, users, sessions, stubMembers{}, mapEnforcer{}, &countingRecorder{}, logger.NewNopLogger())
			_, err := svc.Authenticate(context.Background(), "token")
			require.Error(t, err)
			assert.Equal(t, tt.errType, errors.GetAppError(err).Type)
		})
	}

	t.Run("revoked session", func(t *testing.T) {
		revokedAt := biztime.NowUTC()
		revoked := *s
		revoked.RevokedAt = &revokedAt
		sessions := &stubSessions{sessions: map[string]*user.Session{s.ID: &revoked}}
		svc := NewService(stubVerifier{claims: claims}, users, sessions, stubMembers{}, mapEnforcer{}, &countingRecorder{}, logger.NewNopLogger())
		_, err := svc.Authenticate(context.Background(), "token")
		assert.Equal(t, errors.ErrorTypeSessionExpired, errors.GetAppError(err).Type)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := NewService(stubVerifier{claims: claims}, users, sessions, stubMembers{}, mapEnforcer{}, &countingRecorder{}, logger.NewNopLogger())
		_, err := svc.Authenticate(context.Background(), "")
		assert.Equal(t, errors.ErrorTypeUnauthorized, errors.GetAppError(err).Type)
	})
}

func TestCan(t *testing.T) {
	enforcer := mapEnforcer{
		permission.RoleSubject("admin"): {
			permission.ViewUserGroups:   permission.Allow,
			permission.DeleteUserGroups: permission.Allow,
		},
		permission.GroupSubject(5): {
			permission.DeleteUserGroups: permission.Deny,
			permission.EditUserGroups:   permission.Allow,
		},
	}
	p := &authorization.Principal{UserID: 3, Roles: []string{"admin"}}

	member := NewService(stubVerifier{}, stubUsers{}, &stubSessions{}, stubMembers{groupIDs: []uint{5}}, enforcer, &countingRecorder{}, logger.NewNopLogger())
	outsider := NewService(stubVerifier{}, stubUsers{}, &stubSessions{}, stubMembers{}, enforcer, &countingRecorder{}, logger.NewNopLogger())

	cases := []struct {
		svc  *Service
		cap  permission.Capability
		want bool
	}{
		{member, permission.ViewUserGroups, true},
		{member, permission.EditUserGroups, true},
		{member, permission.DeleteUserGroups, false},
		{outsider, permission.DeleteUserGroups, true},
		{outsider, permission.EditUserGroups, false},
	}
	for _, c := range cases {
		got, err := c.svc.Can(context.Background(), p, c.cap)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.cap)
	}

	got, err := member.Can(context.Background(), nil, permission.ViewUserGroups)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEndInactiveSession(t *testing.T) {
	sessions := &stubSessions{}
	recorder := &countingRecorder{}
	svc := NewService(stubVerifier{}, stubUsers{}, sessions, stubMembers{}, mapEnforcer{}, recorder, logger.NewNopLogger())

	require.NoError(t, svc.EndInactiveSession(context.Background(), &authorization.Principal{UserID: 3, SessionID: "s1"}))
	assert.Equal(t, []string{"s1"}, sessions.revoked)
	assert.Len(t, recorder.actions, 1)
}

func TestCapabilities(t *testing.T) {
	enforcer := mapEnforcer{
		permission.RoleSubject("support"): {permission.ViewUserGroups: permission.Allow},
		permission.GroupSubject(2): {
			permission.ViewUserGroups: permission.Deny,
			permission.ViewUsers:      permission.Allow,
		},
	}
	p := &authorization.Principal{UserID: 3, Roles: []string{"support"}}

	svc := NewService(stubVerifier{}, stubUsers{}, &stubSessions{}, stubMembers{}, enforcer, &countingRecorder{}, logger.NewNopLogger())
	caps, err := svc.Capabilities(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []permission.Capability{permission.ViewUserGroups}, caps)

	svc = NewService(stubVerifier{}, stubUsers{}, &stubSessions{}, stubMembers{groupIDs: []uint{2}}, enforcer, &countingRecorder{}, logger.NewNopLogger())
	caps, err = svc.Capabilities(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []permission.Capability{permission.ViewUsers}, caps)
}
