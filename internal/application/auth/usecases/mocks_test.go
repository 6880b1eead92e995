package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/infrastructure/ratelimit"
	"github.com/orris-inc/warden/internal/shared/authorization"
)

// memoryUsers keeps users by id; unneeded methods panic through the
// embedded nil interface.
type memoryUsers struct {
	user.Repository
	byID      map[uint]*user.User
	nextID    uint
	activeSet map[uint]bool
}

func newMemoryUsers(users ...*user.User) *memoryUsers {
	m := &memoryUsers{byID: map[uint]*user.User{}, nextID: 100, activeSet: map[uint]bool{}}
	for _, u := range users {
		m.byID[u.ID()] = u
	}
	return m
}

func (m *memoryUsers) Create(_ context.Context, u *user.User) error {
	m.nextID++
	if err := u.SetID(m.nextID); err != nil {
		return err
	}
	m.byID[u.ID()] = u
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id uint) (*user.User, error) {
	return m.byID[id], nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email().String() == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, u *user.User) error {
	m.byID[u.ID()] = u
	return nil
}

func (m *memoryUsers) SetActive(_ context.Context, id uint, active bool) error {
	m.activeSet[id] = active
	return nil
}

type memorySessions struct {
	user.SessionRepository
	created       []*user.Session
	revoked       []string
	revokedExcept string
}

func (m *memorySessions) Create(_ context.Context, s *user.Session) error {
	m.created = append(m.created, s)
	return nil
}

func (m *memorySessions) Revoke(_ context.Context, id string, _ time.Time) error {
	m.revoked = append(m.revoked, id)
	return nil
}

func (m *memorySessions) RevokeAllExcept(_ context.Context, _ uint, keepID string, _ time.Time) error {
	m.revokedExcept = keepID
	return nil
}

type stubRoles struct {
	permission.RoleRepository
	slugs []string
}

func (s stubRoles) GetBySlug(_ context.Context, slug string) (*permission.Role, error) {
	for _, known := range s.slugs {
		if known == slug {
			return permission.NewRole(slug, slug, "")
		}
	}
	return nil, nil
}

type scriptedLimiter struct {
	decision ratelimit.Decision
	err      error
	resets   []string
	keys     []string
}

func (l *scriptedLimiter) Allow(_ context.Context, key string, _ ratelimit.Limits) (ratelimit.Decision, error) {
	l.keys = append(l.keys, key)
	return l.decision, l.err
}

func (l *scriptedLimiter) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return nil
}

type loginCounter struct{ results []string }

func (c *loginCounter) LoginAttempt(result string) { c.results = append(c.results, result) }

type mockRecorder struct{ actions []string }

func (r *mockRecorder) Record(_ *authorization.Principal, action, _ string, _ uint, _ map[string]any) {
	r.actions = append(r.actions, action)
}
