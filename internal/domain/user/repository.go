package user

import (
	"context"
	"time"
)

// Repository persists users and their role assignments. GetByID and
// GetByEmail return nil, nil when nothing matches.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ExistingIDs returns the subset of ids that belong to a user.
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
	// ListNotInGroup lists users who are not members of groupID.
	ListNotInGroup(ctx context.Context, groupID uint, limit int) ([]*User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*User, error)
	UpdatePassword(ctx context.Context, user *User) error
	SetActive(ctx context.Context, id uint, active bool) error
	SetRoles(ctx context.Context, userID uint, roles []string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint, at time.Time) error
	// RevokeAllExcept revokes every session of userID other than keepID.
	RevokeAllExcept(ctx context.Context, userID uint, keepID string, at time.Time) error
	// DeleteStale removes sessions that expired or were revoked before cutoff.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// PasswordHasher hashes and checks passwords. Verify fails on any mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}
