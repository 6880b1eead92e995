// Package user models platform accounts as the access gate sees them:
// identity, roles, the active flag and the forced-password-change flag.
package user

import (
	"fmt"
	"slices"
	"strings"
	"time"

	vo "github.com/orris-inc/warden/internal/domain/user/valueobjects"
)

type User struct {
	id                 uint
	tenantID           uint
	name               string
	email              *vo.Email
	passwordHash       string
	isActive           bool
	mustChangePassword bool
	roles              []string
	passwordChangedAt  *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

// NewUser creates an active account. mustChangePassword is set for accounts
// created with a temporary password.
func NewUser(tenantID uint, name string, email *vo.Email, passwordHash string, mustChangePassword bool) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewDomainError("name", "name is required")
	}
	if email == nil {
		return nil, NewDomainError("email", "email is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}

	now := time.Now().UTC()
	return &User{
		tenantID:           tenantID,
		name:               name,
		email:              email,
		passwordHash:       passwordHash,
		isActive:           true,
		mustChangePassword: mustChangePassword,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// Snapshot carries persisted state into ReconstructUser.
type Snapshot struct {
	ID                 uint
	TenantID           uint
	Name               string
	Email              string
	PasswordHash       string
	IsActive           bool
	MustChangePassword bool
	Roles              []string
	PasswordChangedAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ReconstructUser(s Snapshot) (*User, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	email, err := vo.NewEmail(s.Email)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", s.ID, err)
	}
	return &User{
		id:                 s.ID,
		tenantID:           s.TenantID,
		name:               s.Name,
		email:              email,
		passwordHash:       s.PasswordHash,
		isActive:           s.IsActive,
		mustChangePassword: s.MustChangePassword,
		roles:              slices.Clone(s.Roles),
		passwordChangedAt:  s.PasswordChangedAt,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
	}, nil
}

func (u *User) ID() uint                      { return u.id }
func (u *User) TenantID() uint                { return u.tenantID }
func (u *User) Name() string                  { return u.name }
func (u *User) Email() *vo.Email              { return u.email }
func (u *User) PasswordHash() string          { return u.passwordHash }
func (u *User) IsActive() bool                { return u.isActive }
func (u *User) MustChangePassword() bool      { return u.mustChangePassword }
func (u *User) Roles() []string               { return slices.Clone(u.roles) }
func (u *User) PasswordChangedAt() *time.Time { return u.passwordChangedAt }
func (u *User) CreatedAt() time.Time          { return u.createdAt }
func (u *User) UpdatedAt() time.Time          { return u.updatedAt }

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}

// AssignRoles replaces the role set, dropping blanks and duplicates.
func (u *User) AssignRoles(roles ...string) {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	u.roles = out
	u.updatedAt = time.Now().UTC()
}

// ChangePassword stores a new hash and lifts the forced-change flag.
func (u *User) ChangePassword(newHash string, at time.Time) error {
	if newHash == "" {
		return fmt.Errorf("password hash is required")
	}
	u.passwordHash = newHash
	u.mustChangePassword = false
	u.passwordChangedAt = &at
	u.updatedAt = at
	return nil
}

func (u *User) RequirePasswordChange() {
	u.mustChangePassword = true
	u.updatedAt = time.Now().UTC()
}

func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now().UTC()
}

func (u *User) Activate() {
	u.isActive = true
	u.updatedAt = time.Now().UTC()
}
