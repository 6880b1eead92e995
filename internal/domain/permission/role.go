package permission

import (
	"fmt"
	"regexp"
	"time"
)

var roleSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Role is a named bundle of capabilities assigned to users by the platform.
type Role struct {
	id          uint
	slug        string
	name        string
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

func NewRole(slug, name, description string) (*Role, error) {
	if !roleSlugPattern.MatchString(slug) || len(slug) > 50 {
		return nil, fmt.Errorf("invalid role slug %q", slug)
	}
	if name == "" {
		name = slug
	}
	now := time.Now().UTC()
	return &Role{
		slug:        slug,
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructRole(id uint, slug, name, description string, createdAt, updatedAt time.Time) (*Role, error) {
	if id == 0 {
		return nil, fmt.Errorf("role ID cannot be zero")
	}
	return &Role{
		id:          id,
		slug:        slug,
		name:        name,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (r *Role) ID() uint             { return r.id }
func (r *Role) Slug() string         { return r.slug }
func (r *Role) Name() string         { return r.name }
func (r *Role) Description() string  { return r.description }
func (r *Role) CreatedAt() time.Time { return r.createdAt }
func (r *Role) UpdatedAt() time.Time { return r.updatedAt }
func (r *Role) Subject() Subject     { return RoleSubject(r.slug) }

func (r *Role) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("role ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("role ID cannot be zero")
	}
	r.id = id
	return nil
}
