// Package usergroup models named collections of users that hold permission
// dispositions on behalf of their members.
package usergroup

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orris-inc/warden/internal/domain/permission"
)

const (
	MaxNameLength        = 100
	MaxDisplayNameLength = 150
	MaxDescriptionLength = 1000
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// Details are the admin-editable attributes of a group.
type Details struct {
	Name          string
	DisplayName   string
	Description   string
	IsActive      bool
	SortOrder     int
	LegacyGroupID *uint
	Metadata      map[string]any
}

// UserGroup is the aggregate root for a group. Name is the unique machine
// key; the group's permissions live in the permission store under Subject.
type UserGroup struct {
	id            uint
	name          string
	displayName   string
	description   string
	isActive      bool
	sortOrder     int
	legacyGroupID *uint
	metadata      map[string]any
	createdAt     time.Time
	updatedAt     time.Time
}

func NewUserGroup(d Details) (*UserGroup, error) {
	d = normalize(d)
	if err := validate(d); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &UserGroup{createdAt: now}
	g.apply(d, now)
	return g, nil
}

// ReconstructUserGroup rebuilds a persisted group without re-validating it.
func ReconstructUserGroup(id uint, d Details, createdAt, updatedAt time.Time) (*UserGroup, error) {
	if id == 0 {
		return nil, fmt.Errorf("user group ID cannot be zero")
	}
	g := &UserGroup{id: id, createdAt: createdAt}
	g.apply(d, updatedAt)
	return g, nil
}

// Update replaces every editable attribute.
func (g *UserGroup) Update(d Details) error {
	d = normalize(d)
	if err := validate(d); err != nil {
		return err
	}
	g.apply(d, time.Now().UTC())
	return nil
}

func (g *UserGroup) apply(d Details, at time.Time) {
	g.name = d.Name
	g.displayName = d.DisplayName
	g.description = d.Description
	g.isActive = d.IsActive
	g.sortOrder = d.SortOrder
	g.legacyGroupID = d.LegacyGroupID
	g.metadata = maps.Clone(d.Metadata)
	if g.metadata == nil {
		g.metadata = map[string]any{}
	}
	g.updatedAt = at
}

func normalize(d Details) Details {
	d.Name = strings.TrimSpace(d.Name)
	d.DisplayName = strings.TrimSpace(d.DisplayName)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

func validate(d Details) error {
	switch {
	case d.Name == "":
		return newFieldError("name", "name is required")
	case utf8.RuneCountInString(d.Name) > MaxNameLength:
		return newFieldError("name", fmt.Sprintf("name must be at most %d characters long", MaxNameLength))
	case !namePattern.MatchString(d.Name):
		return newFieldError("name", "name may only contain lowercase letters, digits, dashes, underscores and dots")
	case d.DisplayName == "":
		return newFieldError("display_name", "display_name is required")
	case utf8.RuneCountInString(d.DisplayName) > MaxDisplayNameLength:
		return newFieldError("display_name", fmt.Sprintf("display_name must be at most %d characters long", MaxDisplayNameLength))
	case utf8.RuneCountInString(d.Description) > MaxDescriptionLength:
		return newFieldError("description", fmt.Sprintf("description must be at most %d characters long", MaxDescriptionLength))
	case d.SortOrder < 0:
		return newFieldError("sort_order", "sort_order must be at least 0")
	case d.LegacyGroupID != nil && *d.LegacyGroupID == 0:
		return newFieldError("legacy_group_id", "legacy_group_id must be greater than 0")
	}
	return nil
}

func (g *UserGroup) ID() uint                 { return g.id }
func (g *UserGroup) Name() string             { return g.name }
func (g *UserGroup) DisplayName() string      { return g.displayName }
func (g *UserGroup) Description() string      { return g.description }
func (g *UserGroup) IsActive() bool           { return g.isActive }
func (g *UserGroup) SortOrder() int           { return g.sortOrder }
func (g *UserGroup) LegacyGroupID() *uint     { return g.legacyGroupID }
func (g *UserGroup) Metadata() map[string]any { return maps.Clone(g.metadata) }
func (g *UserGroup) CreatedAt() time.Time     { return g.createdAt }
func (g *UserGroup) UpdatedAt() time.Time     { return g.updatedAt }

// IsLegacy reports whether the group was migrated from the old group table.
func (g *UserGroup) IsLegacy() bool { return g.legacyGroupID != nil }

// Subject is the permission store key for this group. Only valid after SetID.
func (g *UserGroup) Subject() permission.Subject {
	return permission.GroupSubject(g.id)
}

func (g *UserGroup) Details() Details {
	return Details{
		Name:          g.name,
		DisplayName:   g.displayName,
		Description:   g.description,
		IsActive:      g.isActive,
		SortOrder:     g.sortOrder,
		LegacyGroupID: g.legacyGroupID,
		Metadata:      g.Metadata(),
	}
}

func (g *UserGroup) SetID(id uint) error {
	if g.id != 0 {
		return fmt.Errorf("user group ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user group ID cannot be zero")
	}
	g.id = id
	return nil
}
