package usergroup

import (
	"context"
	"time"

	"github.com/orris-inc/warden/internal/shared/query"
)

type Status string

const (
	StatusAny      Status = ""
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type LegacyFilter string

const (
	LegacyAny LegacyFilter = ""
	LegacyYes LegacyFilter = "yes"
	LegacyNo  LegacyFilter = "no"
)

type ListFilter struct {
	query.PageFilter
	Search string
	Status Status
	Legacy LegacyFilter
}

// Repository persists groups. GetByID returns nil, nil when the group does
// not exist. Writes join the transaction carried by ctx.
type Repository interface {
	Create(ctx context.Context, group *UserGroup) error
	Update(ctx context.Context, group *UserGroup) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*UserGroup, error)
	// ExistsByName checks uniqueness across all groups, ignoring excludeID.
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*UserGroup, int64, error)
	// SearchActive matches active groups by name or display name.
	SearchActive(ctx context.Context, term string, limit int) ([]*UserGroup, error)
}

type MembershipRepository interface {
	// Upsert inserts or refreshes the pivot row for (user, group).
	Upsert(ctx context.Context, m *Membership) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, groupID, userID uint) (bool, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	CountByGroups(ctx context.Context, groupIDs []uint) (map[uint]int64, error)
	ListByGroup(ctx context.Context, groupID uint) ([]*Membership, error)
	MemberUserIDs(ctx context.Context, groupID uint) ([]uint, error)
	// ActiveGroupIDsForUser lists groups that are active and whose membership
	// has not expired at now.
	ActiveGroupIDsForUser(ctx context.Context, userID uint, now time.Time) ([]uint, error)
	// ClearPrimaryForUsers unsets the primary flag on every membership of
	// userIDs except the one in exceptGroupID.
	ClearPrimaryForUsers(ctx context.Context, userIDs []uint, exceptGroupID uint) error
}
