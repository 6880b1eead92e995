package usergroup

import (
	"fmt"
	"time"

	"github.com/orris-inc/warden/internal/domain/shared"
	"github.com/orris-inc/warden/internal/shared/biztime"
)

// Membership links a user to a group. At most one membership per user is
// primary; an expired membership stays listed but confers nothing.
type Membership struct {
	userID     uint
	groupID    uint
	isPrimary  bool
	assignedAt time.Time
	expiresAt  *time.Time
}

// NewMembership validates a fresh assignment made at now. expiresAt must
// fall on a later calendar day than now.
func NewMembership(userID, groupID uint, isPrimary bool, expiresAt *time.Time, now time.Time) (*Membership, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if groupID == 0 {
		return nil, fmt.Errorf("group ID is required")
	}
	if expiresAt != nil && !biztime.IsAfterToday(*expiresAt, now) {
		return nil, newFieldError("expires_at", "expires_at must be a date after today")
	}
	return &Membership{
		userID:     userID,
		groupID:    groupID,
		isPrimary:  isPrimary,
		assignedAt: now.UTC(),
		expiresAt:  expiresAt,
	}, nil
}

func ReconstructMembership(userID, groupID uint, isPrimary bool, assignedAt time.Time, expiresAt *time.Time) *Membership {
	return &Membership{
		userID:     userID,
		groupID:    groupID,
		isPrimary:  isPrimary,
		assignedAt: assignedAt,
		expiresAt:  expiresAt,
	}
}

func (m *Membership) UserID() uint          { return m.userID }
func (m *Membership) GroupID() uint         { return m.groupID }
func (m *Membership) IsPrimary() bool       { return m.isPrimary }
func (m *Membership) AssignedAt() time.Time { return m.assignedAt }
func (m *Membership) ExpiresAt() *time.Time { return m.expiresAt }

// IsEffective reports whether the membership still confers permissions at now.
func (m *Membership) IsEffective(now time.Time) bool {
	return !shared.IsExpiredAt(m.expiresAt, now)
}
