// Package activity records who changed what in the admin surface.
package activity

import (
	"context"
	"time"
)

const (
	ActionGroupCreated        = "user_group.created"
	ActionGroupUpdated        = "user_group.updated"
	ActionGroupDeleted        = "user_group.deleted"
	ActionGroupUsersAssigned  = "user_group.users_assigned"
	ActionGroupUserRemoved    = "user_group.user_removed"
	ActionGroupPermsUpdated   = "user_group.permissions_updated"
	ActionUserLoggedIn        = "user.logged_in"
	ActionUserLoggedOut       = "user.logged_out"
	ActionUserPasswordChanged = "user.password_changed"
	ActionUserDeactivatedOut  = "user.deactivated_logout"

	SubjectUserGroup = "user_group"
	SubjectUser      = "user"
)

// Entry is one audit record. Properties holds action-specific detail.
type Entry struct {
	ID          uint
	TenantID    uint
	ActorID     uint
	Action      string
	SubjectType string
	SubjectID   uint
	Properties  map[string]any
	CreatedAt   time.Time
}

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListForSubject(ctx context.Context, subjectType string, subjectID uint, limit int) ([]*Entry, error)
}
