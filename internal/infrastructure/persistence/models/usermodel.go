package models

import (
	"time"

	"github.com/orris-inc/warden/internal/shared/constants"
)

// UserModel represents the database persistence model for users.
// Roles is loaded through the user_roles join table.
type UserModel struct {
	ID                 uint   `gorm:"primarykey"`
	TenantID           uint   `gorm:"not null;default:0;index"`
	Name               string `gorm:"not null;size:100"`
	Email              string `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash       string `gorm:"not null;size:255"`
	IsActive           bool   `gorm:"not null"`
	MustChangePassword bool   `gorm:"not null"`
	PasswordChangedAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Roles []UserRoleModel `gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string {
	return constants.TableUsers
}

type UserRoleModel struct {
	UserID   uint   `gorm:"primaryKey"`
	RoleSlug string `gorm:"primaryKey;size:50"`
}

func (UserRoleModel) TableName() string {
	return constants.TableUserRoles
}

type RoleModel struct {
	ID          uint   `gorm:"primarykey"`
	Slug        string `gorm:"uniqueIndex;not null;size:50"`
	Name        string `gorm:"not null;size:100"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RoleModel) TableName() string {
	return constants.TableRoles
}

// SessionModel backs server-side login sessions.
type SessionModel struct {
	ID        string    `gorm:"primarykey;size:36"`
	UserID    uint      `gorm:"not null;index"`
	IPAddress string    `gorm:"size:45"`
	UserAgent string    `gorm:"size:512"`
	ExpiresAt time.Time `gorm:"not null;index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (SessionModel) TableName() string {
	return constants.TableSessions
}
