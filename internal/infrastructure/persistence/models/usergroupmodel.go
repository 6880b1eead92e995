package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/warden/internal/shared/constants"
)

// UserGroupModel is the persistence model for user groups.
type UserGroupModel struct {
	ID            uint   `gorm:"primarykey"`
	Name          string `gorm:"uniqueIndex;not null;size:100"`
	DisplayName   string `gorm:"not null;size:150"`
	Description   string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null;index"`
	SortOrder     int    `gorm:"not null;default:0;index:idx_user_groups_order"`
	LegacyGroupID *uint  `gorm:"index"`
	Metadata      datatypes.JSON
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (UserGroupModel) TableName() string {
	return constants.TableUserGroups
}

// UserGroupMemberModel is the user/group pivot. (user_id, user_group_id) is unique.
type UserGroupMemberModel struct {
	ID             uint       `gorm:"primarykey"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_user_group_member"`
	UserGroupID    uint       `gorm:"not null;uniqueIndex:idx_user_group_member;index"`
	IsPrimaryGroup bool       `gorm:"not null"`
	AssignedAt     time.Time  `gorm:"not null"`
	ExpiresAt      *time.Time `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (UserGroupMemberModel) TableName() string {
	return constants.TableUserGroupMembers
}
