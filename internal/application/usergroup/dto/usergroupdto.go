package dto

import (
	"encoding/json"
	"time"
)

// CreateUserGroupRequest is the payload for creating a group. Permissions
// lists capability names to grant.
type CreateUserGroupRequest struct {
	Name          string          `json:"name" validate:"required,max=100,group_name"`
	DisplayName   string          `json:"display_name" validate:"required,max=150"`
	Description   string          `json:"description" validate:"max=1000"`
	IsActive      *bool           `json:"is_active"`
	SortOrder     int             `json:"sort_order" validate:"gte=0"`
	LegacyGroupID *uint           `json:"legacy_group_id" validate:"omitempty,gt=0"`
	Metadata      json.RawMessage `json:"metadata" swaggertype:"object"`
	Permissions   []string        `json:"permissions" validate:"omitempty,dive,required"`
}

// UpdateUserGroupRequest replaces every attribute. A nil Permissions leaves
// the group's dispositions untouched; an empty list revokes every grant.
type UpdateUserGroupRequest struct {
	Name          string          `json:"name" validate:"required,max=100,group_name"`
	DisplayName   string          `json:"display_name" validate:"required,max=150"`
	Description   string          `json:"description" validate:"max=1000"`
	IsActive      *bool           `json:"is_active"`
	SortOrder     int             `json:"sort_order" validate:"gte=0"`
	LegacyGroupID *uint           `json:"legacy_group_id" validate:"omitempty,gt=0"`
	Metadata      json.RawMessage `json:"metadata" swaggertype:"object"`
	Permissions   *[]string       `json:"permissions" validate:"omitempty,dive,required"`
}

type ListUserGroupsRequest struct {
	Page   int    `form:"page"`
	Search string `form:"search" binding:"max=100"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
	Legacy string `form:"legacy" binding:"omitempty,oneof=yes no"`
}

type AssignUsersRequest struct {
	UserIDs        []uint  `json:"user_ids" validate:"required,min=1,dive,gt=0"`
	IsPrimaryGroup bool    `json:"is_primary_group"`
	ExpiresAt      *string `json:"expires_at" validate:"omitempty,future_date" example:"2026-12-31"`
}

// UpdatePermissionsRequest maps capability names to grant, deny or remove.
type UpdatePermissionsRequest struct {
	Permissions map[string]string `json:"permissions" validate:"required"`
}

type SearchUserGroupsRequest struct {
	Search string `form:"search" binding:"max=100"`
}

type UserGroupResponse struct {
	ID              uint           `json:"id"`
	Name            string         `json:"name"`
	DisplayName     string         `json:"display_name"`
	Description     string         `json:"description"`
	DescriptionHTML string         `json:"description_html,omitempty"`
	IsActive        bool           `json:"is_active"`
	SortOrder       int            `json:"sort_order"`
	LegacyGroupID   *uint          `json:"legacy_group_id"`
	IsLegacy        bool           `json:"is_legacy"`
	Metadata        map[string]any `json:"metadata"`
	MembersCount    *int64         `json:"members_count,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type MemberResponse struct {
	UserID         uint       `json:"user_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	IsPrimaryGroup bool       `json:"is_primary_group"`
	AssignedAt     time.Time  `json:"assigned_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type UserGroupDetailResponse struct {
	UserGroupResponse
	GrantedPermissions  []string         `json:"granted_permissions"`
	DeniedPermissions   []string         `json:"denied_permissions"`
	Members             []MemberResponse `json:"members"`
	ExpiredMembersCount int              `json:"expired_members_count"`
}

type ListUserGroupsResponse struct {
	Items      []UserGroupResponse `json:"items"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

type CandidateUserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AssignUsersFormResponse struct {
	Group      UserGroupResponse       `json:"group"`
	Candidates []CandidateUserResponse `json:"candidates"`
}

type AssignUsersResponse struct {
	GroupID  uint   `json:"group_id"`
	UserIDs  []uint `json:"user_ids"`
	Assigned int    `json:"assigned"`
}

// PermissionState is one capability row of the permission form. Disposition
// is "granted", "denied" or "" when absent.
type PermissionState struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Disposition string `json:"disposition"`
}

type PermissionSection struct {
	Key         string            `json:"key"`
	Title       string            `json:"title"`
	Permissions []PermissionState `json:"permissions"`
}

type PermissionFormResponse struct {
	Group    UserGroupResponse   `json:"group"`
	Sections []PermissionSection `json:"sections"`
}

type UpdatePermissionsResponse struct {
	Granted []string `json:"granted"`
	Denied  []string `json:"denied"`
}

type SearchResultResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}
