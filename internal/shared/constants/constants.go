package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DefaultPage          = 1
	DefaultPageSize      = 20
	MaxPageSize          = 100
	GroupListPageSize    = 15
	GroupSearchLimit     = 20
	AssignCandidateLimit = 500
	PermissionNameMaxLen = 125

	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"

	// gin context keys
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"

	TableUsers            = "users"
	TableRoles            = "roles"
	TableUserRoles        = "user_roles"
	TableSessions         = "sessions"
	TableUserGroups       = "user_groups"
	TableUserGroupMembers = "user_group_members"
	TablePermissions      = "permissions"
	TableActivityLogs     = "activity_logs"
	TableCasbinRule       = "casbin_rule"

	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgUnauthorized        = "Unauthenticated."
	ErrMsgForbidden           = "This action is unauthorized."
	ErrMsgGroupNotFound       = "User group not found"
	ErrMsgGroupHasMembers     = "Cannot delete group with existing members. Remove all users first."
)
