package models

// All lists every persistence model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&UserModel{},
		&RoleModel{},
		&UserRoleModel{},
		&SessionModel{},
		&UserGroupModel{},
		&UserGroupMemberModel{},
		&PermissionModel{},
		&CasbinRuleModel{},
		&ActivityLogModel{},
	}
}
