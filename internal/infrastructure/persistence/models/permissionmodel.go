package models

import (
	"time"

	"github.com/orris-inc/warden/internal/shared/constants"
)

// PermissionModel is the catalogue row for one registered capability.
type PermissionModel struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"uniqueIndex;not null;size:125"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PermissionModel) TableName() string {
	return constants.TablePermissions
}

// CasbinRuleModel mirrors the gorm-adapter casbin_rule table so policy rows
// can be written inside an application transaction. Dispositions use
// ptype "p" with (v0, v1, v2) = (subject, capability, effect).
type CasbinRuleModel struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	Ptype string `gorm:"size:100;uniqueIndex:unique_index"`
	V0    string `gorm:"size:100;uniqueIndex:unique_index"`
	V1    string `gorm:"size:100;uniqueIndex:unique_index"`
	V2    string `gorm:"size:100;uniqueIndex:unique_index"`
	V3    string `gorm:"size:100;uniqueIndex:unique_index"`
	V4    string `gorm:"size:100;uniqueIndex:unique_index"`
	V5    string `gorm:"size:100;uniqueIndex:unique_index"`
}

func (CasbinRuleModel) TableName() string {
	return constants.TableCasbinRule
}
