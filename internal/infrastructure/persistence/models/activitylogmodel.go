package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/warden/internal/shared/constants"
)

type ActivityLogModel struct {
	ID          uint   `gorm:"primarykey"`
	TenantID    uint   `gorm:"not null;default:0;index"`
	ActorID     uint   `gorm:"not null;index"`
	Action      string `gorm:"not null;size:64"`
	SubjectType string `gorm:"not null;size:64;index:idx_activity_subject"`
	SubjectID   uint   `gorm:"not null;index:idx_activity_subject"`
	Properties  datatypes.JSON
	CreatedAt   time.Time `gorm:"index"`
}

func (ActivityLogModel) TableName() string {
	return constants.TableActivityLogs
}
