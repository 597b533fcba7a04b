package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog captures privileged actions taken through the admin API.
type AuditLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ActorID    uint           `json:"actor_id" gorm:"not null;index"`
	Action     string         `json:"action" gorm:"not null;size:64;index"`
	TargetType string         `json:"target_type" gorm:"not null;size:64"`
	TargetID   *uint          `json:"target_id"`
	Metadata   datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
