package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityStatus string

const (
	StatusOnline  ActivityStatus = "online"
	StatusAway    ActivityStatus = "away"
	StatusOffline ActivityStatus = "offline"
)

// ActivityRecord is the presence row for a single user. At most one record
// exists per user; absence means the user never reported or went offline.
// Heartbeats overwrite the row last-write-wins, except that the hub column
// is kept when a heartbeat does not mention it.
type ActivityRecord struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	Status      ActivityStatus `json:"status" gorm:"not null;size:16;index" validate:"omitempty,oneof=online away offline"`
	HubID       *uint          `json:"hub_id" gorm:"index"`
	CurrentPage *string        `json:"current_page" gorm:"size:500"`
	Metadata    datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	LastHeartbeat time.Time `json:"last_heartbeat" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
	Hub  *Hub `json:"hub,omitempty" gorm:"foreignKey:HubID"`
}

func (ActivityRecord) TableName() string {
	return "activity_records"
}
