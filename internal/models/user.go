package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleMember     UserRole = "member"
	RoleQuizmaster UserRole = "quizmaster"
	RoleModerator  UserRole = "moderator"
	RoleAdmin      UserRole = "admin"
)

// PrivilegedRoles is the fixed set of roles allowed to use the admin API.
var PrivilegedRoles = []UserRole{RoleAdmin, RoleModerator, RoleQuizmaster}

type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	DiscordID string `json:"discord_id" gorm:"uniqueIndex;not null;size:32"`
	Username  string `json:"username" gorm:"not null;size:100"`

	// Profile info
	AvatarURL *string        `json:"avatar_url" gorm:"size:500"`
	Roles     datatypes.JSON `json:"roles" gorm:"type:jsonb"` // []UserRole

	// Gamification
	XP          int `json:"xp" gorm:"not null;default:0"`
	Level       int `json:"level" gorm:"not null;default:1"`
	StreakCount int `json:"streak_count" gorm:"not null;default:0"`

	// Denormalized presence timestamp, refreshed by heartbeats
	LastActiveAt *time.Time `json:"last_active_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// RoleList decodes the JSONB role column. An empty column means no roles.
func (u *User) RoleList() []UserRole {
	if len(u.Roles) == 0 {
		return nil
	}
	var roles []UserRole
	if err := json.Unmarshal(u.Roles, &roles); err != nil {
		return nil
	}
	return roles
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...UserRole) bool {
	for _, have := range u.RoleList() {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
