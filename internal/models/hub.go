package models

import (
	"time"

	"gorm.io/gorm"
)

// Hub is a per-game community section. Activity and quizzes are scoped to hubs.
type Hub struct {
	ID    uint    `json:"id" gorm:"primaryKey"`
	Slug  string  `json:"slug" gorm:"uniqueIndex;not null;size:100" validate:"required,max=100"`
	Name  string  `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	Color string  `json:"color" gorm:"size:7;default:#5865F2"` // Hex color
	Icon  *string `json:"icon" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Hub) TableName() string {
	return "hubs"
}
