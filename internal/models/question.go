package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

type Question struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	HubID uint   `json:"hub_id" gorm:"not null;index"`
	Text  string `json:"text" gorm:"type:text;not null" validate:"required"`

	// Exactly four option strings, stored in canonical order as JSONB.
	// The correct index refers to this canonical order, never to the
	// shuffled order a player sees.
	Options      datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`
	CorrectIndex int            `json:"correct_index" gorm:"not null" validate:"min=0,max=3"`

	Difficulty DifficultyLevel `json:"difficulty" gorm:"default:medium;index" validate:"omitempty,oneof=easy medium hard"`
	Category   *string         `json:"category" gorm:"size:100"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Hub     Hub  `json:"-" gorm:"foreignKey:HubID"`
	Creator User `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionTexts decodes the JSONB option column.
func (q *Question) OptionTexts() ([]string, error) {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
