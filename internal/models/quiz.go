package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizScheduled QuizStatus = "scheduled"
	QuizLive      QuizStatus = "live"
	QuizCompleted QuizStatus = "completed"
)

// QuizSession is a scheduled quiz event inside a hub.
type QuizSession struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	HubID uint   `json:"hub_id" gorm:"not null;index"`
	Title string `json:"title" gorm:"not null;size:200" validate:"required,max=200"`

	Status      QuizStatus `json:"status" gorm:"default:scheduled;index" validate:"omitempty,oneof=scheduled live completed"`
	ScheduledAt time.Time  `json:"scheduled_at" gorm:"not null"`
	SecondsPerQ int        `json:"seconds_per_question" gorm:"not null;default:30" validate:"min=5,max=300"`
	PointsPerQ  int        `json:"points_per_question" gorm:"not null;default:100" validate:"min=1,max=1000"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Hub         Hub                      `json:"hub" gorm:"foreignKey:HubID"`
	Assignments []QuizQuestionAssignment `json:"assignments,omitempty" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// QuizQuestionAssignment links a quiz to a question. The shuffle permutation
// is generated on first delivery and persisted so a reload shows the same
// option order; nil means not yet delivered.
type QuizQuestionAssignment struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	QuizID     uint `json:"quiz_id" gorm:"not null;index;uniqueIndex:idx_quiz_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_quiz_question"`

	OrderIndex  int            `json:"order_index" gorm:"not null"`
	Permutation datatypes.JSON `json:"permutation" gorm:"type:jsonb"` // [4]int, indices into the option set

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz     QuizSession `json:"-" gorm:"foreignKey:QuizID"`
	Question Question    `json:"question" gorm:"foreignKey:QuestionID"`
}

func (QuizQuestionAssignment) TableName() string {
	return "quiz_question_assignments"
}

// PermutationSlots decodes the persisted permutation. ok is false when no
// permutation has been generated yet.
func (a *QuizQuestionAssignment) PermutationSlots() (perm []int, ok bool) {
	if len(a.Permutation) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(a.Permutation, &perm); err != nil {
		return nil, false
	}
	return perm, len(perm) == OptionCount
}

// QuizScore records that a user completed a quiz. Existence of the row, not
// any flag on it, is the authoritative "already answered" gate.
type QuizScore struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	QuizID uint `json:"quiz_id" gorm:"not null;index;uniqueIndex:idx_quiz_user"`
	UserID uint `json:"user_id" gorm:"not null;index;uniqueIndex:idx_quiz_user"`

	Score        int `json:"score" gorm:"not null"`
	CorrectCount int `json:"correct_count" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Quiz QuizSession `json:"-" gorm:"foreignKey:QuizID"`
	User User        `json:"-" gorm:"foreignKey:UserID"`
}

func (QuizScore) TableName() string {
	return "quiz_scores"
}
