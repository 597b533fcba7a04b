package validator

import (
	"time"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
)

// HeartbeatRequest is the body of POST /activity/heartbeat. HubID is an
// explicit optional: left out of the JSON it stays nil and the stored hub is
// preserved on upsert. Every other field is last-write-wins; omitting
// current_page or metadata clears the stored value.
type HeartbeatRequest struct {
	HubID       *uint                  `json:"hub_id"`
	Status      *models.ActivityStatus `json:"status" validate:"omitempty,oneof=online away"`
	CurrentPage *string                `json:"current_page" validate:"omitempty,max=500"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// QuestionCreateRequest creates a quiz question. Exactly four options and a
// correct index inside [0,3] are enforced by custom rules.
type QuestionCreateRequest struct {
	HubID        uint                   `json:"hub_id" validate:"required"`
	Text         string                 `json:"question_text" validate:"required,min=1,max=2000"`
	Options      []string               `json:"options" validate:"required,option_count,dive,required,max=500"`
	CorrectIndex int                    `json:"correct_index" validate:"correct_index"`
	Difficulty   models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Category     *string                `json:"category" validate:"omitempty,max=100"`
}

// QuizCreateRequest creates a quiz session.
type QuizCreateRequest struct {
	HubID       uint      `json:"hub_id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	SecondsPerQ int       `json:"seconds_per_question" validate:"omitempty,min=5,max=300"`
	PointsPerQ  int       `json:"points_per_question" validate:"omitempty,min=1,max=1000"`
}

// QuizStatusUpdateRequest moves a quiz through its lifecycle.
type QuizStatusUpdateRequest struct {
	Status models.QuizStatus `json:"status" validate:"required,oneof=scheduled live completed"`
}

// AssignQuestionsRequest attaches questions to a quiz in order.
type AssignQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" validate:"required,min=1,dive,required"`
}

// SubmitAnswerEntry is one answer: the display position the player picked,
// which the server maps back through the persisted permutation.
type SubmitAnswerEntry struct {
	QuestionID uint `json:"question_id" validate:"required"`
	Position   int  `json:"position" validate:"min=0,max=3"`
}

// SubmitAnswersRequest submits a full set of answers for a live quiz. Each
// question may appear at most once; repeated entries would let a player
// collect points for the same question several times.
type SubmitAnswersRequest struct {
	Answers []SubmitAnswerEntry `json:"answers" validate:"required,min=1,unique=QuestionID,dive"`
}
