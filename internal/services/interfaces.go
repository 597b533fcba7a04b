package services

import (
	"context"
	"time"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
	"github.com/Calcifer04/GGZA-sub001/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validated request types
type HeartbeatRequest = validator.HeartbeatRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type CreateQuizRequest = validator.QuizCreateRequest
type QuizStatusUpdateRequest = validator.QuizStatusUpdateRequest
type AssignQuestionsRequest = validator.AssignQuestionsRequest
type SubmitAnswersRequest = validator.SubmitAnswersRequest

type HeartbeatResponse struct {
	Success  bool                   `json:"success"`
	Activity *models.ActivityRecord `json:"activity"`
}

// HubActivity is the per-hub slice of the live stats snapshot.
type HubActivity struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

type ActivityStatsResponse struct {
	TotalOnline int           `json:"total_online"`
	InVoice     int           `json:"in_voice"`
	InQuiz      int           `json:"in_quiz"`
	Hubs        []HubActivity `json:"hubs"`
}

// QuizSessionState is the outcome discriminator of GET /quiz/:id.
type QuizSessionState string

const (
	SessionScheduled QuizSessionState = "scheduled"
	SessionCompleted QuizSessionState = "completed"
	SessionLive      QuizSessionState = "live"
)

// SessionQuestion is a question as delivered to a player: options already
// shuffled by the persisted permutation, correct index never included. The
// permutation itself is returned so the client can map a chosen display
// position back to a canonical option index on submit.
type SessionQuestion struct {
	QuestionID  uint     `json:"question_id"`
	Text        string   `json:"question_text"`
	Options     []string `json:"options"`
	Permutation []int    `json:"permutation"`
}

type ScorePayload struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correct_count"`
}

type QuizSessionResponse struct {
	State       QuizSessionState  `json:"state"`
	QuizID      uint              `json:"quiz_id"`
	Title       string            `json:"title,omitempty"`
	HubSlug     string            `json:"hub_slug,omitempty"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	Score       *ScorePayload     `json:"score,omitempty"`
	SecondsPerQ int               `json:"seconds_per_question,omitempty"`
	PointsPerQ  int               `json:"points_per_question,omitempty"`
	Questions   []SessionQuestion `json:"questions,omitempty"`
}

type SubmitResult struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correct_count"`
	Total        int `json:"total"`
	XPAwarded    int `json:"xp_awarded"`
	Streak       int `json:"streak"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
}

type QuizListResponse struct {
	Quizzes []*models.QuizSession `json:"quizzes"`
	Total   int64                 `json:"total"`
}

// ===== SERVICE INTERFACES =====

// ActivityService owns presence records and the live stats snapshot.
type ActivityService interface {
	// Heartbeat upserts the caller's presence row; the hub column is only
	// written when the request mentions it.
	Heartbeat(ctx context.Context, userID uint, req *HeartbeatRequest) (*HeartbeatResponse, error)

	// Depart removes the caller's presence row; missing rows are a no-op.
	Depart(ctx context.Context, userID uint) error

	// Stats computes the live snapshot, cached for a short TTL.
	Stats(ctx context.Context) (*ActivityStatsResponse, error)
}

// QuizSessionService resolves quiz delivery and scoring for players.
type QuizSessionService interface {
	Resolve(ctx context.Context, quizID, userID uint) (*QuizSessionResponse, error)
	SubmitAnswers(ctx context.Context, quizID, userID uint, req *SubmitAnswersRequest) (*SubmitResult, error)
}

// AdminService is the role-gated management surface. Every mutation writes
// an audit-log entry on success.
type AdminService interface {
	CreateQuestion(ctx context.Context, req *CreateQuestionRequest, actorID uint) (*models.Question, error)
	ListQuestions(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)

	CreateQuiz(ctx context.Context, req *CreateQuizRequest, actorID uint) (*models.QuizSession, error)
	ListQuizzes(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error)
	UpdateQuizStatus(ctx context.Context, quizID uint, req *QuizStatusUpdateRequest, actorID uint) error
	AssignQuestions(ctx context.Context, quizID uint, req *AssignQuestionsRequest, actorID uint) error
}

// XPService applies the gamified XP/streak rules.
type XPService interface {
	AwardQuizPoints(ctx context.Context, userID uint, correctCount, pointsPer int) (xpAwarded, streak int, err error)
}

// ExportService renders admin exports.
type ExportService interface {
	// ExportQuizResults renders an Excel workbook of a quiz's scores.
	ExportQuizResults(ctx context.Context, quizID uint) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Activity() ActivityService
	QuizSession() QuizSessionService
	Admin() AdminService
	XP() XPService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
