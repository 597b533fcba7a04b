package repositories

import (
	"context"
	"time"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	HubID      *uint                   `json:"hub_id"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Category   *string                 `json:"category"`
	CreatedBy  *uint                   `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "difficulty"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

type QuizFilters struct {
	HubID  *uint              `json:"hub_id"`
	Status *models.QuizStatus `json:"status"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type AuditFilters struct {
	ActorID *uint   `json:"actor_id"`
	Action  *string `json:"action"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// ActivityUpsert is an explicit partial-update type for heartbeat writes.
// HubSet distinguishes "caller did not mention the hub" (keep the stored
// value) from "caller set it to nil" (clear it); plain omission must never
// clear a previously reported game context.
type ActivityUpsert struct {
	UserID      uint
	Status      models.ActivityStatus
	HubSet      bool
	HubID       *uint
	CurrentPage *string
	Metadata    []byte
}

// ===== REPOSITORY INTERFACES =====

type ActivityRepository interface {
	Upsert(ctx context.Context, up ActivityUpsert) (*models.ActivityRecord, error)
	DeleteByUser(ctx context.Context, userID uint) error
	GetByUser(ctx context.Context, userID uint) (*models.ActivityRecord, error)
	ListActive(ctx context.Context) ([]*models.ActivityRecord, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByDiscordID(ctx context.Context, discordID string) (*models.User, error)
	TouchLastActive(ctx context.Context, userID uint) error
	UpdateGamification(ctx context.Context, userID uint, xp, level, streak int) error
}

type HubRepository interface {
	Create(ctx context.Context, hub *models.Hub) error
	GetByID(ctx context.Context, id uint) (*models.Hub, error)
	GetBySlug(ctx context.Context, slug string) (*models.Hub, error)
	List(ctx context.Context) ([]*models.Hub, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.QuizSession) error
	GetByID(ctx context.Context, id uint) (*models.QuizSession, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.QuizSession, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.QuizStatus) error

	// Assignments
	CreateAssignments(ctx context.Context, assignments []*models.QuizQuestionAssignment) error
	DeleteAssignments(ctx context.Context, quizID uint) error
	GetAssignments(ctx context.Context, quizID uint) ([]*models.QuizQuestionAssignment, error)
	UpdateAssignmentPermutation(ctx context.Context, assignmentID uint, permutation []byte) error

	// Scores
	GetScore(ctx context.Context, quizID, userID uint) (*models.QuizScore, error)
	CreateScore(ctx context.Context, score *models.QuizScore) error
	ListScores(ctx context.Context, quizID uint) ([]*models.QuizScore, error)
	LastScoreTime(ctx context.Context, userID uint) (*time.Time, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filters AuditFilters) ([]*models.AuditLog, int64, error)
}

// Repository aggregates all domain repositories.
type Repository interface {
	Activity() ActivityRepository
	User() UserRepository
	Hub() HubRepository
	Question() QuestionRepository
	Quiz() QuizRepository
	Audit() AuditRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
