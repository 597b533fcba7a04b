package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.QuizSession) error {
	if err := q.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizSession, error) {
	var quiz models.QuizSession
	if err := q.db.WithContext(ctx).
		Preload("Hub").
		First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.QuizSession, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.QuizSession{})

	if filters.HubID != nil {
		query = query.Where("hub_id = ?", *filters.HubID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quizzes: %w", err)
	}

	query = query.Preload("Hub").Order("scheduled_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var quizzes []*models.QuizSession
	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}

	return quizzes, total, nil
}

func (q *QuizPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.QuizStatus) error {
	result := q.db.WithContext(ctx).
		Model(&models.QuizSession{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update quiz status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ===== ASSIGNMENTS =====

func (q *QuizPostgreSQL) CreateAssignments(ctx context.Context, assignments []*models.QuizQuestionAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	if err := q.db.WithContext(ctx).Create(&assignments).Error; err != nil {
		return fmt.Errorf("failed to create quiz question assignments: %w", err)
	}
	return nil
}

// DeleteAssignments removes every assignment of a quiz. Used when a quiz's
// question set is replaced wholesale.
func (q *QuizPostgreSQL) DeleteAssignments(ctx context.Context, quizID uint) error {
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Delete(&models.QuizQuestionAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete quiz question assignments: %w", err)
	}
	return nil
}

// GetAssignments returns the quiz's assignments ordered by their order index,
// with the underlying questions preloaded.
func (q *QuizPostgreSQL) GetAssignments(ctx context.Context, quizID uint) ([]*models.QuizQuestionAssignment, error) {
	var assignments []*models.QuizQuestionAssignment
	if err := q.db.WithContext(ctx).
		Preload("Question").
		Where("quiz_id = ?", quizID).
		Order("order_index asc").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to get quiz assignments: %w", err)
	}
	return assignments, nil
}

func (q *QuizPostgreSQL) UpdateAssignmentPermutation(ctx context.Context, assignmentID uint, permutation []byte) error {
	if err := q.db.WithContext(ctx).
		Model(&models.QuizQuestionAssignment{}).
		Where("id = ?", assignmentID).
		Update("permutation", permutation).Error; err != nil {
		return fmt.Errorf("failed to persist assignment permutation: %w", err)
	}
	return nil
}

// ===== SCORES =====

func (q *QuizPostgreSQL) GetScore(ctx context.Context, quizID, userID uint) (*models.QuizScore, error) {
	var score models.QuizScore
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		First(&score).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get quiz score: %w", err)
	}
	return &score, nil
}

func (q *QuizPostgreSQL) CreateScore(ctx context.Context, score *models.QuizScore) error {
	if err := q.db.WithContext(ctx).Create(score).Error; err != nil {
		return fmt.Errorf("failed to create quiz score: %w", err)
	}
	return nil
}

// LastScoreTime returns the creation time of the user's most recent quiz
// score, or nil when the user has never completed a quiz.
func (q *QuizPostgreSQL) LastScoreTime(ctx context.Context, userID uint) (*time.Time, error) {
	var score models.QuizScore
	err := q.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last score time: %w", err)
	}
	return &score.CreatedAt, nil
}

func (q *QuizPostgreSQL) ListScores(ctx context.Context, quizID uint) ([]*models.QuizScore, error) {
	var scores []*models.QuizScore
	if err := q.db.WithContext(ctx).
		Preload("User").
		Where("quiz_id = ?", quizID).
		Order("score desc").
		Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to list quiz scores: %w", err)
	}
	return scores, nil
}
