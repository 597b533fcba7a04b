package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/events"
	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
	"github.com/Calcifer04/GGZA-sub001/internal/validator"
)

type quizSessionService struct {
	repo      repositories.Repository
	xp        XPService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	// permFn generates a permutation of n option slots; swapped in tests
	// for determinism.
	permFn func(n int) []int
}

func NewQuizSessionService(
	repo repositories.Repository,
	xp XPService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) QuizSessionService {
	return &quizSessionService{
		repo:      repo,
		xp:        xp,
		publisher: publisher,
		logger:    logger,
		validator: v,
		permFn:    rand.Perm,
	}
}

// Resolve decides what a player sees for a quiz. Outcomes are evaluated in
// strict precedence order:
//
//  1. the player already has a score  -> completed (with the stored score),
//     regardless of the quiz's own status
//  2. quiz is scheduled               -> scheduled, no questions revealed
//  3. quiz is globally completed      -> completed, no score payload
//  4. quiz is live                    -> questions with stable option order
func (s *quizSessionService) Resolve(ctx context.Context, quizID, userID uint) (*QuizSessionResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	score, err := s.repo.Quiz().GetScore(ctx, quizID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check quiz score: %w", err)
	}
	if score != nil {
		return &QuizSessionResponse{
			State:  SessionCompleted,
			QuizID: quiz.ID,
			Title:  quiz.Title,
			Score: &ScorePayload{
				Score:        score.Score,
				CorrectCount: score.CorrectCount,
			},
		}, nil
	}

	switch quiz.Status {
	case models.QuizScheduled:
		scheduledAt := quiz.ScheduledAt
		return &QuizSessionResponse{
			State:       SessionScheduled,
			QuizID:      quiz.ID,
			Title:       quiz.Title,
			HubSlug:     quiz.Hub.Slug,
			ScheduledAt: &scheduledAt,
		}, nil

	case models.QuizCompleted:
		return &QuizSessionResponse{
			State:  SessionCompleted,
			QuizID: quiz.ID,
			Title:  quiz.Title,
		}, nil
	}

	return s.buildLiveSession(ctx, quiz)
}

func (s *quizSessionService) buildLiveSession(ctx context.Context, quiz *models.QuizSession) (*QuizSessionResponse, error) {
	assignments, err := s.repo.Quiz().GetAssignments(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz assignments: %w", err)
	}
	if len(assignments) == 0 {
		// Missing setup, not a transient fault.
		return nil, ErrNoQuestions
	}

	questions := make([]SessionQuestion, 0, len(assignments))
	for _, assignment := range assignments {
		perm, err := s.ensurePermutation(ctx, assignment)
		if err != nil {
			return nil, err
		}

		options, err := assignment.Question.OptionTexts()
		if err != nil {
			return nil, fmt.Errorf("failed to decode options for question %d: %w", assignment.QuestionID, err)
		}
		if len(options) != models.OptionCount {
			return nil, fmt.Errorf("question %d has %d options, want %d", assignment.QuestionID, len(options), models.OptionCount)
		}

		shuffled := make([]string, models.OptionCount)
		for slot, original := range perm {
			shuffled[slot] = options[original]
		}

		questions = append(questions, SessionQuestion{
			QuestionID:  assignment.QuestionID,
			Text:        assignment.Question.Text,
			Options:     shuffled,
			Permutation: perm,
		})
	}

	return &QuizSessionResponse{
		State:       SessionLive,
		QuizID:      quiz.ID,
		Title:       quiz.Title,
		HubSlug:     quiz.Hub.Slug,
		SecondsPerQ: quiz.SecondsPerQ,
		PointsPerQ:  quiz.PointsPerQ,
		Questions:   questions,
	}, nil
}

// ensurePermutation returns the assignment's persisted shuffle permutation,
// generating and persisting a fresh one on first delivery. Persisting it is
// what keeps the option order stable across reloads, so an in-progress
// selection stays valid after a refresh.
func (s *quizSessionService) ensurePermutation(ctx context.Context, assignment *models.QuizQuestionAssignment) ([]int, error) {
	if perm, ok := assignment.PermutationSlots(); ok {
		return perm, nil
	}

	perm := s.permFn(models.OptionCount)
	data, err := json.Marshal(perm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permutation: %w", err)
	}

	if err := s.repo.Quiz().UpdateAssignmentPermutation(ctx, assignment.ID, data); err != nil {
		return nil, err
	}
	assignment.Permutation = data

	return perm, nil
}

// SubmitAnswers scores a full answer set for a live quiz. Display positions
// are mapped back through the persisted permutation before comparing against
// the canonical correct index. The score row is written once; a second
// submit is rejected.
func (s *quizSessionService) SubmitAnswers(ctx context.Context, quizID, userID uint, req *SubmitAnswersRequest) (*SubmitResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	if quiz.Status != models.QuizLive {
		return nil, ErrQuizNotLive
	}

	if _, err := s.repo.Quiz().GetScore(ctx, quizID, userID); err == nil {
		return nil, ErrAlreadyCompleted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check quiz score: %w", err)
	}

	assignments, err := s.repo.Quiz().GetAssignments(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz assignments: %w", err)
	}
	if len(assignments) == 0 {
		return nil, ErrNoQuestions
	}

	byQuestion := make(map[uint]*models.QuizQuestionAssignment, len(assignments))
	for _, a := range assignments {
		byQuestion[a.QuestionID] = a
	}

	correct := 0
	for _, answer := range req.Answers {
		assignment, ok := byQuestion[answer.QuestionID]
		if !ok {
			return nil, ErrQuestionNotFound
		}

		// Without a persisted permutation the question was never delivered
		// shuffled; positions are canonical.
		original := answer.Position
		if perm, ok := assignment.PermutationSlots(); ok {
			if answer.Position < 0 || answer.Position >= len(perm) {
				continue
			}
			original = perm[answer.Position]
		}

		if original == assignment.Question.CorrectIndex {
			correct++
		}
	}

	// XP is awarded before the score row exists because the streak check
	// looks at the most recent completion time; writing the score first
	// would make every submit look like a continued streak.
	xpAwarded, streak, err := s.xp.AwardQuizPoints(ctx, userID, correct, quiz.PointsPerQ)
	if err != nil {
		s.logger.Error("failed to award quiz XP", "user_id", userID, "quiz_id", quizID, "error", err)
	}

	score := correct * quiz.PointsPerQ
	if err := s.repo.Quiz().CreateScore(ctx, &models.QuizScore{
		QuizID:       quizID,
		UserID:       userID,
		Score:        score,
		CorrectCount: correct,
	}); err != nil {
		return nil, fmt.Errorf("failed to record quiz score: %w", err)
	}

	if s.publisher != nil {
		event := events.NewEvent(events.QuizCompleted, map[string]interface{}{
			"quiz_id": quizID,
			"user_id": userID,
			"score":   score,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish quiz completion event", "error", err)
		}
	}

	return &SubmitResult{
		Score:        score,
		CorrectCount: correct,
		Total:        len(assignments),
		XPAwarded:    xpAwarded,
		Streak:       streak,
	}, nil
}
