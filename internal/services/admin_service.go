package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/events"
	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
	"github.com/Calcifer04/GGZA-sub001/internal/validator"
)

// Audit actions recorded by the admin surface.
const (
	auditQuestionCreated  = "question.created"
	auditQuizCreated      = "quiz.created"
	auditQuizStatusChange = "quiz.status_changed"
	auditQuizAssigned     = "quiz.questions_assigned"
)

const defaultSecondsPerQuestion = 30
const defaultPointsPerQuestion = 100

type adminService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAdminService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) AdminService {
	return &adminService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *adminService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest, actorID uint) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Hub().GetByID(ctx, req.HubID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHubNotFound
		}
		return nil, fmt.Errorf("failed to load hub: %w", err)
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	question := &models.Question{
		HubID:        req.HubID,
		Text:         req.Text,
		Options:      options,
		CorrectIndex: req.CorrectIndex,
		Difficulty:   difficulty,
		Category:     req.Category,
		CreatedBy:    actorID,
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.audit(ctx, actorID, auditQuestionCreated, "question", &question.ID, map[string]interface{}{
		"hub_id":     req.HubID,
		"difficulty": string(difficulty),
	})
	s.publish(ctx, events.QuestionCreated, map[string]interface{}{
		"question_id": question.ID,
		"hub_id":      req.HubID,
	})

	return question, nil
}

func (s *adminService) ListQuestions(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return &QuestionListResponse{Questions: questions, Total: total}, nil
}

func (s *adminService) CreateQuiz(ctx context.Context, req *CreateQuizRequest, actorID uint) (*models.QuizSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Hub().GetByID(ctx, req.HubID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHubNotFound
		}
		return nil, fmt.Errorf("failed to load hub: %w", err)
	}

	quiz := &models.QuizSession{
		HubID:       req.HubID,
		Title:       req.Title,
		Status:      models.QuizScheduled,
		ScheduledAt: req.ScheduledAt,
		SecondsPerQ: req.SecondsPerQ,
		PointsPerQ:  req.PointsPerQ,
		CreatedBy:   actorID,
	}
	if quiz.SecondsPerQ == 0 {
		quiz.SecondsPerQ = defaultSecondsPerQuestion
	}
	if quiz.PointsPerQ == 0 {
		quiz.PointsPerQ = defaultPointsPerQuestion
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.audit(ctx, actorID, auditQuizCreated, "quiz", &quiz.ID, map[string]interface{}{
		"hub_id": req.HubID,
		"title":  req.Title,
	})
	s.publish(ctx, events.QuizCreated, map[string]interface{}{
		"quiz_id": quiz.ID,
		"hub_id":  req.HubID,
	})

	return quiz, nil
}

func (s *adminService) ListQuizzes(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	// Attach question counts so listings can show quiz size without a
	// second round trip per row.
	for _, quiz := range quizzes {
		assignments, err := s.repo.Quiz().GetAssignments(ctx, quiz.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count quiz questions: %w", err)
		}
		quiz.QuestionsCount = len(assignments)
	}

	return &QuizListResponse{Quizzes: quizzes, Total: total}, nil
}

// UpdateQuizStatus moves a quiz through its lifecycle. Transitions only go
// forward; a completed quiz never reopens.
func (s *adminService) UpdateQuizStatus(ctx context.Context, quizID uint, req *QuizStatusUpdateRequest, actorID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to load quiz: %w", err)
	}

	if verr := s.validator.ValidateQuizStatusTransition(quiz.Status, req.Status); verr != nil {
		return verr
	}

	// Going live without questions would strand every player on an empty
	// session; refuse the transition up front.
	if req.Status == models.QuizLive {
		assignments, err := s.repo.Quiz().GetAssignments(ctx, quizID)
		if err != nil {
			return fmt.Errorf("failed to load quiz assignments: %w", err)
		}
		if len(assignments) == 0 {
			return ErrNoQuestions
		}
	}

	if err := s.repo.Quiz().UpdateStatus(ctx, quizID, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to update quiz status: %w", err)
	}

	s.audit(ctx, actorID, auditQuizStatusChange, "quiz", &quizID, map[string]interface{}{
		"from": string(quiz.Status),
		"to":   string(req.Status),
	})
	s.publish(ctx, events.QuizStatusChanged, map[string]interface{}{
		"quiz_id": quizID,
		"status":  string(req.Status),
	})

	return nil
}

// AssignQuestions attaches questions to a scheduled quiz in request order.
// Assignments are replaced as a set inside a transaction, so a retried call
// never leaves a partial ordering.
func (s *adminService) AssignQuestions(ctx context.Context, quizID uint, req *AssignQuestionsRequest, actorID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to load quiz: %w", err)
	}
	if quiz.Status != models.QuizScheduled {
		return validator.ValidationErrors{{
			Field:   "status",
			Message: "questions can only be assigned while the quiz is scheduled",
			Value:   quiz.Status,
			Rule:    "quiz_scheduled",
		}}
	}

	assignments := make([]*models.QuizQuestionAssignment, 0, len(req.QuestionIDs))
	for i, questionID := range req.QuestionIDs {
		if _, err := s.repo.Question().GetByID(ctx, questionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to load question %d: %w", questionID, err)
		}
		assignments = append(assignments, &models.QuizQuestionAssignment{
			QuizID:     quizID,
			QuestionID: questionID,
			OrderIndex: i,
		})
	}

	// Replace the set atomically: clearing first keeps the unique
	// (quiz, question) index happy on re-assignment and guarantees the
	// order index always starts at zero.
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Quiz().DeleteAssignments(ctx, quizID); err != nil {
			return err
		}
		return tx.Quiz().CreateAssignments(ctx, assignments)
	})
	if err != nil {
		return fmt.Errorf("failed to assign questions: %w", err)
	}

	s.audit(ctx, actorID, auditQuizAssigned, "quiz", &quizID, map[string]interface{}{
		"question_count": len(req.QuestionIDs),
	})

	return nil
}

// audit records an admin action. Failures are logged, never surfaced: the
// mutation itself has already committed.
func (s *adminService) audit(ctx context.Context, actorID uint, action, targetType string, targetID *uint, metadata map[string]interface{}) {
	var data []byte
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			data = b
		}
	}

	entry := &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   data,
	}
	if err := s.repo.Audit().Create(ctx, entry); err != nil {
		s.logger.Error("failed to write audit entry", "action", action, "actor_id", actorID, "error", err)
	}
}

func (s *adminService) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, payload)); err != nil {
		s.logger.Error("failed to publish event", "type", eventType, "error", err)
	}
}
