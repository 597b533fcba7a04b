package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Calcifer04/GGZA-sub001/internal/events"
	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/validator"
)

func newTestAdminService(repo *mockRepository, pub events.EventPublisher) AdminService {
	return NewAdminService(repo, pub, testLogger(), validator.New())
}

func seedHub(repo *mockRepository) *models.Hub {
	hub := &models.Hub{ID: 1, Slug: "league", Name: "League of Legends"}
	repo.hub.hubs[hub.ID] = hub
	return hub
}

func TestAdminService_CreateQuestion(t *testing.T) {
	repo := newMockRepository()
	seedHub(repo)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newTestAdminService(repo, publisher)

	question, err := svc.CreateQuestion(context.Background(), &CreateQuestionRequest{
		HubID:        1,
		Text:         "Which role plays bot lane with the ADC?",
		Options:      []string{"Support", "Jungle", "Mid", "Top"},
		CorrectIndex: 0,
		Difficulty:   models.DifficultyEasy,
	}, 9)
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	if question.ID == 0 {
		t.Error("question should get an id")
	}
	if question.CreatedBy != 9 {
		t.Errorf("created_by = %d, want 9", question.CreatedBy)
	}

	options, err := question.OptionTexts()
	if err != nil || len(options) != 4 {
		t.Errorf("options = %v (%v)", options, err)
	}

	if len(repo.audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(repo.audit.entries))
	}
	entry := repo.audit.entries[0]
	if entry.Action != "question.created" || entry.ActorID != 9 {
		t.Errorf("audit entry = %+v", entry)
	}
	if entry.TargetID == nil || *entry.TargetID != question.ID {
		t.Errorf("audit target = %v", entry.TargetID)
	}

	if got := publisher.GetPublishedEvents(); len(got) != 1 || got[0].Type != events.QuestionCreated {
		t.Errorf("published = %+v", got)
	}
}

func TestAdminService_CreateQuestion_Validation(t *testing.T) {
	repo := newMockRepository()
	seedHub(repo)
	svc := newTestAdminService(repo, nil)

	tests := []struct {
		name string
		req  CreateQuestionRequest
	}{
		{
			name: "three options",
			req: CreateQuestionRequest{
				HubID: 1, Text: "q", Options: []string{"a", "b", "c"}, CorrectIndex: 0,
			},
		},
		{
			name: "five options",
			req: CreateQuestionRequest{
				HubID: 1, Text: "q", Options: []string{"a", "b", "c", "d", "e"}, CorrectIndex: 0,
			},
		},
		{
			name: "correct index out of range",
			req: CreateQuestionRequest{
				HubID: 1, Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 4,
			},
		},
		{
			name: "missing text",
			req: CreateQuestionRequest{
				HubID: 1, Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuestion(context.Background(), &tt.req, 9)

			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("err = %v, want ValidationErrors", err)
			}
			if len(repo.audit.entries) != 0 {
				t.Error("failed create must not write audit entries")
			}
		})
	}
}

func TestAdminService_CreateQuestion_UnknownHub(t *testing.T) {
	repo := newMockRepository()
	svc := newTestAdminService(repo, nil)

	_, err := svc.CreateQuestion(context.Background(), &CreateQuestionRequest{
		HubID: 42, Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0,
	}, 9)
	if !errors.Is(err, ErrHubNotFound) {
		t.Fatalf("err = %v, want ErrHubNotFound", err)
	}
}

func TestAdminService_CreateQuiz_Defaults(t *testing.T) {
	repo := newMockRepository()
	seedHub(repo)
	svc := newTestAdminService(repo, nil)

	quiz, err := svc.CreateQuiz(context.Background(), &CreateQuizRequest{
		HubID:       1,
		Title:       "Weekly Quiz",
		ScheduledAt: time.Now().Add(time.Hour),
	}, 9)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	if quiz.Status != models.QuizScheduled {
		t.Errorf("status = %s, want scheduled", quiz.Status)
	}
	if quiz.SecondsPerQ != 30 || quiz.PointsPerQ != 100 {
		t.Errorf("defaults = %d/%d, want 30/100", quiz.SecondsPerQ, quiz.PointsPerQ)
	}
}

func TestAdminService_UpdateQuizStatus_Transitions(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, status models.QuizStatus, withQuestions bool) (*mockRepository, AdminService, *models.QuizSession) {
		repo := newMockRepository()
		seedHub(repo)
		quiz := &models.QuizSession{
			ID: 1, HubID: 1, Title: "Quiz", Status: status,
			ScheduledAt: time.Now(), SecondsPerQ: 30, PointsPerQ: 100,
		}
		repo.quiz.quizzes[quiz.ID] = quiz
		if withQuestions {
			repo.quiz.assignments[quiz.ID] = []*models.QuizQuestionAssignment{
				{ID: 1, QuizID: 1, QuestionID: 10},
			}
		}
		return repo, newTestAdminService(repo, nil), quiz
	}

	t.Run("scheduled to live", func(t *testing.T) {
		repo, svc, quiz := setup(t, models.QuizScheduled, true)
		if err := svc.UpdateQuizStatus(ctx, 1, &QuizStatusUpdateRequest{Status: models.QuizLive}, 9); err != nil {
			t.Fatalf("UpdateQuizStatus: %v", err)
		}
		if quiz.Status != models.QuizLive {
			t.Errorf("status = %s", quiz.Status)
		}
		if len(repo.audit.entries) != 1 {
			t.Errorf("audit entries = %d, want 1", len(repo.audit.entries))
		}
	})

	t.Run("scheduled to live without questions refused", func(t *testing.T) {
		_, svc, _ := setup(t, models.QuizScheduled, false)
		err := svc.UpdateQuizStatus(ctx, 1, &QuizStatusUpdateRequest{Status: models.QuizLive}, 9)
		if !errors.Is(err, ErrNoQuestions) {
			t.Fatalf("err = %v, want ErrNoQuestions", err)
		}
	})

	t.Run("live to completed", func(t *testing.T) {
		_, svc, quiz := setup(t, models.QuizLive, true)
		if err := svc.UpdateQuizStatus(ctx, 1, &QuizStatusUpdateRequest{Status: models.QuizCompleted}, 9); err != nil {
			t.Fatalf("UpdateQuizStatus: %v", err)
		}
		if quiz.Status != models.QuizCompleted {
			t.Errorf("status = %s", quiz.Status)
		}
	})

	t.Run("backward transition refused", func(t *testing.T) {
		_, svc, quiz := setup(t, models.QuizCompleted, true)
		err := svc.UpdateQuizStatus(ctx, 1, &QuizStatusUpdateRequest{Status: models.QuizLive}, 9)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("err = %v, want ValidationErrors", err)
		}
		if quiz.Status != models.QuizCompleted {
			t.Errorf("status changed to %s", quiz.Status)
		}
	})

	t.Run("skipping a stage refused", func(t *testing.T) {
		_, svc, _ := setup(t, models.QuizScheduled, true)
		err := svc.UpdateQuizStatus(ctx, 1, &QuizStatusUpdateRequest{Status: models.QuizCompleted}, 9)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("err = %v, want ValidationErrors", err)
		}
	})
}

func TestAdminService_AssignQuestions(t *testing.T) {
	repo := newMockRepository()
	seedHub(repo)
	quiz := &models.QuizSession{
		ID: 1, HubID: 1, Title: "Quiz", Status: models.QuizScheduled,
		ScheduledAt: time.Now(), SecondsPerQ: 30, PointsPerQ: 100,
	}
	repo.quiz.quizzes[quiz.ID] = quiz
	for _, id := range []uint{10, 11, 12} {
		repo.question.questions[id] = &models.Question{ID: id, HubID: 1}
	}

	svc := newTestAdminService(repo, nil)
	ctx := context.Background()

	err := svc.AssignQuestions(ctx, 1, &AssignQuestionsRequest{QuestionIDs: []uint{12, 10, 11}}, 9)
	if err != nil {
		t.Fatalf("AssignQuestions: %v", err)
	}

	assignments := repo.quiz.assignments[1]
	if len(assignments) != 3 {
		t.Fatalf("assignments = %d, want 3", len(assignments))
	}
	// Request order is preserved through order_index.
	wantOrder := []uint{12, 10, 11}
	for i, a := range assignments {
		if a.QuestionID != wantOrder[i] || a.OrderIndex != i {
			t.Errorf("assignment %d = question %d order %d", i, a.QuestionID, a.OrderIndex)
		}
	}

	t.Run("re-assignment replaces the set", func(t *testing.T) {
		if err := svc.AssignQuestions(ctx, 1, &AssignQuestionsRequest{QuestionIDs: []uint{11, 10}}, 9); err != nil {
			t.Fatalf("re-assign: %v", err)
		}

		assignments := repo.quiz.assignments[1]
		if len(assignments) != 2 {
			t.Fatalf("assignments = %d, want 2 (old set replaced)", len(assignments))
		}
		wantOrder := []uint{11, 10}
		for i, a := range assignments {
			if a.QuestionID != wantOrder[i] || a.OrderIndex != i {
				t.Errorf("assignment %d = question %d order %d", i, a.QuestionID, a.OrderIndex)
			}
		}
	})

	t.Run("unknown question refused", func(t *testing.T) {
		err := svc.AssignQuestions(ctx, 1, &AssignQuestionsRequest{QuestionIDs: []uint{999}}, 9)
		if !errors.Is(err, ErrQuestionNotFound) {
			t.Fatalf("err = %v, want ErrQuestionNotFound", err)
		}
	})

	t.Run("live quiz refused", func(t *testing.T) {
		quiz.Status = models.QuizLive
		err := svc.AssignQuestions(ctx, 1, &AssignQuestionsRequest{QuestionIDs: []uint{10}}, 9)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("err = %v, want ValidationErrors", err)
		}
	})
}
