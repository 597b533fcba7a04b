package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
)

func TestExportService_ExportQuizResults(t *testing.T) {
	repo := newMockRepository()
	quiz := &models.QuizSession{
		ID: 1, HubID: 1, Title: "Finals", Status: models.QuizCompleted,
		ScheduledAt: time.Now(),
	}
	repo.quiz.quizzes[quiz.ID] = quiz
	repo.quiz.scores[quiz.ID] = map[uint]*models.QuizScore{
		7: {QuizID: 1, UserID: 7, Score: 300, CorrectCount: 3,
			CreatedAt: time.Now(), User: models.User{ID: 7, Username: "alice"}},
	}

	svc := NewExportService(repo, testLogger())

	data, err := svc.ExportQuizResults(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("ExportQuizResults: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue("Results", "A1")
	if err != nil || header != "Rank" {
		t.Errorf("A1 = %q (%v), want Rank", header, err)
	}
	player, err := f.GetCellValue("Results", "B2")
	if err != nil || player != "alice" {
		t.Errorf("B2 = %q (%v), want alice", player, err)
	}
	score, err := f.GetCellValue("Results", "C2")
	if err != nil || score != "300" {
		t.Errorf("C2 = %q (%v), want 300", score, err)
	}
}

func TestExportService_UnknownQuiz(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger())

	_, err := svc.ExportQuizResults(context.Background(), 404)
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}
