package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. Only the
// pieces the services touch are implemented; the rest stay nil.
type mockRepository struct {
	activity *mockActivityRepo
	user     *mockUserRepo
	hub      *mockHubRepo
	question *mockQuestionRepo
	quiz     *mockQuizRepo
	audit    *mockAuditRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		activity: &mockActivityRepo{records: map[uint]*models.ActivityRecord{}},
		user:     &mockUserRepo{users: map[uint]*models.User{}},
		hub:      &mockHubRepo{hubs: map[uint]*models.Hub{}},
		question: &mockQuestionRepo{questions: map[uint]*models.Question{}},
		quiz: &mockQuizRepo{
			quizzes:     map[uint]*models.QuizSession{},
			assignments: map[uint][]*models.QuizQuestionAssignment{},
			scores:      map[uint]map[uint]*models.QuizScore{},
		},
		audit: &mockAuditRepo{},
	}
}

func (m *mockRepository) Activity() repositories.ActivityRepository { return m.activity }
func (m *mockRepository) User() repositories.UserRepository         { return m.user }
func (m *mockRepository) Hub() repositories.HubRepository           { return m.hub }
func (m *mockRepository) Question() repositories.QuestionRepository { return m.question }
func (m *mockRepository) Quiz() repositories.QuizRepository         { return m.quiz }
func (m *mockRepository) Audit() repositories.AuditRepository       { return m.audit }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== ACTIVITY =====

type mockActivityRepo struct {
	records map[uint]*models.ActivityRecord
	upserts []repositories.ActivityUpsert
}

func (m *mockActivityRepo) Upsert(ctx context.Context, up repositories.ActivityUpsert) (*models.ActivityRecord, error) {
	m.upserts = append(m.upserts, up)

	record, ok := m.records[up.UserID]
	if !ok {
		record = &models.ActivityRecord{UserID: up.UserID}
		m.records[up.UserID] = record
	}
	// Mirrors the real upsert: full-row last-write-wins except the hub
	// column, which is only touched when the caller set it.
	record.Status = up.Status
	record.LastHeartbeat = time.Now()
	record.CurrentPage = up.CurrentPage
	record.Metadata = up.Metadata
	if up.HubSet {
		record.HubID = up.HubID
	}
	return record, nil
}

func (m *mockActivityRepo) DeleteByUser(ctx context.Context, userID uint) error {
	delete(m.records, userID)
	return nil
}

func (m *mockActivityRepo) GetByUser(ctx context.Context, userID uint) (*models.ActivityRecord, error) {
	record, ok := m.records[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (m *mockActivityRepo) ListActive(ctx context.Context) ([]*models.ActivityRecord, error) {
	var out []*models.ActivityRecord
	for _, record := range m.records {
		if record.Status != models.StatusOffline {
			out = append(out, record)
		}
	}
	return out, nil
}

// ===== USER =====

type mockUserRepo struct {
	users        map[uint]*models.User
	touched      []uint
	gamification []struct {
		UserID            uint
		XP, Level, Streak int
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	for _, user := range m.users {
		if user.DiscordID == discordID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) TouchLastActive(ctx context.Context, userID uint) error {
	m.touched = append(m.touched, userID)
	return nil
}

func (m *mockUserRepo) UpdateGamification(ctx context.Context, userID uint, xp, level, streak int) error {
	m.gamification = append(m.gamification, struct {
		UserID            uint
		XP, Level, Streak int
	}{userID, xp, level, streak})
	if user, ok := m.users[userID]; ok {
		user.XP = xp
		user.Level = level
		user.StreakCount = streak
	}
	return nil
}

// ===== HUB =====

type mockHubRepo struct {
	hubs map[uint]*models.Hub
}

func (m *mockHubRepo) Create(ctx context.Context, hub *models.Hub) error {
	m.hubs[hub.ID] = hub
	return nil
}

func (m *mockHubRepo) GetByID(ctx context.Context, id uint) (*models.Hub, error) {
	hub, ok := m.hubs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return hub, nil
}

func (m *mockHubRepo) GetBySlug(ctx context.Context, slug string) (*models.Hub, error) {
	for _, hub := range m.hubs {
		if hub.Slug == slug {
			return hub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHubRepo) List(ctx context.Context) ([]*models.Hub, error) {
	var out []*models.Hub
	for _, hub := range m.hubs {
		out = append(out, hub)
	}
	return out, nil
}

// ===== QUESTION =====

type mockQuestionRepo struct {
	questions map[uint]*models.Question
	nextID    uint
}

func (m *mockQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	if question.ID == 0 {
		m.nextID++
		question.ID = m.nextID
	}
	m.questions[question.ID] = question
	return nil
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, ok := m.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (m *mockQuestionRepo) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var out []*models.Question
	for _, question := range m.questions {
		if filters.HubID != nil && question.HubID != *filters.HubID {
			continue
		}
		out = append(out, question)
	}
	return out, int64(len(out)), nil
}

// ===== QUIZ =====

type mockQuizRepo struct {
	quizzes     map[uint]*models.QuizSession
	assignments map[uint][]*models.QuizQuestionAssignment
	scores      map[uint]map[uint]*models.QuizScore

	permutationWrites int
}

func (m *mockQuizRepo) Create(ctx context.Context, quiz *models.QuizSession) error {
	if quiz.ID == 0 {
		quiz.ID = uint(len(m.quizzes) + 1)
	}
	m.quizzes[quiz.ID] = quiz
	return nil
}

func (m *mockQuizRepo) GetByID(ctx context.Context, id uint) (*models.QuizSession, error) {
	quiz, ok := m.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (m *mockQuizRepo) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.QuizSession, int64, error) {
	var out []*models.QuizSession
	for _, quiz := range m.quizzes {
		if filters.Status != nil && quiz.Status != *filters.Status {
			continue
		}
		out = append(out, quiz)
	}
	return out, int64(len(out)), nil
}

func (m *mockQuizRepo) UpdateStatus(ctx context.Context, id uint, status models.QuizStatus) error {
	quiz, ok := m.quizzes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.Status = status
	return nil
}

func (m *mockQuizRepo) CreateAssignments(ctx context.Context, assignments []*models.QuizQuestionAssignment) error {
	for _, a := range assignments {
		if a.ID == 0 {
			a.ID = uint(len(m.assignments[a.QuizID]) + 1)
		}
		m.assignments[a.QuizID] = append(m.assignments[a.QuizID], a)
	}
	return nil
}

func (m *mockQuizRepo) DeleteAssignments(ctx context.Context, quizID uint) error {
	delete(m.assignments, quizID)
	return nil
}

func (m *mockQuizRepo) GetAssignments(ctx context.Context, quizID uint) ([]*models.QuizQuestionAssignment, error) {
	return m.assignments[quizID], nil
}

func (m *mockQuizRepo) UpdateAssignmentPermutation(ctx context.Context, assignmentID uint, permutation []byte) error {
	m.permutationWrites++
	for _, list := range m.assignments {
		for _, a := range list {
			if a.ID == assignmentID {
				a.Permutation = permutation
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockQuizRepo) GetScore(ctx context.Context, quizID, userID uint) (*models.QuizScore, error) {
	if score, ok := m.scores[quizID][userID]; ok {
		return score, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuizRepo) CreateScore(ctx context.Context, score *models.QuizScore) error {
	if m.scores[score.QuizID] == nil {
		m.scores[score.QuizID] = map[uint]*models.QuizScore{}
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now()
	}
	m.scores[score.QuizID][score.UserID] = score
	return nil
}

func (m *mockQuizRepo) ListScores(ctx context.Context, quizID uint) ([]*models.QuizScore, error) {
	var out []*models.QuizScore
	for _, score := range m.scores[quizID] {
		out = append(out, score)
	}
	return out, nil
}

func (m *mockQuizRepo) LastScoreTime(ctx context.Context, userID uint) (*time.Time, error) {
	var latest *time.Time
	for _, byUser := range m.scores {
		if score, ok := byUser[userID]; ok {
			t := score.CreatedAt
			if latest == nil || t.After(*latest) {
				latest = &t
			}
		}
	}
	return latest, nil
}

// ===== AUDIT =====

type mockAuditRepo struct {
	entries []*models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

// ===== HELPERS =====

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
