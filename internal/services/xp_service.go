package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
)

const (
	// xpPerLevel is the flat XP cost of each level beyond the first.
	xpPerLevel = 1000

	// streakWindow is how long after the previous completion a new one
	// still extends the streak.
	streakWindow = 48 * time.Hour
)

type xpService struct {
	repo   repositories.Repository
	logger *slog.Logger

	// now is swapped in tests to pin the streak window.
	now func() time.Time
}

func NewXPService(repo repositories.Repository, logger *slog.Logger) XPService {
	return &xpService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// AwardQuizPoints credits XP for a completed quiz and advances the streak.
// The streak continues when the previous completion was within the window
// and resets to 1 otherwise. Levels are derived from total XP, never
// stored independently.
func (s *xpService) AwardQuizPoints(ctx context.Context, userID uint, correctCount, pointsPer int) (int, int, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, fmt.Errorf("failed to load user: %w", err)
	}

	awarded := correctCount * pointsPer
	newXP := user.XP + awarded
	newLevel := 1 + newXP/xpPerLevel

	lastScore, err := s.repo.Quiz().LastScoreTime(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load last completion time: %w", err)
	}

	streak := 1
	if lastScore != nil && s.now().Sub(*lastScore) <= streakWindow {
		streak = user.StreakCount + 1
	}

	if err := s.repo.User().UpdateGamification(ctx, userID, newXP, newLevel, streak); err != nil {
		return 0, 0, fmt.Errorf("failed to update gamification fields: %w", err)
	}

	if newLevel > user.Level {
		s.logger.Info("user leveled up",
			"user_id", userID,
			"level", newLevel,
			"xp", newXP)
	}

	return awarded, streak, nil
}
