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

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get user by discord id: %w", err)
	}
	return &user, nil
}

// TouchLastActive refreshes the denormalized presence timestamp.
func (u *UserPostgreSQL) TouchLastActive(ctx context.Context, userID uint) error {
	if err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_active_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("failed to touch last_active_at: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) UpdateGamification(ctx context.Context, userID uint, xp, level, streak int) error {
	if err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"xp":           xp,
			"level":        level,
			"streak_count": streak,
		}).Error; err != nil {
		return fmt.Errorf("failed to update gamification fields: %w", err)
	}
	return nil
}
