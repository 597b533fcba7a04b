package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
)

type HubPostgreSQL struct {
	db *gorm.DB
}

func NewHubPostgreSQL(db *gorm.DB) repositories.HubRepository {
	return &HubPostgreSQL{db: db}
}

func (h *HubPostgreSQL) Create(ctx context.Context, hub *models.Hub) error {
	if err := h.db.WithContext(ctx).Create(hub).Error; err != nil {
		return fmt.Errorf("failed to create hub: %w", err)
	}
	return nil
}

func (h *HubPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Hub, error) {
	var hub models.Hub
	if err := h.db.WithContext(ctx).First(&hub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get hub: %w", err)
	}
	return &hub, nil
}

func (h *HubPostgreSQL) GetBySlug(ctx context.Context, slug string) (*models.Hub, error) {
	var hub models.Hub
	if err := h.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&hub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get hub by slug: %w", err)
	}
	return &hub, nil
}

func (h *HubPostgreSQL) List(ctx context.Context) ([]*models.Hub, error) {
	var hubs []*models.Hub
	if err := h.db.WithContext(ctx).
		Order("name asc").
		Find(&hubs).Error; err != nil {
		return nil, fmt.Errorf("failed to list hubs: %w", err)
	}
	return hubs, nil
}
