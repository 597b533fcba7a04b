package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
)

type AuditPostgreSQL struct {
	db *gorm.DB
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{db: db}
}

func (a *AuditPostgreSQL) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := a.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

func (a *AuditPostgreSQL) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.AuditLog{})

	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit log entries: %w", err)
	}

	query = query.Order("created_at desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var entries []*models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit log entries: %w", err)
	}

	return entries, total, nil
}
