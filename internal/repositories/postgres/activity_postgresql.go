package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
)

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

// Upsert writes the caller's presence row keyed on user_id. The hub column
// is only part of the conflict assignment set when the caller explicitly
// provided it, so a heartbeat that omits the hub never clears a previously
// reported game context. Concurrent heartbeats for the same user are plain
// last-write-wins.
func (a *ActivityPostgreSQL) Upsert(ctx context.Context, up repositories.ActivityUpsert) (*models.ActivityRecord, error) {
	now := time.Now().UTC()

	record := &models.ActivityRecord{
		UserID:        up.UserID,
		Status:        up.Status,
		CurrentPage:   up.CurrentPage,
		Metadata:      up.Metadata,
		LastHeartbeat: now,
	}
	if up.HubSet {
		record.HubID = up.HubID
	}

	assignments := []string{"status", "current_page", "metadata", "last_heartbeat", "updated_at"}
	if up.HubSet {
		assignments = append(assignments, "hub_id")
	}

	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(assignments),
	}).Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert activity record: %w", err)
	}

	// Re-read so callers see the merged row (e.g. a preserved hub_id).
	return a.GetByUser(ctx, up.UserID)
}

// DeleteByUser removes the user's presence row. A missing row is a no-op.
func (a *ActivityPostgreSQL) DeleteByUser(ctx context.Context, userID uint) error {
	if err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ActivityRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete activity record: %w", err)
	}
	return nil
}

func (a *ActivityPostgreSQL) GetByUser(ctx context.Context, userID uint) (*models.ActivityRecord, error) {
	var record models.ActivityRecord
	if err := a.db.WithContext(ctx).
		Preload("Hub").
		Where("user_id = ?", userID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get activity record: %w", err)
	}
	return &record, nil
}

// ListActive returns every record whose status is not offline, with hubs
// preloaded for per-hub aggregation.
func (a *ActivityPostgreSQL) ListActive(ctx context.Context) ([]*models.ActivityRecord, error) {
	var records []*models.ActivityRecord
	if err := a.db.WithContext(ctx).
		Preload("Hub").
		Where("status <> ?", models.StatusOffline).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity records: %w", err)
	}
	return records, nil
}
