package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Calcifer04/GGZA-sub001/internal/cache"
	"github.com/Calcifer04/GGZA-sub001/internal/events"
	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
	"github.com/Calcifer04/GGZA-sub001/internal/validator"
)

const statsCacheKey = "snapshot"

type activityService struct {
	repo        repositories.Repository
	redisClient *redis.Client
	statsCache  *cache.CacheHelper
	statsTTL    time.Duration
	publisher   events.EventPublisher
	logger      *slog.Logger
	validator   *validator.Validator
}

func NewActivityService(
	repo repositories.Repository,
	redisClient *redis.Client,
	statsTTL time.Duration,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ActivityService {
	return &activityService{
		repo:        repo,
		redisClient: redisClient,
		statsCache:  cache.NewCacheHelper(redisClient, "activity:stats:"),
		statsTTL:    statsTTL,
		publisher:   publisher,
		logger:      logger,
		validator:   v,
	}
}

// Heartbeat upserts the caller's presence row, keyed on user identity.
// The activity write is authoritative; the denormalized last_active_at
// update and the change notification are best-effort and never roll it back.
func (s *activityService) Heartbeat(ctx context.Context, userID uint, req *HeartbeatRequest) (*HeartbeatResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// A brand-new record with no status defaults to online.
	status := models.StatusOnline
	if req.Status != nil {
		status = *req.Status
	}

	var metadata []byte
	if len(req.Metadata) > 0 {
		data, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal heartbeat metadata: %w", err)
		}
		metadata = data
	}

	record, err := s.repo.Activity().Upsert(ctx, repositories.ActivityUpsert{
		UserID:      userID,
		Status:      status,
		HubSet:      req.HubID != nil,
		HubID:       req.HubID,
		CurrentPage: req.CurrentPage,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write activity: %w", err)
	}

	if err := s.repo.User().TouchLastActive(ctx, userID); err != nil {
		s.logger.Error("failed to update last_active_at", "user_id", userID, "error", err)
	}

	s.notifyChange(ctx, events.ActivityUpdated, userID)

	return &HeartbeatResponse{Success: true, Activity: record}, nil
}

// Depart removes the caller's presence row. A missing row is a no-op, not
// an error: departure signals are fired on teardown and may race or repeat.
func (s *activityService) Depart(ctx context.Context, userID uint) error {
	if err := s.repo.Activity().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to remove activity: %w", err)
	}

	s.notifyChange(ctx, events.ActivityRemoved, userID)

	return nil
}

// Stats computes the live snapshot from the current record set, cached for
// a short TTL so polling consumers don't hammer the database.
func (s *activityService) Stats(ctx context.Context) (*ActivityStatsResponse, error) {
	var stats ActivityStatsResponse
	err := s.statsCache.CacheOrExecute(ctx, statsCacheKey, &stats, s.statsTTL, func() (interface{}, error) {
		return s.computeStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *activityService) computeStats(ctx context.Context) (*ActivityStatsResponse, error) {
	records, err := s.repo.Activity().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity records: %w", err)
	}

	stats := &ActivityStatsResponse{Hubs: []HubActivity{}}
	hubIndex := make(map[uint]int)

	for _, record := range records {
		stats.TotalOnline++

		if inVoice(record) {
			stats.InVoice++
		}
		if inQuiz(record) {
			stats.InQuiz++
		}

		if record.HubID == nil || record.Hub == nil {
			continue
		}
		idx, ok := hubIndex[*record.HubID]
		if !ok {
			idx = len(stats.Hubs)
			hubIndex[*record.HubID] = idx
			stats.Hubs = append(stats.Hubs, HubActivity{
				ID:    record.Hub.ID,
				Slug:  record.Hub.Slug,
				Name:  record.Hub.Name,
				Color: record.Hub.Color,
			})
		}
		stats.Hubs[idx].Count++
	}

	return stats, nil
}

// inVoice checks the metadata convention: a truthy "voice" key.
func inVoice(record *models.ActivityRecord) bool {
	meta := decodeMetadata(record)
	v, ok := meta["voice"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// inQuiz checks metadata ("quiz_id" present) or the page path convention.
func inQuiz(record *models.ActivityRecord) bool {
	meta := decodeMetadata(record)
	if _, ok := meta["quiz_id"]; ok {
		return true
	}
	return record.CurrentPage != nil && strings.HasPrefix(*record.CurrentPage, "/quiz")
}

func decodeMetadata(record *models.ActivityRecord) map[string]interface{} {
	if len(record.Metadata) == 0 {
		return nil
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(record.Metadata, &meta); err != nil {
		return nil
	}
	return meta
}

// notifyChange fans the change out to the Redis activity channel (for the
// live watchers' debounced refresh) and the domain event stream. Both are
// best-effort; the heartbeat write has already succeeded.
func (s *activityService) notifyChange(ctx context.Context, eventType string, userID uint) {
	if err := s.statsCache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Debug("failed to invalidate stats cache", "error", err)
	}

	if s.redisClient != nil {
		if err := s.redisClient.Publish(ctx, events.ActivityChannel, eventType).Err(); err != nil {
			s.logger.Debug("failed to publish activity notification", "error", err)
		}
	}

	if s.publisher != nil {
		event := events.NewEvent(eventType, map[string]interface{}{"user_id": userID})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish activity event", "type", eventType, "error", err)
		}
	}
}
