package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Calcifer04/GGZA-sub001/internal/events"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
	"github.com/Calcifer04/GGZA-sub001/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager.
type ServiceManagerConfig struct {
	// StatsCacheTTL bounds how stale the live activity snapshot may be.
	StatsCacheTTL time.Duration
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	// Dependencies
	repo        repositories.Repository
	redisClient *redis.Client
	publisher   events.EventPublisher
	logger      *slog.Logger
	validator   *validator.Validator
	config      ServiceManagerConfig

	// Service instances
	activityService    ActivityService
	quizSessionService QuizSessionService
	adminService       AdminService
	xpService          XPService
	exportService      ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(
	repo repositories.Repository,
	redisClient *redis.Client,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		repo:        repo,
		redisClient: redisClient,
		publisher:   publisher,
		logger:      logger,
		validator:   v,
		config:      config,
	}
}

// Initialize wires up all services. Construction order matters only for the
// XP service, which the quiz session service consumes.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	statsTTL := sm.config.StatsCacheTTL
	if statsTTL <= 0 {
		statsTTL = 10 * time.Second
	}

	sm.activityService = NewActivityService(sm.repo, sm.redisClient, statsTTL, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Activity service initialized")

	sm.xpService = NewXPService(sm.repo, sm.logger)
	sm.logger.Info("XP service initialized")

	sm.quizSessionService = NewQuizSessionService(sm.repo, sm.xpService, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Quiz session service initialized")

	sm.adminService = NewAdminService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Admin service initialized")

	sm.exportService = NewExportService(sm.repo, sm.logger)
	sm.logger.Info("Export service initialized")

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Activity() ActivityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.activityService == nil {
		panic("activity service not initialized")
	}
	return sm.activityService
}

func (sm *serviceManager) QuizSession() QuizSessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.quizSessionService == nil {
		panic("quiz session service not initialized")
	}
	return sm.quizSessionService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.adminService == nil {
		panic("admin service not initialized")
	}
	return sm.adminService
}

func (sm *serviceManager) XP() XPService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.xpService == nil {
		panic("xp service not initialized")
	}
	return sm.xpService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.exportService == nil {
		panic("export service not initialized")
	}
	return sm.exportService
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	if sm.redisClient != nil {
		if err := sm.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")

	return nil
}
