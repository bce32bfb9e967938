package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
	"gorm.io/gorm"
)

// ServiceManagerConfig holds the optional collaborators of the services
type ServiceManagerConfig struct {
	// EventPublisher may be nil, in which case no domain events are emitted
	EventPublisher events.EventPublisher

	// CacheManager may be nil or built without a redis client to disable caching
	CacheManager        *cache.CacheManager
	LeaderboardCacheTTL time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	quizService    QuizService
	attemptService AttemptService
	rankingService RankingService
	catalogService CatalogService
	exportService  ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.repo == nil || sm.db == nil {
		return fmt.Errorf("failed to initialize services: repository and database are required")
	}

	publisher := sm.config.EventPublisher
	cacheManager := sm.config.CacheManager

	sm.quizService = NewQuizService(sm.repo, sm.db, sm.logger, sm.validator, publisher, cacheManager)
	sm.attemptService = NewAttemptService(sm.repo, sm.db, sm.logger, sm.validator, publisher, cacheManager)
	sm.rankingService = NewRankingService(sm.repo, sm.db, sm.logger, cacheManager, sm.config.LeaderboardCacheTTL)
	sm.catalogService = NewCatalogService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.exportService = NewExportService(sm.rankingService, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully",
		"events_enabled", publisher != nil,
		"cache_enabled", cacheManager != nil && cacheManager.Leaderboard.Enabled())

	return nil
}

// Service getters
func (sm *serviceManager) Quiz() QuizService {
	sm.mustBeInitialized()
	return sm.quizService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mustBeInitialized()
	return sm.attemptService
}

func (sm *serviceManager) Ranking() RankingService {
	sm.mustBeInitialized()
	return sm.rankingService
}

func (sm *serviceManager) Catalog() CatalogService {
	sm.mustBeInitialized()
	return sm.catalogService
}

func (sm *serviceManager) Export() ExportService {
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
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

	return nil
}

// Shutdown stops event delivery. Closing the store belongs to the repository manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.EventPublisher != nil {
		if err := sm.config.EventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
