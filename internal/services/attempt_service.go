package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
	"gorm.io/gorm"
)

type attemptService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	cacheManager   *cache.CacheManager
	now            func() time.Time
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cacheManager *cache.CacheManager) AttemptService {
	return &attemptService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		cacheManager:   cacheManager,
		now:            utcNow,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Create(ctx context.Context, req *CreateAttemptRequest) (*models.QuizAttempt, error) {
	s.logger.Info("Creating attempt",
		"user_id", req.UserID,
		"quiz_id", req.QuizID)

	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	userExists, err := s.repo.User().ExistsByID(ctx, s.db, req.UserID)
	if err != nil {
		return nil, internalError("check user", err)
	}
	if !userExists {
		return nil, ErrUserNotFound
	}

	quizExists, err := s.repo.Quiz().Exists(ctx, s.db, req.QuizID)
	if err != nil {
		return nil, internalError("check quiz", err)
	}
	if !quizExists {
		return nil, ErrQuizNotFound
	}

	// The foreign keys still guard against a concurrent delete
	attempt := &models.QuizAttempt{
		UserID: req.UserID,
		QuizID: req.QuizID,
		Status: models.AttemptCreated,
	}

	if err := s.repo.Attempt().Create(ctx, s.db, attempt); err != nil {
		s.logger.Error("Failed to create attempt",
			"user_id", req.UserID,
			"quiz_id", req.QuizID,
			"error", err)
		return nil, storeError("create attempt", err, ErrReferenceNotFound, ErrDuplicate)
	}

	s.logger.Info("Attempt created successfully", "attempt_id", attempt.ID)

	return s.GetByID(ctx, attempt.ID)
}

func (s *attemptService) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		return nil, storeError("get attempt", err, ErrAttemptNotFound, nil)
	}

	return attempt, nil
}

func (s *attemptService) List(ctx context.Context) ([]*models.QuizAttempt, error) {
	attempts, err := s.repo.Attempt().List(ctx, s.db)
	if err != nil {
		return nil, internalError("list attempts", err)
	}
	return attempts, nil
}

// UpdateScore patches percent_score regardless of status. It never touches
// the completion fields.
func (s *attemptService) UpdateScore(ctx context.Context, id uint, req *UpdateScoreRequest) (*models.QuizAttempt, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	if _, err := s.repo.Attempt().GetByID(ctx, s.db, id); err != nil {
		return nil, storeError("get attempt", err, ErrAttemptNotFound, nil)
	}

	updated, err := s.repo.Attempt().UpdatePercentScore(ctx, s.db, id, req.Score)
	if err != nil {
		return nil, storeError("update attempt score", err, ErrAttemptNotFound, ErrDuplicate)
	}
	if updated == 0 {
		return nil, ErrAttemptNotFound
	}

	s.logger.Info("Attempt score updated", "attempt_id", id)

	return s.GetByID(ctx, id)
}

// Complete moves a CREATED attempt to COMPLETED exactly once. Concurrent
// completions of the same attempt race on a conditional update; the loser gets
// ErrAttemptAlreadyCompleted.
func (s *attemptService) Complete(ctx context.Context, id uint, req *CompleteAttemptRequest) (*models.QuizAttempt, error) {
	s.logger.Info("Completing attempt", "attempt_id", id)

	if err := validID(id); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCompletion(req); err != nil {
		return nil, newValidationError(err)
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, s.db, id)
	if err != nil {
		return nil, storeError("get attempt", err, ErrAttemptNotFound, nil)
	}
	if attempt.IsCompleted() {
		return nil, ErrAttemptAlreadyCompleted
	}

	result := repositories.CompletionResult{
		Score:          *req.Score,
		TotalQuestions: *req.TotalQuestions,
		TimeSpent:      *req.TimeSpent,
		CompletedAt:    s.now(),
	}

	completed, err := s.repo.Attempt().CompleteIfCreated(ctx, s.db, id, result)
	if err != nil {
		s.logger.Error("Failed to complete attempt", "attempt_id", id, "error", err)
		return nil, internalError("complete attempt", err)
	}
	if completed == 0 {
		s.logger.Warn("Attempt completed concurrently", "attempt_id", id)
		return nil, ErrAttemptAlreadyCompleted
	}

	cache.InvalidateRankings(ctx, s.cacheManager)

	attempt, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.AttemptCompleted, events.AttemptCompletedData{
		AttemptID:      attempt.ID,
		UserID:         attempt.UserID,
		QuizID:         attempt.QuizID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		TimeSpent:      result.TimeSpent,
		CompletedAt:    result.CompletedAt,
	})

	s.logger.Info("Attempt completed successfully",
		"attempt_id", id,
		"user_id", attempt.UserID,
		"score", result.Score,
		"total_questions", result.TotalQuestions)

	return attempt, nil
}

func (s *attemptService) Delete(ctx context.Context, id uint) (*DeleteResponse, error) {
	s.logger.Info("Deleting attempt", "attempt_id", id)

	if err := validID(id); err != nil {
		return nil, err
	}

	if _, err := s.repo.Attempt().GetByID(ctx, s.db, id); err != nil {
		return nil, storeError("get attempt", err, ErrAttemptNotFound, nil)
	}

	deleted, err := s.repo.Attempt().Delete(ctx, s.db, id)
	if err != nil {
		if repositories.IsForeignKeyError(err) {
			return nil, ErrAttemptReferenced
		}
		s.logger.Error("Failed to delete attempt", "attempt_id", id, "error", err)
		return nil, internalError("delete attempt", err)
	}
	if deleted == 0 {
		return nil, ErrAttemptNotFound
	}

	cache.InvalidateRankings(ctx, s.cacheManager)

	s.logger.Info("Attempt deleted successfully", "attempt_id", id)

	return &DeleteResponse{ID: id, Deleted: true}, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
