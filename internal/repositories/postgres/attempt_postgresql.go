package postgres

import (
	"context"
	"fmt"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempt models.QuizAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempt models.QuizAttempt
	if err := db.WithContext(ctx).
		Preload("User").
		Preload("Quiz").
		First(&attempt, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get attempt with details: %w", err)
	}
	return &attempt, nil
}

// List returns every attempt, newest id first
func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempts []*models.QuizAttempt
	if err := db.WithContext(ctx).
		Preload("User").
		Preload("Quiz").
		Order("id DESC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.QuizAttempt{}, id)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete attempt: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdatePercentScore writes the coarse score; a nil score clears it
func (a *AttemptPostgreSQL) UpdatePercentScore(ctx context.Context, tx *gorm.DB, id uint, score *int) (int64, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ?", id).
		Update("percent_score", score)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update attempt score: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (a *AttemptPostgreSQL) CompleteIfCreated(ctx context.Context, tx *gorm.DB, id uint, res repositories.CompletionResult) (int64, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND status = ?", id, models.AttemptCreated).
		Updates(map[string]interface{}{
			"status":          models.AttemptCompleted,
			"score":           res.Score,
			"total_questions": res.TotalQuestions,
			"time_spent":      res.TimeSpent,
			"completed_at":    res.CompletedAt,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to complete attempt: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
