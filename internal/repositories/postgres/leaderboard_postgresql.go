package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type leaderboardRepository struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLeaderboardRepository(db *gorm.DB) repositories.LeaderboardRepository {
	return &leaderboardRepository{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *leaderboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== RANKING SOURCES =====

func (r *leaderboardRepository) ListCompleted(ctx context.Context, tx *gorm.DB, filters repositories.CompletedAttemptFilters) ([]*models.QuizAttempt, error) {
	db := r.getDB(tx)
	var attempts []*models.QuizAttempt

	query := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("quiz_attempts.*")
	query = r.helpers.ScopeScoredCompleted(query)

	if filters.UserID != nil {
		query = query.Where("quiz_attempts.user_id = ?", *filters.UserID)
	}
	if filters.SubjectID != nil {
		query = query.
			Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
			Where("quizzes.subject_id = ?", *filters.SubjectID)
	}

	if err := query.
		Preload("User").
		Preload("Quiz.Subject").
		Preload("Quiz.Category").
		Order("quiz_attempts.completed_at DESC, quiz_attempts.id DESC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list completed attempts: %w", err)
	}

	return attempts, nil
}

func (r *leaderboardRepository) ListBestSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*models.QuizAttempt, error) {
	db := r.getDB(tx)
	var attempts []*models.QuizAttempt

	query := db.WithContext(ctx).Model(&models.QuizAttempt{})
	query = r.helpers.ScopeScoredCompleted(query).
		Where("quiz_attempts.completed_at >= ?", since)
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.
		Preload("User").
		Preload("Quiz.Subject").
		Preload("Quiz.Category").
		Order("quiz_attempts.score DESC, quiz_attempts.completed_at DESC, quiz_attempts.id DESC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent best attempts: %w", err)
	}

	return attempts, nil
}
