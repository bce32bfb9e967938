package postgres

import (
	"context"
	"fmt"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// quizScalarColumns are the columns an update overwrites, zero values included.
var quizScalarColumns = []string{
	"title", "description", "difficulty", "time_limit",
	"is_exam_mode", "subject_id", "category_id", "updated_at",
}

// ===== BASIC CRUD OPERATIONS =====

// Create inserts the quiz together with its questions, options and matching pairs
func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetByID retrieves the quiz row only
func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get quiz %d: %w", id, err)
	}
	return &quiz, nil
}

// GetByIDWithDetails retrieves the quiz with subject, category and the full
// question graph. Questions come back in creation order.
func (q *QuizPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).
		Preload("Subject").
		Preload("Category").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.created_at ASC, questions.id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.id ASC")
		}).
		Preload("Questions.MatchingPairs", func(db *gorm.DB) *gorm.DB {
			return db.Order("matching_pairs.id ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get quiz with details: %w", err)
	}
	return &quiz, nil
}

// UpdateFields overwrites the quiz's scalar columns, writing zero and nil values too
func (q *QuizPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Quiz{ID: quiz.ID}).
		Select(quizScalarColumns).
		Updates(quiz).Error; err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	return nil
}

// List returns quiz headers with their question counts
func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.QuizListItem, int64, error) {
	db := q.getDB(tx)
	var items []*models.QuizListItem
	var total int64

	query := db.WithContext(ctx).Model(&models.Quiz{})
	query = q.helpers.ApplyQuizFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quizzes: %w", err)
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}

	if len(items) == 0 {
		return items, total, nil
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var counts []struct {
		QuizID uint
		Count  int
	}
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("quiz_id, COUNT(*) AS count").
		Where("quiz_id IN ?", ids).
		Group("quiz_id").
		Scan(&counts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	byQuiz := make(map[uint]int, len(counts))
	for _, c := range counts {
		byQuiz[c.QuizID] = c.Count
	}
	for _, item := range items {
		item.QuestionCount = byQuiz[item.ID]
	}

	return items, total, nil
}

func (q *QuizPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check quiz existence: %w", err)
	}
	return count > 0, nil
}

// ===== QUESTION GRAPH =====

// CreateQuestion inserts a question and the children it carries
func (q *QuizPostgreSQL) CreateQuestion(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// DeleteQuestionChildren removes the options and matching pairs of every question of the quiz
func (q *QuizPostgreSQL) DeleteQuestionChildren(ctx context.Context, tx *gorm.DB, quizID uint) error {
	db := q.getDB(tx).WithContext(ctx)
	questionIDs := func() *gorm.DB {
		return db.Model(&models.Question{}).Select("id").Where("quiz_id = ?", quizID)
	}

	if err := db.Where("question_id IN (?)", questionIDs()).Delete(&models.Option{}).Error; err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	if err := db.Where("question_id IN (?)", questionIDs()).Delete(&models.MatchingPair{}).Error; err != nil {
		return fmt.Errorf("failed to delete matching pairs: %w", err)
	}
	return nil
}

func (q *QuizPostgreSQL) DeleteQuestions(ctx context.Context, tx *gorm.DB, quizID uint) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	return nil
}

// DeleteCascade removes everything hanging off the quiz in dependency order.
// It must run inside a transaction to be atomic.
func (q *QuizPostgreSQL) DeleteCascade(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	db := q.getDB(tx).WithContext(ctx)
	attemptIDs := db.Model(&models.QuizAttempt{}).Select("id").Where("quiz_id = ?", id)

	if err := db.Where("attempt_id IN (?)", attemptIDs).Delete(&models.Answer{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete answers: %w", err)
	}
	if err := db.Where("quiz_id = ?", id).Delete(&models.QuizAttempt{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete attempts: %w", err)
	}
	if err := q.DeleteQuestionChildren(ctx, db, id); err != nil {
		return 0, err
	}
	if err := q.DeleteQuestions(ctx, db, id); err != nil {
		return 0, err
	}

	result := db.Delete(&models.Quiz{}, id)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete quiz: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
