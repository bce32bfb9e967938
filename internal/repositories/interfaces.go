package repositories

import (
	"context"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	SubjectID  *uint                   `json:"subject_id"`
	CategoryID *uint                   `json:"category_id"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "title", "id"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

// CompletedAttemptFilters scopes the attempt history read by the ranking views.
// Only COMPLETED attempts with a score and total_questions are ever returned.
type CompletedAttemptFilters struct {
	UserID    *uint `json:"user_id"`
	SubjectID *uint `json:"subject_id"`
}

// CompletionResult is what a successful completion writes.
type CompletionResult struct {
	Score          int
	TotalQuestions int
	TimeSpent      int
	CompletedAt    time.Time
}

// ===== REPOSITORY INTERFACES =====

// QuizRepository owns the quiz aggregate: quiz, questions, options and matching pairs.
type QuizRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.QuizListItem, int64, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// Question graph
	CreateQuestion(ctx context.Context, tx *gorm.DB, question *models.Question) error
	DeleteQuestionChildren(ctx context.Context, tx *gorm.DB, quizID uint) error
	DeleteQuestions(ctx context.Context, tx *gorm.DB, quizID uint) error

	// Cascade removes answers, attempts and the question graph, then the quiz.
	// It returns the number of quiz rows removed.
	DeleteCascade(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Subject, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	List(ctx context.Context, tx *gorm.DB, subjectID *uint) ([]*models.Category, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type AttemptRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.QuizAttempt, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)

	// State changes
	UpdatePercentScore(ctx context.Context, tx *gorm.DB, id uint, score *int) (int64, error)
	// CompleteIfCreated moves a CREATED attempt to COMPLETED in a single
	// conditional statement and returns the number of rows it changed.
	CompleteIfCreated(ctx context.Context, tx *gorm.DB, id uint, result CompletionResult) (int64, error)
}

// LeaderboardRepository reads the attempt history the ranking views are built from.
type LeaderboardRepository interface {
	// ListCompleted returns scored COMPLETED attempts, newest completion first,
	// with user and quiz (subject, category) loaded.
	ListCompleted(ctx context.Context, tx *gorm.DB, filters CompletedAttemptFilters) ([]*models.QuizAttempt, error)
	// ListBestSince returns scored COMPLETED attempts completed at or after since,
	// ordered by raw score then completion time, both descending.
	ListBestSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*models.QuizAttempt, error)
}
