package services

import (
	"context"
	"time"

	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator types for request payloads
type CreateQuizRequest = validator.CreateQuizRequest
type UpdateQuizRequest = validator.UpdateQuizRequest
type QuestionRequest = validator.QuestionRequest
type OptionRequest = validator.OptionRequest
type PairRequest = validator.PairRequest
type CreateAttemptRequest = validator.CreateAttemptRequest
type CompleteAttemptRequest = validator.CompleteAttemptRequest
type UpdateScoreRequest = validator.UpdateScoreRequest
type CreateSubjectRequest = validator.CreateSubjectRequest
type CreateCategoryRequest = validator.CreateCategoryRequest
type CreateUserRequest = validator.CreateUserRequest

type DeleteResponse struct {
	ID      uint `json:"id"`
	Deleted bool `json:"deleted"`
}

type QuizListResponse struct {
	Quizzes []*models.QuizListItem `json:"quizzes"`
	Total   int64                  `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ===== RANKING DTOs =====

// UserStatistics is derived from a user's scored, completed attempts
type UserStatistics struct {
	TotalAttempts int        `json:"total_attempts"`
	AverageScore  float64    `json:"average_score"`
	TotalPoints   int64      `json:"total_points"`
	BestScore     float64    `json:"best_score"`
	LastAttempt   *time.Time `json:"last_attempt"`
}

type LeaderboardEntry struct {
	Rank int                `json:"rank"`
	User models.UserSummary `json:"user"`
	UserStatistics
}

type AttemptSummary struct {
	AttemptID      uint                `json:"attempt_id"`
	Score          int                 `json:"score"`
	TotalQuestions int                 `json:"total_questions"`
	Percentage     float64             `json:"percentage"`
	TimeSpent      *int                `json:"time_spent"`
	CompletedAt    *time.Time          `json:"completed_at"`
	Quiz           *models.QuizSummary `json:"quiz,omitempty"`
}

type UserStatsResponse struct {
	User           models.UserSummary `json:"user"`
	Statistics     UserStatistics     `json:"statistics"`
	RecentAttempts []AttemptSummary   `json:"recent_attempts"`
}

type RecentScoreEntry struct {
	User models.UserSummary `json:"user"`
	AttemptSummary
}

// ===== SERVICE INTERFACES =====

// QuizService owns the quiz aggregate: the quiz and its question graph
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error)
	Delete(ctx context.Context, id uint) (*DeleteResponse, error)
}

// AttemptService runs the CREATED -> COMPLETED attempt state machine
type AttemptService interface {
	Create(ctx context.Context, req *CreateAttemptRequest) (*models.QuizAttempt, error)
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	List(ctx context.Context) ([]*models.QuizAttempt, error)
	UpdateScore(ctx context.Context, id uint, req *UpdateScoreRequest) (*models.QuizAttempt, error)
	Complete(ctx context.Context, id uint, req *CompleteAttemptRequest) (*models.QuizAttempt, error)
	Delete(ctx context.Context, id uint) (*DeleteResponse, error)
}

// RankingService derives read-only views from the attempt history
type RankingService interface {
	GeneralLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
	LeaderboardBySubject(ctx context.Context, subjectID uint, limit int) ([]*LeaderboardEntry, error)
	UserStats(ctx context.Context, userID uint) (*UserStatsResponse, error)
	RecentBestScores(ctx context.Context, days, limit int) ([]*RecentScoreEntry, error)
}

// CatalogService manages subjects, categories and the referenced users
type CatalogService interface {
	CreateSubject(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error)
	GetSubject(ctx context.Context, id uint) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context, subjectID *uint) ([]*models.Category, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	ListUsers(ctx context.Context, query string, limit, offset int) (*UserListResponse, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// ExportService renders ranking views as spreadsheets
type ExportService interface {
	ExportLeaderboard(ctx context.Context, subjectID *uint, limit int) ([]byte, error)
}

// ServiceManager wires and exposes every service
type ServiceManager interface {
	Initialize(ctx context.Context) error

	Quiz() QuizService
	Attempt() AttemptService
	Ranking() RankingService
	Catalog() CatalogService
	Export() ExportService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
