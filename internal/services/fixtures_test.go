package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/repositories/postgres"
	"github.com/quizhub/quiz-service/internal/validator"
	"github.com/quizhub/quiz-service/pkg"
	"gorm.io/gorm"
)

// testEnv wires every service against a throwaway SQLite store
type testEnv struct {
	t         *testing.T
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	publisher *events.MockEventPublisher

	quizzes  *quizService
	attempts *attemptService
	ranking  *rankingService
	catalog  CatalogService
	export   ExportService

	subject  *models.Subject
	category *models.Category
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCache(t, nil)
}

func newTestEnvWithCache(t *testing.T, cacheManager *cache.CacheManager) *testEnv {
	t.Helper()

	db, err := pkg.OpenSQLite(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := pkg.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, Logger: logger})
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()

	ranking := NewRankingService(repo, db, logger, cacheManager, time.Minute).(*rankingService)

	env := &testEnv{
		t:         t,
		db:        db,
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		quizzes:   NewQuizService(repo, db, logger, v, publisher, cacheManager).(*quizService),
		attempts:  NewAttemptService(repo, db, logger, v, publisher, cacheManager).(*attemptService),
		ranking:   ranking,
		catalog:   NewCatalogService(repo, db, logger, v),
		export:    NewExportService(ranking, logger),
	}

	env.subject = env.createSubject("Mathematics")
	env.category = env.createCategory(env.subject.ID, "Arithmetic")

	return env
}

func (e *testEnv) createSubject(name string) *models.Subject {
	e.t.Helper()
	subject, err := e.catalog.CreateSubject(context.Background(), &CreateSubjectRequest{Name: name})
	if err != nil {
		e.t.Fatalf("Failed to create subject: %v", err)
	}
	return subject
}

func (e *testEnv) createCategory(subjectID uint, name string) *models.Category {
	e.t.Helper()
	category, err := e.catalog.CreateCategory(context.Background(), &CreateCategoryRequest{Name: name, SubjectID: subjectID})
	if err != nil {
		e.t.Fatalf("Failed to create category: %v", err)
	}
	return category
}

func (e *testEnv) createUser(name, email string) *models.User {
	e.t.Helper()
	user, err := e.catalog.CreateUser(context.Background(), &CreateUserRequest{Name: name, Email: email})
	if err != nil {
		e.t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// createQuiz creates a quiz in the default subject with n SINGLE questions
func (e *testEnv) createQuiz(title string, n int) *models.Quiz {
	e.t.Helper()
	return e.createQuizIn(e.subject.ID, e.category.ID, title, n)
}

func (e *testEnv) createQuizIn(subjectID, categoryID uint, title string, n int) *models.Quiz {
	e.t.Helper()
	req := &CreateQuizRequest{
		Title:      title,
		SubjectID:  subjectID,
		CategoryID: categoryID,
	}
	for i := 0; i < n; i++ {
		req.Questions = append(req.Questions, singleQuestion("Question"))
	}

	quiz, err := e.quizzes.Create(context.Background(), req)
	if err != nil {
		e.t.Fatalf("Failed to create quiz: %v", err)
	}
	return quiz
}

// completedAttempt inserts a COMPLETED attempt directly, bypassing the state machine
func (e *testEnv) completedAttempt(userID, quizID uint, score, total int, completedAt time.Time) *models.QuizAttempt {
	e.t.Helper()
	timeSpent := 60
	completedAt = completedAt.UTC()
	attempt := &models.QuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		Status:         models.AttemptCompleted,
		Score:          &score,
		TotalQuestions: &total,
		TimeSpent:      &timeSpent,
		CompletedAt:    &completedAt,
	}
	if err := e.db.Create(attempt).Error; err != nil {
		e.t.Fatalf("Failed to insert attempt: %v", err)
	}
	return attempt
}

// hookedRepository swaps selected sub-repositories of a real repository
type hookedRepository struct {
	repositories.Repository
	attempt     repositories.AttemptRepository
	leaderboard repositories.LeaderboardRepository
}

func (r *hookedRepository) Attempt() repositories.AttemptRepository {
	if r.attempt != nil {
		return r.attempt
	}
	return r.Repository.Attempt()
}

func (r *hookedRepository) Leaderboard() repositories.LeaderboardRepository {
	if r.leaderboard != nil {
		return r.leaderboard
	}
	return r.Repository.Leaderboard()
}

// gatedAttemptRepository holds the first n GetByID calls until all n have
// read, so every caller sees the attempt in the same state.
type gatedAttemptRepository struct {
	repositories.AttemptRepository

	mu      sync.Mutex
	n       int
	arrived int
	ready   chan struct{}
}

func newGatedAttemptRepository(inner repositories.AttemptRepository, n int) *gatedAttemptRepository {
	return &gatedAttemptRepository{AttemptRepository: inner, n: n, ready: make(chan struct{})}
}

func (r *gatedAttemptRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	attempt, err := r.AttemptRepository.GetByID(ctx, tx, id)

	r.mu.Lock()
	gated := r.arrived < r.n
	if gated {
		r.arrived++
		if r.arrived == r.n {
			close(r.ready)
		}
	}
	r.mu.Unlock()

	if gated {
		<-r.ready
	}
	return attempt, err
}

// pausingLeaderboardRepository parks the first ListCompleted call after it
// has read, until release is closed.
type pausingLeaderboardRepository struct {
	repositories.LeaderboardRepository

	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func newPausingLeaderboardRepository(inner repositories.LeaderboardRepository) *pausingLeaderboardRepository {
	return &pausingLeaderboardRepository{
		LeaderboardRepository: inner,
		loaded:                make(chan struct{}),
		release:               make(chan struct{}),
	}
}

func (r *pausingLeaderboardRepository) ListCompleted(ctx context.Context, tx *gorm.DB, filters repositories.CompletedAttemptFilters) ([]*models.QuizAttempt, error) {
	attempts, err := r.LeaderboardRepository.ListCompleted(ctx, tx, filters)
	r.once.Do(func() {
		close(r.loaded)
		<-r.release
	})
	return attempts, err
}

func singleQuestion(content string) QuestionRequest {
	return QuestionRequest{
		Content: content,
		Type:    models.QuestionSingle,
		Options: []OptionRequest{
			{Text: "4", IsCorrect: true},
			{Text: "5", IsCorrect: false},
		},
	}
}

func intPtr(v int) *int {
	return &v
}

func completion(score, total, timeSpent int) *CompleteAttemptRequest {
	return &CompleteAttemptRequest{
		Score:          intPtr(score),
		TotalQuestions: intPtr(total),
		TimeSpent:      intPtr(timeSpent),
	}
}

// baseTime is a fixed, second-aligned instant
var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
