package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-service/internal/cache"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/pkg"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t    *testing.T
	db   *gorm.DB
	repo repositories.Repository

	subject  *models.Subject
	category *models.Category
	user     *models.User
	quiz     *models.Quiz
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := pkg.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
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

	f := &fixture{
		t:    t,
		db:   db,
		repo: NewPostgreSQLRepository(RepositoryConfig{DB: db}),
	}

	f.subject = &models.Subject{Name: "Physics"}
	f.mustCreate(f.subject)
	f.category = &models.Category{Name: "Optics", SubjectID: f.subject.ID}
	f.mustCreate(f.category)
	f.user = &models.User{Name: "Lise", Email: "lise@example.com"}
	f.mustCreate(f.user)
	f.quiz = f.createQuiz(f.subject.ID, f.category.ID, "Lenses")

	return f
}

func (f *fixture) mustCreate(value interface{}) {
	f.t.Helper()
	if err := f.db.Create(value).Error; err != nil {
		f.t.Fatalf("Failed to create %T: %v", value, err)
	}
}

func (f *fixture) createQuiz(subjectID, categoryID uint, title string) *models.Quiz {
	f.t.Helper()
	quiz := &models.Quiz{
		Title:      title,
		Difficulty: models.DifficultyMedium,
		SubjectID:  subjectID,
		CategoryID: categoryID,
		Questions: []models.Question{
			{
				Content: "Focal length of a flat mirror?",
				Type:    models.QuestionSingle,
				Options: []models.Option{{Text: "Infinite", IsCorrect: true}, {Text: "Zero"}},
			},
			{
				Content:       "Match the lens",
				Type:          models.QuestionMatching,
				MatchingPairs: []models.MatchingPair{{Left: "Convex", Right: "Converging"}},
			},
		},
	}
	if err := f.repo.Quiz().Create(context.Background(), nil, quiz); err != nil {
		f.t.Fatalf("Failed to create quiz: %v", err)
	}
	return quiz
}

func (f *fixture) completed(userID, quizID uint, score, total int, at time.Time) *models.QuizAttempt {
	f.t.Helper()
	attempt := &models.QuizAttempt{
		UserID:         userID,
		QuizID:         quizID,
		Status:         models.AttemptCompleted,
		Score:          &score,
		TotalQuestions: &total,
		CompletedAt:    &at,
	}
	f.mustCreate(attempt)
	return attempt
}

func (f *fixture) count(model interface{}) int64 {
	f.t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		f.t.Fatalf("Failed to count %T: %v", model, err)
	}
	return n
}

func TestAttemptRepository_CompleteIfCreated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attempt := &models.QuizAttempt{UserID: f.user.ID, QuizID: f.quiz.ID, Status: models.AttemptCreated}
	if err := f.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		t.Fatalf("Failed to create attempt: %v", err)
	}

	result := repositories.CompletionResult{Score: 4, TotalQuestions: 5, TimeSpent: 60, CompletedAt: baseTime}

	changed, err := f.repo.Attempt().CompleteIfCreated(ctx, nil, attempt.ID, result)
	if err != nil {
		t.Fatalf("Failed to complete attempt: %v", err)
	}
	if changed != 1 {
		t.Fatalf("Expected 1 row changed, got %d", changed)
	}

	result.Score = 5
	changed, err = f.repo.Attempt().CompleteIfCreated(ctx, nil, attempt.ID, result)
	if err != nil {
		t.Fatalf("Failed to run second completion: %v", err)
	}
	if changed != 0 {
		t.Errorf("Expected second completion to change nothing, got %d", changed)
	}

	stored, err := f.repo.Attempt().GetByID(ctx, nil, attempt.ID)
	if err != nil {
		t.Fatalf("Failed to reload attempt: %v", err)
	}
	if stored.Score == nil || *stored.Score != 4 {
		t.Errorf("Expected score 4 to be kept, got %v", stored.Score)
	}
	if stored.CompletedAt == nil || !stored.CompletedAt.Equal(baseTime) {
		t.Errorf("Expected completed_at %v, got %v", baseTime, stored.CompletedAt)
	}
}

func TestAttemptRepository_DeleteReferencedAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attempt := f.completed(f.user.ID, f.quiz.ID, 1, 2, baseTime)
	f.mustCreate(&models.Answer{AttemptID: attempt.ID, QuestionID: f.quiz.Questions[0].ID, Value: "Infinite"})

	_, err := f.repo.Attempt().Delete(ctx, nil, attempt.ID)
	if !repositories.IsForeignKeyError(err) {
		t.Fatalf("Expected a foreign key violation, got %v", err)
	}
	if n := f.count(&models.QuizAttempt{}); n != 1 {
		t.Errorf("Expected the attempt to survive, got %d attempts", n)
	}
}

func TestLeaderboardRepository_ListCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.Subject{Name: "Chemistry"}
	f.mustCreate(other)
	otherCategory := &models.Category{Name: "Organic", SubjectID: other.ID}
	f.mustCreate(otherCategory)
	otherQuiz := f.createQuiz(other.ID, otherCategory.ID, "Alkanes")

	second := &models.User{Name: "Otto", Email: "otto@example.com"}
	f.mustCreate(second)

	f.completed(f.user.ID, f.quiz.ID, 3, 4, baseTime)
	f.completed(f.user.ID, otherQuiz.ID, 1, 4, baseTime.Add(time.Hour))
	f.completed(second.ID, f.quiz.ID, 2, 4, baseTime.Add(2*time.Hour))
	// Neither of these is ranked
	f.mustCreate(&models.QuizAttempt{UserID: second.ID, QuizID: f.quiz.ID, Status: models.AttemptCreated})
	f.mustCreate(&models.QuizAttempt{UserID: second.ID, QuizID: f.quiz.ID, Status: models.AttemptCompleted, CompletedAt: &baseTime})

	tests := []struct {
		name    string
		filters repositories.CompletedAttemptFilters
		want    int
	}{
		{"All", repositories.CompletedAttemptFilters{}, 3},
		{"BySubject", repositories.CompletedAttemptFilters{SubjectID: &f.subject.ID}, 2},
		{"ByUser", repositories.CompletedAttemptFilters{UserID: &f.user.ID}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts, err := f.repo.Leaderboard().ListCompleted(ctx, nil, tt.filters)
			if err != nil {
				t.Fatalf("Failed to list completed attempts: %v", err)
			}
			if len(attempts) != tt.want {
				t.Fatalf("Expected %d attempts, got %d", tt.want, len(attempts))
			}
			for _, a := range attempts {
				if a.User == nil || a.Quiz == nil || a.Quiz.Subject == nil {
					t.Errorf("Expected user, quiz and subject to be loaded for attempt %d", a.ID)
				}
			}
		})
	}

	t.Run("NewestFirst", func(t *testing.T) {
		attempts, err := f.repo.Leaderboard().ListCompleted(ctx, nil, repositories.CompletedAttemptFilters{})
		if err != nil {
			t.Fatalf("Failed to list completed attempts: %v", err)
		}
		for i := 1; i < len(attempts); i++ {
			if attempts[i].CompletedAt.After(*attempts[i-1].CompletedAt) {
				t.Errorf("Expected descending completion times at position %d", i)
			}
		}
	})
}

func TestLeaderboardRepository_ListBestSince(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	since := baseTime.Add(-24 * time.Hour)
	f.completed(f.user.ID, f.quiz.ID, 9, 10, since.Add(-time.Second))
	onBoundary := f.completed(f.user.ID, f.quiz.ID, 3, 10, since)
	newer := f.completed(f.user.ID, f.quiz.ID, 3, 10, baseTime)
	best := f.completed(f.user.ID, f.quiz.ID, 7, 10, baseTime.Add(-time.Hour))

	attempts, err := f.repo.Leaderboard().ListBestSince(ctx, nil, since, 10)
	if err != nil {
		t.Fatalf("Failed to list best attempts: %v", err)
	}

	want := []uint{best.ID, newer.ID, onBoundary.ID}
	if len(attempts) != len(want) {
		t.Fatalf("Expected %d attempts, got %d", len(want), len(attempts))
	}
	for i, id := range want {
		if attempts[i].ID != id {
			t.Errorf("Position %d: expected attempt %d, got %d", i, id, attempts[i].ID)
		}
	}
}

func TestQuizRepository_DeleteCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attempt := f.completed(f.user.ID, f.quiz.ID, 1, 2, baseTime)
	f.mustCreate(&models.Answer{AttemptID: attempt.ID, QuestionID: f.quiz.Questions[0].ID, Value: "Zero"})
	survivor := f.createQuiz(f.subject.ID, f.category.ID, "Prisms")

	var deleted int64
	err := f.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		deleted, err = txRepo.Quiz().DeleteCascade(ctx, nil, f.quiz.ID)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to delete quiz: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("Expected 1 quiz deleted, got %d", deleted)
	}

	counts := map[string]struct {
		model interface{}
		want  int64
	}{
		"quizzes":        {&models.Quiz{}, 1},
		"questions":      {&models.Question{}, 2},
		"options":        {&models.Option{}, 2},
		"matching_pairs": {&models.MatchingPair{}, 1},
		"attempts":       {&models.QuizAttempt{}, 0},
		"answers":        {&models.Answer{}, 0},
	}
	for table, c := range counts {
		if got := f.count(c.model); got != c.want {
			t.Errorf("Expected %d rows in %s, got %d", c.want, table, got)
		}
	}

	if ok, _ := f.repo.Quiz().Exists(ctx, nil, survivor.ID); !ok {
		t.Error("Expected the other quiz to survive")
	}
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := f.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Subject().Create(ctx, nil, &models.Subject{Name: "Astronomy"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the callback error, got %v", err)
	}

	subjects, err := f.repo.Subject().List(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to list subjects: %v", err)
	}
	if len(subjects) != 1 {
		t.Errorf("Expected the insert to be rolled back, got %d subjects", len(subjects))
	}
}

func TestRepository_DuplicateClassification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.repo.User().Create(ctx, nil, &models.User{Name: "Copy", Email: f.user.Email})
	if !repositories.IsDuplicateError(err) {
		t.Errorf("Expected a duplicate error, got %v", err)
	}

	err = f.repo.Category().Create(ctx, nil, &models.Category{Name: "Orphan", SubjectID: 999})
	if !repositories.IsForeignKeyError(err) {
		t.Errorf("Expected a foreign key error, got %v", err)
	}
}

func TestRepository_Ping(t *testing.T) {
	f := newFixture(t)
	if err := f.repo.Ping(context.Background()); err != nil {
		t.Errorf("Expected ping to succeed, got %v", err)
	}
}

func TestRepository_SharesConfiguredCacheManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cm := cache.NewCacheManager(client)

	repo := NewPostgreSQLRepository(RepositoryConfig{DB: f.db, RedisClient: client, CacheManager: cm}).(*PostgreSQLRepository)
	if repo.cacheManager != cm {
		t.Fatal("Expected the configured cache manager to be used")
	}

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if tx.(*PostgreSQLRepository).cacheManager != cm {
			t.Error("Expected the transaction repository to share the cache manager")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Expected ping to succeed, got %v", err)
	}
	mr.Close()
	if err := repo.Ping(ctx); err == nil {
		t.Error("Expected ping to fail once redis is gone")
	}
}
