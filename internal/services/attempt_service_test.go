package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/validator"
)

func TestAttemptService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.attempts.now = func() time.Time { return baseTime }

	user := env.createUser("Grace", "grace@example.com")
	quiz := env.createQuiz("Quiz B", 10)

	attempt, err := env.attempts.Create(ctx, &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("Failed to create attempt: %v", err)
	}
	if attempt.Status != models.AttemptCreated {
		t.Fatalf("Expected status CREATED, got %s", attempt.Status)
	}
	if attempt.Score != nil || attempt.CompletedAt != nil {
		t.Errorf("Expected empty scoring fields on a new attempt, got %+v", attempt)
	}
	if attempt.User == nil || attempt.Quiz == nil {
		t.Error("Expected user and quiz to be loaded")
	}

	completed, err := env.attempts.Complete(ctx, attempt.ID, completion(8, 10, 120))
	if err != nil {
		t.Fatalf("Failed to complete attempt: %v", err)
	}
	if completed.Status != models.AttemptCompleted {
		t.Errorf("Expected status COMPLETED, got %s", completed.Status)
	}
	if completed.Score == nil || *completed.Score != 8 {
		t.Errorf("Expected score 8, got %v", completed.Score)
	}
	if completed.TotalQuestions == nil || *completed.TotalQuestions != 10 {
		t.Errorf("Expected total_questions 10, got %v", completed.TotalQuestions)
	}
	if completed.CompletedAt == nil || !completed.CompletedAt.Equal(baseTime) {
		t.Errorf("Expected completed_at %v, got %v", baseTime, completed.CompletedAt)
	}

	published := env.publisher.EventsOfType(events.AttemptCompleted)
	if len(published) != 1 {
		t.Fatalf("Expected 1 attempt.completed event, got %d", len(published))
	}
	if data := published[0].Data.(events.AttemptCompletedData); data.AttemptID != attempt.ID || data.Score != 8 {
		t.Errorf("Unexpected event data %+v", data)
	}

	t.Run("SecondCompletionConflicts", func(t *testing.T) {
		env.attempts.now = func() time.Time { return baseTime.Add(time.Hour) }

		_, err := env.attempts.Complete(ctx, attempt.ID, completion(3, 5, 10))
		if !errors.Is(err, ErrAttemptAlreadyCompleted) {
			t.Fatalf("Expected ErrAttemptAlreadyCompleted, got %v", err)
		}
		if KindOf(err) != KindConflict {
			t.Errorf("Expected conflict kind, got %s", KindOf(err))
		}

		stored, err := env.attempts.GetByID(ctx, attempt.ID)
		if err != nil {
			t.Fatalf("Failed to reload attempt: %v", err)
		}
		if *stored.Score != 8 || *stored.TotalQuestions != 10 || *stored.TimeSpent != 120 || !stored.CompletedAt.Equal(baseTime) {
			t.Errorf("Expected the first completion to be kept, got %+v", stored)
		}
		if len(env.publisher.EventsOfType(events.AttemptCompleted)) != 1 {
			t.Error("Expected no event for a rejected completion")
		}
	})
}

func TestAttemptService_CompleteValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("Linus", "linus@example.com")
	quiz := env.createQuiz("Validation", 1)
	attempt, err := env.attempts.Create(ctx, &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("Failed to create attempt: %v", err)
	}

	tests := []struct {
		name string
		req  *CompleteAttemptRequest
	}{
		{name: "ScoreAboveTotal", req: completion(12, 10, 60)},
		{name: "NegativeScore", req: completion(-1, 10, 60)},
		{name: "ZeroTotal", req: completion(0, 0, 60)},
		{name: "NegativeTimeSpent", req: completion(1, 10, -5)},
		{name: "MissingScore", req: &CompleteAttemptRequest{TotalQuestions: intPtr(10), TimeSpent: intPtr(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.attempts.Complete(ctx, attempt.ID, tt.req)
			if KindOf(err) != KindValidation {
				t.Fatalf("Expected validation error, got %v", err)
			}

			stored, err := env.attempts.GetByID(ctx, attempt.ID)
			if err != nil {
				t.Fatalf("Failed to reload attempt: %v", err)
			}
			if stored.Status != models.AttemptCreated || stored.Score != nil {
				t.Errorf("Expected attempt to stay untouched, got %+v", stored)
			}
		})
	}

	t.Run("ScoreAboveTotalNamesField", func(t *testing.T) {
		_, err := env.attempts.Complete(ctx, attempt.ID, completion(12, 10, 60))
		details := ValidationDetails(err)
		if len(details) != 1 || details[0].Field != "score" || details[0].Rule != "lte_total_questions" {
			t.Errorf("Unexpected validation details %+v", details)
		}
	})

	t.Run("ScoreEqualToTotal", func(t *testing.T) {
		if _, err := env.attempts.Complete(ctx, attempt.ID, completion(1, 1, 0)); err != nil {
			t.Errorf("Expected full marks to be accepted, got %v", err)
		}
	})

	t.Run("UnknownAttempt", func(t *testing.T) {
		if _, err := env.attempts.Complete(ctx, 4242, completion(1, 1, 0)); !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("Expected ErrAttemptNotFound, got %v", err)
		}
	})
}

func TestAttemptService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("Ken", "ken@example.com")
	quiz := env.createQuiz("Refs", 1)

	tests := []struct {
		name string
		req  *CreateAttemptRequest
		kind ErrorKind
		want error
	}{
		{name: "Valid", req: &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID}},
		{name: "MissingQuizID", req: &CreateAttemptRequest{UserID: user.ID}, kind: KindValidation},
		{name: "UnknownQuiz", req: &CreateAttemptRequest{UserID: user.ID, QuizID: 999}, kind: KindNotFound, want: ErrQuizNotFound},
		{name: "UnknownUser", req: &CreateAttemptRequest{UserID: 999, QuizID: quiz.ID}, kind: KindNotFound, want: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.attempts.Create(ctx, tt.req)
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("Expected success, got %v", err)
				}
				return
			}
			if KindOf(err) != tt.kind {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAttemptService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("Barbara", "barbara@example.com")
	quiz := env.createQuiz("Listing", 1)

	var ids []uint
	for i := 0; i < 3; i++ {
		attempt, err := env.attempts.Create(ctx, &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID})
		if err != nil {
			t.Fatalf("Failed to create attempt: %v", err)
		}
		ids = append(ids, attempt.ID)
	}

	attempts, err := env.attempts.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list attempts: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("Expected 3 attempts, got %d", len(attempts))
	}
	if attempts[0].ID != ids[2] || attempts[2].ID != ids[0] {
		t.Errorf("Expected newest id first, got %d..%d", attempts[0].ID, attempts[2].ID)
	}
}

func TestAttemptService_UpdateScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("Edsger", "edsger@example.com")
	quiz := env.createQuiz("Scored", 1)
	attempt, err := env.attempts.Create(ctx, &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("Failed to create attempt: %v", err)
	}

	updated, err := env.attempts.UpdateScore(ctx, attempt.ID, &UpdateScoreRequest{Score: intPtr(75)})
	if err != nil {
		t.Fatalf("Failed to update score: %v", err)
	}
	if updated.PercentScore == nil || *updated.PercentScore != 75 {
		t.Errorf("Expected percent score 75, got %v", updated.PercentScore)
	}
	if updated.Status != models.AttemptCreated || updated.Score != nil {
		t.Errorf("Expected completion fields untouched, got %+v", updated)
	}

	cleared, err := env.attempts.UpdateScore(ctx, attempt.ID, &UpdateScoreRequest{})
	if err != nil {
		t.Fatalf("Failed to clear score: %v", err)
	}
	if cleared.PercentScore != nil {
		t.Errorf("Expected percent score cleared, got %v", *cleared.PercentScore)
	}

	if _, err := env.attempts.UpdateScore(ctx, attempt.ID, &UpdateScoreRequest{Score: intPtr(101)}); KindOf(err) != KindValidation {
		t.Errorf("Expected validation error for 101, got %v", err)
	}
	if _, err := env.attempts.UpdateScore(ctx, 4242, &UpdateScoreRequest{Score: intPtr(1)}); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("Expected ErrAttemptNotFound, got %v", err)
	}
}

func TestAttemptService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser("Alan", "alan@example.com")
	quiz := env.createQuiz("Deletable", 1)

	t.Run("Unreferenced", func(t *testing.T) {
		attempt, err := env.attempts.Create(ctx, &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID})
		if err != nil {
			t.Fatalf("Failed to create attempt: %v", err)
		}

		res, err := env.attempts.Delete(ctx, attempt.ID)
		if err != nil {
			t.Fatalf("Failed to delete attempt: %v", err)
		}
		if !res.Deleted || res.ID != attempt.ID {
			t.Errorf("Unexpected delete response %+v", res)
		}
		if _, err := env.attempts.GetByID(ctx, attempt.ID); !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("Expected attempt to be gone, got %v", err)
		}
	})

	t.Run("ReferencedByAnswer", func(t *testing.T) {
		attempt, err := env.attempts.Create(ctx, &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID})
		if err != nil {
			t.Fatalf("Failed to create attempt: %v", err)
		}
		answer := &models.Answer{AttemptID: attempt.ID, QuestionID: quiz.Questions[0].ID, Value: "4"}
		if err := env.db.Create(answer).Error; err != nil {
			t.Fatalf("Failed to insert answer: %v", err)
		}

		_, err = env.attempts.Delete(ctx, attempt.ID)
		if !errors.Is(err, ErrAttemptReferenced) {
			t.Fatalf("Expected ErrAttemptReferenced, got %v", err)
		}
		if KindOf(err) != KindConflict {
			t.Errorf("Expected conflict kind, got %s", KindOf(err))
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := env.attempts.Delete(ctx, 4242); !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("Expected ErrAttemptNotFound, got %v", err)
		}
	})
}

func TestAttemptService_ConcurrentCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	quiz := env.createQuiz("Raced", 1)
	user := env.createUser("Racer", "racer@example.com")
	attempt, err := env.attempts.Create(ctx, &CreateAttemptRequest{UserID: user.ID, QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("Failed to create attempt: %v", err)
	}

	// Every racer loads the attempt as CREATED before any of them writes
	const racers = 8
	gated := &hookedRepository{
		Repository: env.repo,
		attempt:    newGatedAttemptRepository(env.repo.Attempt(), racers),
	}
	svc := NewAttemptService(gated, env.db, env.logger, validator.New(), env.publisher, nil)

	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := svc.Complete(ctx, attempt.ID, completion(score, 10, 30))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAttemptAlreadyCompleted):
			conflicts++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != racers-1 {
		t.Errorf("Expected 1 win and %d conflicts, got %d and %d", racers-1, wins, conflicts)
	}

	stored, err := env.attempts.GetByID(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("Failed to get attempt: %v", err)
	}
	if stored.Status != models.AttemptCompleted || stored.CompletedAt == nil {
		t.Errorf("Expected a completed attempt, got %+v", stored)
	}
	if got := len(env.publisher.EventsOfType(events.AttemptCompleted)); got != 1 {
		t.Errorf("Expected 1 attempt.completed event, got %d", got)
	}
}
