package services

import (
	"context"
	"strings"

	"github.com/quizhub/quiz-service/internal/events"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
)

const (
	defaultQuizPageSize = 20
	maxQuizPageSize     = 100
)

// buildQuiz maps the request onto a new quiz, applying defaults for omitted scalars
func buildQuiz(req *CreateQuizRequest) *models.Quiz {
	quiz := &models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Difficulty:  models.DifficultyMedium,
		TimeLimit:   req.TimeLimit,
		SubjectID:   req.SubjectID,
		CategoryID:  req.CategoryID,
		Questions:   buildQuestions(0, req.Questions),
	}
	if req.Difficulty != nil {
		quiz.Difficulty = *req.Difficulty
	}
	if req.IsExamMode != nil {
		quiz.IsExamMode = *req.IsExamMode
	}
	return quiz
}

func buildQuestions(quizID uint, reqs []QuestionRequest) []models.Question {
	questions := make([]models.Question, 0, len(reqs))
	for _, r := range reqs {
		questions = append(questions, buildQuestion(quizID, r))
	}
	return questions
}

// buildQuestion only attaches the children the question type uses
func buildQuestion(quizID uint, req QuestionRequest) models.Question {
	q := models.Question{
		QuizID:      quizID,
		Content:     strings.TrimSpace(req.Content),
		Type:        req.Type,
		ImageURL:    req.ImageURL,
		Explanation: req.Explanation,
	}

	if req.Type.UsesOptions() {
		for _, o := range req.Options {
			q.Options = append(q.Options, models.Option{
				Text:      strings.TrimSpace(o.Text),
				IsCorrect: o.IsCorrect,
			})
		}
	}
	if req.Type.UsesPairs() {
		for _, p := range req.Pairs {
			q.MatchingPairs = append(q.MatchingPairs, models.MatchingPair{
				Left:  strings.TrimSpace(p.Left),
				Right: strings.TrimSpace(p.Right),
			})
		}
	}

	return q
}

// checkQuizReferences resolves subject and category inside the caller's transaction
func checkQuizReferences(ctx context.Context, repo repositories.Repository, subjectID, categoryID uint) error {
	ok, err := repo.Subject().Exists(ctx, nil, subjectID)
	if err != nil {
		return internalError("check subject", err)
	}
	if !ok {
		return ErrSubjectNotFound
	}

	ok, err = repo.Category().Exists(ctx, nil, categoryID)
	if err != nil {
		return internalError("check category", err)
	}
	if !ok {
		return ErrCategoryNotFound
	}

	return nil
}

func normalizeQuizFilters(filters repositories.QuizFilters) repositories.QuizFilters {
	if filters.Limit <= 0 {
		filters.Limit = defaultQuizPageSize
	}
	if filters.Limit > maxQuizPageSize {
		filters.Limit = maxQuizPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return filters
}

func quizEventData(quiz *models.Quiz) events.QuizEventData {
	return events.QuizEventData{
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		SubjectID:     quiz.SubjectID,
		CategoryID:    quiz.CategoryID,
		QuestionCount: len(quiz.Questions),
	}
}
