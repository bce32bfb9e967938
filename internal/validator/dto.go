package validator

import (
	"github.com/quizhub/quiz-service/internal/models"
)

// QuizRequest is the full quiz payload. Create and update share it: an update
// replaces every scalar and the whole question list.
type QuizRequest struct {
	Title       string                  `json:"title" validate:"required,quiz_title"`
	Description *string                 `json:"description" validate:"omitempty,max=2000"`
	Difficulty  *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	TimeLimit   *int                    `json:"time_limit" validate:"omitempty,min=1"`
	IsExamMode  *bool                   `json:"is_exam_mode"`
	SubjectID   uint                    `json:"subject_id" validate:"required"`
	CategoryID  uint                    `json:"category_id" validate:"required"`
	Questions   []QuestionRequest       `json:"questions" validate:"omitempty,dive"`
}

type CreateQuizRequest = QuizRequest

type UpdateQuizRequest = QuizRequest

// QuestionRequest carries options for SINGLE/MULTIPLE and pairs for MATCHING
type QuestionRequest struct {
	Content     string              `json:"content" validate:"required,not_blank,max=5000"`
	Type        models.QuestionType `json:"type" validate:"required,question_type"`
	ImageURL    *string             `json:"image_url" validate:"omitempty,url,max=500"`
	Explanation *string             `json:"explanation" validate:"omitempty,max=2000"`
	Options     []OptionRequest     `json:"options" validate:"omitempty,dive"`
	Pairs       []PairRequest       `json:"pairs" validate:"omitempty,dive"`
}

type OptionRequest struct {
	Text      string `json:"text" validate:"required,not_blank,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

type PairRequest struct {
	Left  string `json:"left" validate:"required,not_blank,max=1000"`
	Right string `json:"right" validate:"required,not_blank,max=1000"`
}

type CreateAttemptRequest struct {
	UserID uint `json:"user_id" validate:"required"`
	QuizID uint `json:"quiz_id" validate:"required"`
}

// CompleteAttemptRequest also requires score <= total_questions, checked by ValidateCompletion
type CompleteAttemptRequest struct {
	Score          *int `json:"score" validate:"required,min=0"`
	TotalQuestions *int `json:"total_questions" validate:"required,min=1"`
	TimeSpent      *int `json:"time_spent" validate:"required,min=0"` // seconds
}

// UpdateScoreRequest patches the coarse 0-100 score; a missing score clears it
type UpdateScoreRequest struct {
	Score *int `json:"score" validate:"omitempty,min=0,max=100"`
}

type CreateSubjectRequest struct {
	Name        string  `json:"name" validate:"required,not_blank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,not_blank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	SubjectID   uint    `json:"subject_id" validate:"required"`
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,not_blank,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// LeaderboardQuery holds the optional knobs of the ranking views; zero means default
type LeaderboardQuery struct {
	Limit int `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	Days  int `form:"days" json:"days" validate:"omitempty,min=1,max=365"`
}
