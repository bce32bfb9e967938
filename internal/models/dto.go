package models

import (
	"time"
)

// Summary projections embedded in leaderboard and stats responses.

type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SubjectSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategorySummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type QuizSummary struct {
	ID         uint             `json:"id"`
	Title      string           `json:"title"`
	Difficulty DifficultyLevel  `json:"difficulty"`
	Subject    *SubjectSummary  `json:"subject,omitempty"`
	Category   *CategorySummary `json:"category,omitempty"`
}

type QuizListItem struct {
	ID            uint            `json:"id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description"`
	Difficulty    DifficultyLevel `json:"difficulty"`
	TimeLimit     *int            `json:"time_limit"`
	IsExamMode    bool            `json:"is_exam_mode"`
	SubjectID     uint            `json:"subject_id"`
	CategoryID    uint            `json:"category_id"`
	QuestionCount int             `json:"question_count" gorm:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}
