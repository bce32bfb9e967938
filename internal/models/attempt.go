package models

import (
	"time"
)

type AttemptStatus string

const (
	AttemptCreated   AttemptStatus = "CREATED"
	AttemptCompleted AttemptStatus = "COMPLETED"
)

type QuizAttempt struct {
	ID     uint          `json:"id" gorm:"primaryKey"`
	UserID uint          `json:"user_id" gorm:"not null;index"`
	QuizID uint          `json:"quiz_id" gorm:"not null;index"`
	Status AttemptStatus `json:"status" gorm:"not null;size:20;default:CREATED;index"`

	// Scoring, set once on completion
	Score          *int       `json:"score"`
	TotalQuestions *int       `json:"total_questions"`
	TimeSpent      *int       `json:"time_spent"` // seconds
	CompletedAt    *time.Time `json:"completed_at" gorm:"index"`

	// Coarse 0-100 score patched independently of completion
	PercentScore *int `json:"percent_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Quiz    *Quiz    `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Answers []Answer `json:"-" gorm:"foreignKey:AttemptID"`
}

// IsCompleted reports whether the attempt reached its terminal state.
func (a *QuizAttempt) IsCompleted() bool {
	return a.Status == AttemptCompleted
}

// Answer is recorded by the answering flow; the core only deletes answers
// and relies on their foreign key to block attempt deletion.
type Answer struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AttemptID  uint      `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	Value      string    `json:"value" gorm:"type:text"`
	IsCorrect  *bool     `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (Answer) TableName() string {
	return "answers"
}
