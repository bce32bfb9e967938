package models

import (
	"time"
)

// User is owned by the identity service; quizzes only reference it.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Subject{},
		&Category{},
		&Quiz{},
		&Question{},
		&Option{},
		&MatchingPair{},
		&QuizAttempt{},
		&Answer{},
	}
}
