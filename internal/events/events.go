package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "quiz-service"
	eventVersion = "1.0"
)

type EventType string

const (
	QuizCreated      EventType = "quiz.created"
	QuizUpdated      EventType = "quiz.updated"
	QuizDeleted      EventType = "quiz.deleted"
	AttemptCompleted EventType = "attempt.completed"
)

// Event is the envelope every domain event is published in
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type QuizEventData struct {
	QuizID        uint   `json:"quiz_id"`
	Title         string `json:"title,omitempty"`
	SubjectID     uint   `json:"subject_id,omitempty"`
	CategoryID    uint   `json:"category_id,omitempty"`
	QuestionCount int    `json:"question_count"`
}

type AttemptCompletedData struct {
	AttemptID      uint      `json:"attempt_id"`
	UserID         uint      `json:"user_id"`
	QuizID         uint      `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	TimeSpent      int       `json:"time_spent"`
	CompletedAt    time.Time `json:"completed_at"`
}
