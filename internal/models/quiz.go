package models

import (
	"time"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

type QuestionType string

const (
	QuestionSingle   QuestionType = "SINGLE"
	QuestionMultiple QuestionType = "MULTIPLE"
	QuestionMatching QuestionType = "MATCHING"
)

// UsesOptions reports whether questions of this type own Options.
func (t QuestionType) UsesOptions() bool {
	return t == QuestionSingle || t == QuestionMultiple
}

// UsesPairs reports whether questions of this type own MatchingPairs.
func (t QuestionType) UsesPairs() bool {
	return t == QuestionMatching
}

type Subject struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100;uniqueIndex"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Categories []Category `json:"categories,omitempty" gorm:"foreignKey:SubjectID"`
}

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	SubjectID   uint      `json:"subject_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Quiz struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null;size:200;index"`
	Description *string         `json:"description" gorm:"type:text"`
	Difficulty  DifficultyLevel `json:"difficulty" gorm:"not null;size:10;default:MEDIUM"`
	TimeLimit   *int            `json:"time_limit"` // minutes
	IsExamMode  bool            `json:"is_exam_mode" gorm:"not null;default:false"`
	SubjectID   uint            `json:"subject_id" gorm:"not null;index"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	Subject   *Subject   `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Category  *Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`
}

type Question struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	QuizID      uint         `json:"quiz_id" gorm:"not null;index"`
	Content     string       `json:"content" gorm:"type:text;not null"`
	Type        QuestionType `json:"type" gorm:"not null;size:10;index"`
	ImageURL    *string      `json:"image_url" gorm:"size:500"`
	Explanation *string      `json:"explanation" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Children depend on Type: options for SINGLE/MULTIPLE, pairs for MATCHING.
	Options       []Option       `json:"options" gorm:"foreignKey:QuestionID"`
	MatchingPairs []MatchingPair `json:"matching_pairs" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

type MatchingPair struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Left       string `json:"left" gorm:"column:left_text;type:text;not null"`
	Right      string `json:"right" gorm:"column:right_text;type:text;not null"`
}

func (Subject) TableName() string {
	return "subjects"
}

func (Category) TableName() string {
	return "categories"
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "options"
}

func (MatchingPair) TableName() string {
	return "matching_pairs"
}
