package models

import (
	"fmt"
	"strconv"
	"time"
)

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeBoolean        QuestionType = "boolean"
	QuestionTypeOpen           QuestionType = "open"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Question is one entry of a quiz. Questions are addressed by their index
// in Quiz.Questions; the catalog guarantees the order is stable.
type Question struct {
	Question       string          `json:"question"`
	Type           QuestionType    `json:"type"`
	CorrectAnswer  any             `json:"correct_answer"`
	Options        []string        `json:"options,omitempty"`
	Explanation    string          `json:"explanation"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	Topic          string          `json:"topic"`
	ConceptsTested []string        `json:"concepts_tested"`
}

// CorrectAnswerText returns the canonical correct answer as text. Boolean
// questions store the answer as a bool in the catalog document.
func (q *Question) CorrectAnswerText() string {
	switch v := q.CorrectAnswer.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Quiz is a catalog document, read-only to this service.
type Quiz struct {
	ID             string         `json:"id"`
	BookID         string         `json:"book_id"`
	Questions      []Question     `json:"questions"`
	QuestionsCount int            `json:"questions_count"`
	CreatedAt      time.Time      `json:"created_at"`
	AIModel        string         `json:"ai_model,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type QuizListItem struct {
	ID             string    `json:"id"`
	BookID         string    `json:"book_id"`
	QuestionsCount int       `json:"questions_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type QuizList struct {
	Quizzes []QuizListItem `json:"quizzes"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}
