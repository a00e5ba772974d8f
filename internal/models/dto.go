package models

import "time"

// Request bodies are validated by the transport layer through binding
// tags; the engine only sees well-formed input. QuestionIndex is a
// pointer so that index 0 survives the required check.

type StartSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	QuizID string `json:"quiz_id" binding:"required"`
}

// UserAnswer carries no required tag: an empty submission is a valid
// answer that the engine scores as incorrect.
type SubmitAnswerRequest struct {
	QuestionIndex *int   `json:"question_index" binding:"required"`
	UserAnswer    string `json:"user_answer"`
}

type StartSessionResponse struct {
	SessionID      string        `json:"session_id"`
	QuizID         string        `json:"quiz_id"`
	TotalQuestions int           `json:"total_questions"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at"`
}

type SubmitAnswerResponse struct {
	IsCorrect         bool    `json:"is_correct"`
	CorrectAnswer     string  `json:"correct_answer"`
	Explanation       string  `json:"explanation"`
	CurrentScore      float64 `json:"current_score"`
	QuestionsAnswered int     `json:"questions_answered"`
	TotalQuestions    int     `json:"total_questions"`
}

type SessionStatusResponse struct {
	SessionID         string        `json:"session_id"`
	QuizID            string        `json:"quiz_id"`
	BookID            string        `json:"book_id"`
	Status            SessionStatus `json:"status"`
	Score             float64       `json:"score"`
	QuestionsAnswered int           `json:"questions_answered"`
	TotalQuestions    int           `json:"total_questions"`
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}

type CompleteSessionResponse struct {
	SessionID         string        `json:"session_id"`
	FinalScore        float64       `json:"final_score"`
	QuestionsAnswered int           `json:"questions_answered"`
	TotalQuestions    int           `json:"total_questions"`
	CompletedAt       time.Time     `json:"completed_at"`
	Status            SessionStatus `json:"status"`
}
