package models

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	// SessionAbandoned is a terminal state reserved for external cleanup
	// jobs. No operation of this service produces it.
	SessionAbandoned SessionStatus = "abandoned"
)

// Answer is one scored response. Immutable once recorded.
type Answer struct {
	QuestionIndex int       `bson:"question_index" json:"question_index"`
	UserAnswer    string    `bson:"user_answer" json:"user_answer"`
	IsCorrect     bool      `bson:"is_correct" json:"is_correct"`
	AnsweredAt    time.Time `bson:"answered_at" json:"answered_at"`
}

// QuizSession is one user's attempt at one quiz. Answers are embedded in
// the session document, at most one per question index. Score stays nil
// while the session is in progress and is written exactly once on
// completion together with CompletedAt.
type QuizSession struct {
	ID          string        `bson:"_id,omitempty" json:"id"`
	UserID      string        `bson:"user_id" json:"user_id"`
	QuizID      string        `bson:"quiz_id" json:"quiz_id"`
	BookID      string        `bson:"book_id" json:"book_id"`
	Answers     []Answer      `bson:"answers" json:"answers"`
	Score       *float64      `bson:"score,omitempty" json:"score,omitempty"`
	StartedAt   time.Time     `bson:"started_at" json:"started_at"`
	CompletedAt *time.Time    `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Status      SessionStatus `bson:"status" json:"status"`
}

// IsActive reports whether the session still accepts answers. Both
// terminal states (completed, abandoned) are inactive.
func (s *QuizSession) IsActive() bool {
	return s.Status == SessionInProgress
}

// HasAnswered reports whether an answer already occupies the given index.
func (s *QuizSession) HasAnswered(questionIndex int) bool {
	for _, a := range s.Answers {
		if a.QuestionIndex == questionIndex {
			return true
		}
	}
	return false
}
