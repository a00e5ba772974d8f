// Package apperrors defines the closed set of failure kinds the session
// engine can return. Callers match them with errors.Is; transport layers
// map them to status codes without inspecting message text.
package apperrors

import "errors"

var (
	// ErrQuizNotFound means the referenced quiz does not exist in the catalog.
	ErrQuizNotFound = errors.New("quiz not found")

	// ErrUpstreamUnavailable means the quiz catalog was unreachable or
	// returned a server error. Distinct from ErrQuizNotFound.
	ErrUpstreamUnavailable = errors.New("quiz catalog unavailable")

	// ErrSessionNotFound means the referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotActive means the operation requires an in_progress
	// session but it is already completed or abandoned.
	ErrSessionNotActive = errors.New("session is not in progress")

	// ErrInvalidQuestionIndex means the index falls outside [0, total_questions).
	ErrInvalidQuestionIndex = errors.New("invalid question index")

	// ErrDuplicateAnswer means the question index already has a recorded answer.
	ErrDuplicateAnswer = errors.New("question already answered")

	// ErrCompletionConflict means the atomic completion update did not
	// apply: another completion already landed.
	ErrCompletionConflict = errors.New("session completion conflict")

	// ErrStoreUnavailable means a persistence operation failed for
	// infrastructure reasons.
	ErrStoreUnavailable = errors.New("session store unavailable")
)
