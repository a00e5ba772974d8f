package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-session-service/internal/apperrors"
)

// statusForError is the total mapping from engine failure kinds to HTTP
// status codes. Unknown errors fall through to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrQuizNotFound),
		errors.Is(err, apperrors.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidQuestionIndex):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrSessionNotActive),
		errors.Is(err, apperrors.ErrDuplicateAnswer),
		errors.Is(err, apperrors.ErrCompletionConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}
