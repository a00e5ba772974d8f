package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-session-service/internal/event"
	"quiz-session-service/internal/logger"
	"quiz-session-service/internal/models"
	"quiz-session-service/internal/service"
)

// Publisher is satisfied by *event.EventPublisher.
type Publisher interface {
	Publish(eventType string, payload any) error
}

type SessionHandler struct {
	Service   *service.SessionService
	Publisher Publisher
}

func NewSessionHandler(s *service.SessionService, publisher Publisher) *SessionHandler {
	return &SessionHandler{
		Service:   s,
		Publisher: publisher,
	}
}

// publish sends one lifecycle event. Events are best-effort next to the
// already-persisted state change, so failures are logged, not returned.
func (h *SessionHandler) publish(eventType string, payload any) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.Publish(eventType, payload); err != nil {
		logger.Log.Warn("failed to publish event",
			zap.String("type", eventType), zap.Error(err))
	}
}

// StartSession creates a new session for a user and quiz.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.Service.StartSession(c.Request.Context(), req.UserID, req.QuizID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publish(event.SessionStarted, gin.H{
		"session_id": resp.SessionID,
		"user_id":    req.UserID,
		"quiz_id":    req.QuizID,
	})

	c.JSON(http.StatusCreated, resp)
}

// SubmitAnswer records one answer against a session.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.Param("id")

	var req models.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid answer format",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.Service.SubmitAnswer(c.Request.Context(), sessionID, *req.QuestionIndex, req.UserAnswer)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publish(event.AnswerSubmitted, gin.H{
		"session_id":     sessionID,
		"question_index": *req.QuestionIndex,
		"is_correct":     resp.IsCorrect,
	})

	c.JSON(http.StatusOK, resp)
}

// GetSessionStatus returns the current session view.
func (h *SessionHandler) GetSessionStatus(c *gin.Context) {
	resp, err := h.Service.GetSessionStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteSession finalizes a session.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	resp, err := h.Service.CompleteSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publish(event.SessionCompleted, gin.H{
		"session_id":  sessionID,
		"final_score": resp.FinalScore,
	})

	c.JSON(http.StatusOK, resp)
}

// GetUserSessions lists a user's sessions, newest first.
func (h *SessionHandler) GetUserSessions(c *gin.Context) {
	userID := c.Param("userId")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must not be negative"})
		return
	}

	sessions, err := h.Service.UserSessions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"limit":    limit,
		"offset":   offset,
	})
}
