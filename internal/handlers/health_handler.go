package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-session-service/internal/db"
	"quiz-session-service/internal/quizclient"
)

type HealthHandler struct {
	Quiz        *quizclient.Client
	ServiceName string
}

func NewHealthHandler(quiz *quizclient.Client, serviceName string) *HealthHandler {
	return &HealthHandler{Quiz: quiz, ServiceName: serviceName}
}

// Health reports service health: unhealthy when the database is down,
// degraded when only the quiz catalog is unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":         "unhealthy",
			"service":        h.ServiceName,
			"database":       "disconnected",
			"quiz_generator": "unknown",
			"error":          err.Error(),
		})
		return
	}

	catalogHealthy := h.Quiz.HealthCheck(c.Request.Context())
	status := "healthy"
	catalog := "connected"
	if !catalogHealthy {
		status = "degraded"
		catalog = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"service":        h.ServiceName,
		"database":       "connected",
		"quiz_generator": catalog,
	})
}
