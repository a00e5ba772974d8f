package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz-session-service/internal/quizclient"
)

// QuizHandler proxies quiz discovery to the catalog service so clients
// only talk to one backend.
type QuizHandler struct {
	Client *quizclient.Client
}

func NewQuizHandler(client *quizclient.Client) *QuizHandler {
	return &QuizHandler{Client: client}
}

// GetQuiz returns the full quiz document from the catalog.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.Client.GetQuiz(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// ListAvailable lists catalog quizzes for one book.
func (h *QuizHandler) ListAvailable(c *gin.Context) {
	bookID := c.Param("bookId")

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

	list, err := h.Client.ListQuizzes(c.Request.Context(), bookID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
