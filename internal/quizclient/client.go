// Package quizclient talks to the quiz-generator service, the read-only
// catalog that owns quiz content.
package quizclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"quiz-session-service/internal/apperrors"
	"quiz-session-service/internal/logger"
	"quiz-session-service/internal/models"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// quizDocument mirrors the generator's wire format, where the identifier
// may arrive as either "id" or "_id" depending on the endpoint.
type quizDocument struct {
	ID        string            `json:"id"`
	MongoID   string            `json:"_id"`
	BookID    string            `json:"book_id"`
	Questions []models.Question `json:"questions"`
	CreatedAt time.Time         `json:"created_at"`
	AIModel   string            `json:"ai_model"`
	Metadata  map[string]any    `json:"metadata"`
}

// GetQuiz resolves a quiz by id. A catalog 404 maps to ErrQuizNotFound;
// transport failures and server errors map to ErrUpstreamUnavailable.
func (c *Client) GetQuiz(ctx context.Context, quizID string) (*models.Quiz, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quizzes/"+url.PathEscape(quizID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Log.Error("quiz catalog request failed", zap.String("quiz_id", quizID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Log.Warn("quiz not found in catalog", zap.String("quiz_id", quizID))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrQuizNotFound, quizID)
	case resp.StatusCode != http.StatusOK:
		logger.Log.Error("quiz catalog returned error status",
			zap.String("quiz_id", quizID), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var doc quizDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding quiz: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	id := doc.ID
	if id == "" {
		id = doc.MongoID
	}

	return &models.Quiz{
		ID:             id,
		BookID:         doc.BookID,
		Questions:      doc.Questions,
		QuestionsCount: len(doc.Questions),
		CreatedAt:      doc.CreatedAt,
		AIModel:        doc.AIModel,
		Metadata:       doc.Metadata,
	}, nil
}

// ListQuizzes returns a page of catalog entries, optionally filtered by book.
func (c *Client) ListQuizzes(ctx context.Context, bookID string, limit, offset int) (*models.QuizList, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if bookID != "" {
		params.Set("book_id", bookID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quizzes?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Log.Error("quiz catalog list request failed", zap.String("book_id", bookID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var wire struct {
		Quizzes []struct {
			ID             string    `json:"id"`
			MongoID        string    `json:"_id"`
			BookID         string    `json:"book_id"`
			QuestionsCount int       `json:"questions_count"`
			CreatedAt      time.Time `json:"created_at"`
		} `json:"quizzes"`
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: decoding quiz list: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	list := &models.QuizList{
		Quizzes: make([]models.QuizListItem, 0, len(wire.Quizzes)),
		Total:   wire.Total,
		Limit:   wire.Limit,
		Offset:  wire.Offset,
	}
	for _, q := range wire.Quizzes {
		id := q.ID
		if id == "" {
			id = q.MongoID
		}
		list.Quizzes = append(list.Quizzes, models.QuizListItem{
			ID:             id,
			BookID:         q.BookID,
			QuestionsCount: q.QuestionsCount,
			CreatedAt:      q.CreatedAt,
		})
	}
	return list, nil
}

// HealthCheck reports whether the catalog answers its health endpoint.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Log.Warn("quiz catalog health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
