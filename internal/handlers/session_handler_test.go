package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"quiz-session-service/internal/apperrors"
	"quiz-session-service/internal/logger"
	"quiz-session-service/internal/models"
	"quiz-session-service/internal/service"
)

type stubQuizProvider struct {
	quizzes map[string]*models.Quiz
}

func (s *stubQuizProvider) GetQuiz(_ context.Context, quizID string) (*models.Quiz, error) {
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrQuizNotFound, quizID)
	}
	return quiz, nil
}

type stubSessionStore struct {
	sessions map[string]*models.QuizSession
	nextID   int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*models.QuizSession)}
}

func (s *stubSessionStore) Create(_ context.Context, session *models.QuizSession) (string, error) {
	s.nextID++
	id := "session-" + strconv.Itoa(s.nextID)
	session.ID = id
	stored := *session
	stored.Answers = append([]models.Answer{}, session.Answers...)
	s.sessions[id] = &stored
	return id, nil
}

func (s *stubSessionStore) FindByID(_ context.Context, id string) (*models.QuizSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *session
	c.Answers = append([]models.Answer{}, session.Answers...)
	return &c, nil
}

func (s *stubSessionStore) AppendAnswer(_ context.Context, id string, answer models.Answer) (bool, error) {
	session, ok := s.sessions[id]
	if !ok {
		return false, nil
	}
	session.Answers = append(session.Answers, answer)
	return true, nil
}

func (s *stubSessionStore) Complete(_ context.Context, id string, score float64, completedAt time.Time) (bool, error) {
	session, ok := s.sessions[id]
	if !ok || session.Status != models.SessionInProgress {
		return false, nil
	}
	session.Status = models.SessionCompleted
	session.Score = &score
	session.CompletedAt = &completedAt
	return true, nil
}

func (s *stubSessionStore) FindByUser(_ context.Context, userID string, limit, offset int) ([]models.QuizSession, error) {
	out := []models.QuizSession{}
	for _, session := range s.sessions {
		if session.UserID == userID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func newTestRouter() (*gin.Engine, *stubSessionStore) {
	return newTestRouterWithPublisher(nil)
}

func newTestRouterWithPublisher(publisher Publisher) (*gin.Engine, *stubSessionStore) {
	gin.SetMode(gin.TestMode)

	store := newStubSessionStore()
	provider := &stubQuizProvider{quizzes: map[string]*models.Quiz{
		"Q1": {
			ID:     "Q1",
			BookID: "B1",
			Questions: []models.Question{
				{
					Question:      "What is the capital of Italy?",
					Type:          models.QuestionTypeOpen,
					CorrectAnswer: "Rome",
					Explanation:   "Rome has been the capital since 1871.",
				},
			},
			QuestionsCount: 1,
		},
	}}

	handler := NewSessionHandler(service.NewSessionService(store, provider), publisher)

	r := gin.New()
	r.POST("/api/session/start", handler.StartSession)
	r.GET("/api/session/:id", handler.GetSessionStatus)
	r.POST("/api/session/:id/answer", handler.SubmitAnswer)
	r.POST("/api/session/:id/complete", handler.CompleteSession)
	r.GET("/api/user/:userId/sessions", handler.GetUserSessions)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/session/start", gin.H{"user_id": "U1", "quiz_id": "Q1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.StartSessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp.SessionID
}

func TestStartSessionEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/session/start", gin.H{"user_id": "U1", "quiz_id": "Q1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.StartSessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != models.SessionInProgress || resp.TotalQuestions != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestStartSessionEndpointValidation(t *testing.T) {
	r, _ := newTestRouter()

	testCases := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing user_id", gin.H{"quiz_id": "Q1"}, http.StatusBadRequest},
		{"missing quiz_id", gin.H{"user_id": "U1"}, http.StatusBadRequest},
		{"unknown quiz", gin.H{"user_id": "U1", "quiz_id": "nope"}, http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/session/start", tc.body)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	r, _ := newTestRouter()
	sessionID := startSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/answer",
		gin.H{"question_index": 0, "user_answer": "rome"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SubmitAnswerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.IsCorrect || resp.CurrentScore != 100.0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSubmitAnswerEndpointIndexZeroPassesValidation(t *testing.T) {
	// question_index 0 is a valid index and must not be rejected by the
	// required-field check.
	r, _ := newTestRouter()
	sessionID := startSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/answer",
		gin.H{"question_index": 0, "user_answer": "Milan"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitAnswerEndpointEmptyAnswer(t *testing.T) {
	// An empty answer is a valid submission: it reaches the engine and
	// scores as incorrect instead of being rejected at the boundary.
	r, store := newTestRouter()
	sessionID := startSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/answer",
		gin.H{"question_index": 0, "user_answer": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SubmitAnswerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.IsCorrect {
		t.Error("empty answer must score as incorrect")
	}
	if resp.CurrentScore != 0.0 {
		t.Errorf("expected current score 0.0, got %.2f", resp.CurrentScore)
	}
	if len(store.sessions[sessionID].Answers) != 1 {
		t.Error("empty answer must be recorded like any other answer")
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, any) error {
	return errors.New("amqp channel closed")
}

func TestPublishFailureIsLoggedNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = previous }()

	r, _ := newTestRouterWithPublisher(failingPublisher{})

	w := doJSON(t, r, http.MethodPost, "/api/session/start", gin.H{"user_id": "U1", "quiz_id": "Q1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("publish failure must not fail the request, got %d: %s", w.Code, w.Body.String())
	}

	entries := logs.FilterMessage("failed to publish event").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning about the failed publish, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("expected warn level, got %s", entries[0].Level)
	}
}

func TestSubmitAnswerEndpointErrors(t *testing.T) {
	r, _ := newTestRouter()
	sessionID := startSession(t, r)

	if w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/answer",
		gin.H{"question_index": 7, "user_answer": "Rome"}); w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range index: expected 400, got %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/answer",
		gin.H{"user_answer": "Rome"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing index: expected 400, got %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodPost, "/api/session/missing/answer",
		gin.H{"question_index": 0, "user_answer": "Rome"}); w.Code != http.StatusNotFound {
		t.Errorf("missing session: expected 404, got %d", w.Code)
	}

	doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/answer",
		gin.H{"question_index": 0, "user_answer": "Rome"})
	if w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/answer",
		gin.H{"question_index": 0, "user_answer": "Rome"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate answer: expected 409, got %d", w.Code)
	}
}

func TestGetSessionStatusEndpoint(t *testing.T) {
	r, _ := newTestRouter()
	sessionID := startSession(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/session/"+sessionID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SessionStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != models.SessionInProgress || resp.BookID != "B1" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/session/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing session: expected 404, got %d", w.Code)
	}
}

func TestCompleteSessionEndpoint(t *testing.T) {
	r, _ := newTestRouter()
	sessionID := startSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Second completion races against an already-terminal session.
	if w := doJSON(t, r, http.MethodPost, "/api/session/"+sessionID+"/complete", nil); w.Code != http.StatusConflict {
		t.Errorf("double completion: expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetUserSessionsEndpoint(t *testing.T) {
	r, _ := newTestRouter()
	startSession(t, r)
	startSession(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/user/U1/sessions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Sessions []models.QuizSession `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(resp.Sessions))
	}

	if w := doJSON(t, r, http.MethodGet, "/api/user/U1/sessions?limit=0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("limit 0: expected 400, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/user/U1/sessions?offset=-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("negative offset: expected 400, got %d", w.Code)
	}
}
