package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"quiz-session-service/internal/apperrors"
	"quiz-session-service/internal/logger"
	"quiz-session-service/internal/models"
)

// QuizProvider resolves quiz content from the external catalog. Returns
// apperrors.ErrQuizNotFound or apperrors.ErrUpstreamUnavailable on failure.
type QuizProvider interface {
	GetQuiz(ctx context.Context, quizID string) (*models.Quiz, error)
}

// SessionStore is the durable session persistence. FindByID returns
// (nil, nil) for an absent session. The applied flags report whether a
// write matched a document in the expected state.
type SessionStore interface {
	Create(ctx context.Context, session *models.QuizSession) (string, error)
	FindByID(ctx context.Context, id string) (*models.QuizSession, error)
	AppendAnswer(ctx context.Context, id string, answer models.Answer) (bool, error)
	Complete(ctx context.Context, id string, score float64, completedAt time.Time) (bool, error)
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]models.QuizSession, error)
}

// SessionService is the session engine: it owns the lifecycle state
// machine and the scoring protocol. It keeps no state of its own; the
// store is the sole synchronization point between requests.
type SessionService struct {
	store   SessionStore
	quizzes QuizProvider
}

func NewSessionService(store SessionStore, quizzes QuizProvider) *SessionService {
	return &SessionService{
		store:   store,
		quizzes: quizzes,
	}
}

// StartSession verifies the quiz exists and creates a fresh in_progress
// session with the book id denormalized from the quiz.
func (s *SessionService) StartSession(ctx context.Context, userID, quizID string) (*models.StartSessionResponse, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	session := &models.QuizSession{
		UserID:    userID,
		QuizID:    quizID,
		BookID:    quiz.BookID,
		Answers:   []models.Answer{},
		StartedAt: time.Now().UTC(),
		Status:    models.SessionInProgress,
	}

	sessionID, err := s.store.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("started quiz session",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.String("quiz_id", quizID))

	return &models.StartSessionResponse{
		SessionID:      sessionID,
		QuizID:         quizID,
		TotalQuestions: len(quiz.Questions),
		Status:         models.SessionInProgress,
		StartedAt:      session.StartedAt,
	}, nil
}

// SubmitAnswer validates and records one answer. Preconditions are
// checked in a fixed order, each with its own failure kind: session
// exists, session active, quiz resolvable, index in range, index not
// yet answered. The current score is recomputed from the re-fetched
// post-append answer set, never estimated.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID string, questionIndex int, userAnswer string) (*models.SubmitAnswerResponse, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("%w: %s is %s", apperrors.ErrSessionNotActive, sessionID, session.Status)
	}

	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return nil, err
	}

	if questionIndex < 0 || questionIndex >= len(quiz.Questions) {
		return nil, fmt.Errorf("%w: %d of %d", apperrors.ErrInvalidQuestionIndex, questionIndex, len(quiz.Questions))
	}
	if session.HasAnswered(questionIndex) {
		return nil, fmt.Errorf("%w: index %d", apperrors.ErrDuplicateAnswer, questionIndex)
	}

	question := quiz.Questions[questionIndex]
	correctAnswer := question.CorrectAnswerText()
	isCorrect := normalizeAnswer(userAnswer) == normalizeAnswer(correctAnswer)

	answer := models.Answer{
		QuestionIndex: questionIndex,
		UserAnswer:    userAnswer,
		IsCorrect:     isCorrect,
		AnsweredAt:    time.Now().UTC(),
	}

	applied, err := s.store.AppendAnswer(ctx, sessionID, answer)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
	}

	updated, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
	}

	logger.Log.Info("answer submitted",
		zap.String("session_id", sessionID),
		zap.Int("question_index", questionIndex),
		zap.Bool("is_correct", isCorrect))

	return &models.SubmitAnswerResponse{
		IsCorrect:         isCorrect,
		CorrectAnswer:     correctAnswer,
		Explanation:       question.Explanation,
		CurrentScore:      CalculateScore(updated.Answers),
		QuestionsAnswered: len(updated.Answers),
		TotalQuestions:    len(quiz.Questions),
	}, nil
}

// GetSessionStatus reports the session view. The catalog being down
// degrades total_questions to 0 instead of failing the call; the score
// is the persisted one only once completed, otherwise derived fresh.
func (s *SessionService) GetSessionStatus(ctx context.Context, sessionID string) (*models.SessionStatusResponse, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
	}

	score := CalculateScore(session.Answers)
	if session.Status == models.SessionCompleted && session.Score != nil {
		score = *session.Score
	}

	return &models.SessionStatusResponse{
		SessionID:         session.ID,
		QuizID:            session.QuizID,
		BookID:            session.BookID,
		Status:            session.Status,
		Score:             score,
		QuestionsAnswered: len(session.Answers),
		TotalQuestions:    s.totalQuestions(ctx, session.QuizID),
		StartedAt:         session.StartedAt,
		CompletedAt:       session.CompletedAt,
	}, nil
}

// CompleteSession computes the final score and performs the one-way
// transition to completed through a single conditional store update.
// If the update does not apply, another completion won the race.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID string) (*models.CompleteSessionResponse, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("%w: %s is %s", apperrors.ErrSessionNotActive, sessionID, session.Status)
	}

	finalScore := CalculateScore(session.Answers)
	completedAt := time.Now().UTC()

	applied, err := s.store.Complete(ctx, sessionID, finalScore, completedAt)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCompletionConflict, sessionID)
	}

	logger.Log.Info("completed quiz session",
		zap.String("session_id", sessionID),
		zap.Float64("final_score", finalScore))

	return &models.CompleteSessionResponse{
		SessionID:         sessionID,
		FinalScore:        finalScore,
		QuestionsAnswered: len(session.Answers),
		TotalQuestions:    s.totalQuestions(ctx, session.QuizID),
		CompletedAt:       completedAt,
		Status:            models.SessionCompleted,
	}, nil
}

// UserSessions lists a user's sessions, most recent first.
func (s *SessionService) UserSessions(ctx context.Context, userID string, limit, offset int) ([]models.QuizSession, error) {
	return s.store.FindByUser(ctx, userID, limit, offset)
}

// totalQuestions resolves the question count for read-only reporting.
// An unreachable catalog degrades to 0 here; validation paths never use
// this helper.
func (s *SessionService) totalQuestions(ctx context.Context, quizID string) int {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		logger.Log.Warn("quiz unresolvable for reporting, degrading total_questions to 0",
			zap.String("quiz_id", quizID), zap.Error(err))
		return 0
	}
	return len(quiz.Questions)
}

// normalizeAnswer trims surrounding whitespace and lower-cases, for all
// question types alike. Deliberately nothing smarter.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
