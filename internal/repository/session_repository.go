package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quiz-session-service/internal/apperrors"
	"quiz-session-service/internal/models"
)

// SessionRepository persists quiz sessions in the quiz_sessions
// collection, one document per session with answers embedded.
type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("quiz_sessions")}
}

// sessionDoc is the storage shape. The _id is a driver ObjectID; the
// model carries it as a hex string.
type sessionDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	UserID      string               `bson:"user_id"`
	QuizID      string               `bson:"quiz_id"`
	BookID      string               `bson:"book_id"`
	Answers     []models.Answer      `bson:"answers"`
	Score       *float64             `bson:"score,omitempty"`
	StartedAt   time.Time            `bson:"started_at"`
	CompletedAt *time.Time           `bson:"completed_at,omitempty"`
	Status      models.SessionStatus `bson:"status"`
}

func toDoc(s *models.QuizSession) sessionDoc {
	return sessionDoc{
		UserID:      s.UserID,
		QuizID:      s.QuizID,
		BookID:      s.BookID,
		Answers:     s.Answers,
		Score:       s.Score,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		Status:      s.Status,
	}
}

func (d *sessionDoc) toModel() *models.QuizSession {
	answers := d.Answers
	if answers == nil {
		answers = []models.Answer{}
	}
	return &models.QuizSession{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		QuizID:      d.QuizID,
		BookID:      d.BookID,
		Answers:     answers,
		Score:       d.Score,
		StartedAt:   d.StartedAt,
		CompletedAt: d.CompletedAt,
		Status:      d.Status,
	}
}

// EnsureIndexes creates the lookup indexes. Failures are non-fatal for
// the caller; it only loses query performance.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "quiz_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "started_at", Value: -1}}},
	})
	return err
}

// Create inserts the session and returns the assigned id.
func (r *SessionRepository) Create(ctx context.Context, session *models.QuizSession) (string, error) {
	res, err := r.Col.InsertOne(ctx, toDoc(session))
	if err != nil {
		return "", fmt.Errorf("%w: inserting session: %v", apperrors.ErrStoreUnavailable, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%w: unexpected inserted id type %T", apperrors.ErrStoreUnavailable, res.InsertedID)
	}
	session.ID = oid.Hex()
	return session.ID, nil
}

// FindByID returns the session, or (nil, nil) when it does not exist.
// A malformed id cannot address any document, so it reads as absent.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.QuizSession, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc sessionDoc
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching session %s: %v", apperrors.ErrStoreUnavailable, id, err)
	}
	return doc.toModel(), nil
}

// AppendAnswer pushes one answer onto the session document. Returns
// whether the write applied (false when the session vanished).
func (r *SessionRepository) AppendAnswer(ctx context.Context, id string, answer models.Answer) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$push": bson.M{"answers": answer}},
	)
	if err != nil {
		return false, fmt.Errorf("%w: appending answer to session %s: %v", apperrors.ErrStoreUnavailable, id, err)
	}
	return res.ModifiedCount > 0, nil
}

// Complete atomically marks the session completed. The filter includes
// the in_progress status so two racing completions cannot both apply;
// the loser sees applied=false.
func (r *SessionRepository) Complete(ctx context.Context, id string, score float64, completedAt time.Time) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": models.SessionInProgress},
		bson.M{"$set": bson.M{
			"status":       models.SessionCompleted,
			"score":        score,
			"completed_at": completedAt,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("%w: completing session %s: %v", apperrors.ErrStoreUnavailable, id, err)
	}
	return res.ModifiedCount > 0, nil
}

// FindByUser lists a user's sessions, most recently started first.
func (r *SessionRepository) FindByUser(ctx context.Context, userID string, limit, offset int) ([]models.QuizSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: listing sessions for user %s: %v", apperrors.ErrStoreUnavailable, userID, err)
	}
	defer cur.Close(ctx)

	sessions := []models.QuizSession{}
	for cur.Next(ctx) {
		var doc sessionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decoding session: %v", apperrors.ErrStoreUnavailable, err)
		}
		sessions = append(sessions, *doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sessions: %v", apperrors.ErrStoreUnavailable, err)
	}
	return sessions, nil
}
