package notificationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no notification matches.
var ErrNotFound = errors.New("notification not found")

// DefaultRecent is how many notifications Recent returns when asked for none.
const DefaultRecent = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Create appends a notification for userID.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, message string) (models.Notification, error) {
	now := time.Now().UTC()
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// Recent returns the newest limit notifications of userID.
func (s *Store) Recent(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultRecent
	}
	return s.find(ctx, userID, int64(limit))
}

// All returns every notification of userID, newest first.
func (s *Store) All(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.find(ctx, userID, 0)
}

func (s *Store) find(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		find.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, find)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForUser loads a notification owned by userID. Another user's
// notification is reported as ErrNotFound.
func (s *Store) GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &n, nil
}
