package preappstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no pre-application matches.
var ErrNotFound = errors.New("pre-application not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pre_applications")}
}

// Upsert records the outcome of an eligibility check for (p.UserID, p.SchemeID),
// replacing any earlier outcome for the same pair.
func (s *Store) Upsert(ctx context.Context, p models.PreApplication) error {
	if p.UserAnswers == nil {
		p.UserAnswers = map[string]string{}
	}
	if p.AIResponse.Questions == nil {
		p.AIResponse.Questions = []string{}
	}
	now := time.Now().UTC()

	filter := bson.M{"user_id": p.UserID, "scheme_id": p.SchemeID}
	update := bson.M{
		"$set": bson.M{
			"eligibility_status": p.EligibilityStatus,
			"ai_response":        p.AIResponse,
			"user_answers":       p.UserAnswers,
			"updated_at":         now,
		},
		"$setOnInsert": bson.M{
			"approved_for_application": false,
			"created_at":               now,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := s.c.UpdateOne(ctx, filter, update, opts)
	if err != nil && wafflemongo.IsDup(err) {
		// Two first-time upserts raced on the unique index; the loser now
		// finds the winner's document and updates it.
		_, err = s.c.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("upsert pre_application: %w", err)
	}
	return nil
}

// Get loads the pre-application for (userID, schemeID).
func (s *Store) Get(ctx context.Context, userID, schemeID primitive.ObjectID) (*models.PreApplication, error) {
	return s.findOne(ctx, bson.M{"user_id": userID, "scheme_id": schemeID})
}

// GetEligible loads the pre-application for (userID, schemeID) only when it
// passed the eligibility check.
func (s *Store) GetEligible(ctx context.Context, userID, schemeID primitive.ObjectID) (*models.PreApplication, error) {
	return s.findOne(ctx, bson.M{
		"user_id":            userID,
		"scheme_id":          schemeID,
		"eligibility_status": models.EligibilityEligible,
	})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.PreApplication, error) {
	var p models.PreApplication
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find pre_application: %w", err)
	}
	return &p, nil
}

// MarkApproved flags the pre-application as consumed by a real application.
func (s *Store) MarkApproved(ctx context.Context, userID, schemeID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "scheme_id": schemeID},
		bson.M{"$set": bson.M{"approved_for_application": true, "updated_at": time.Now().UTC()}},
	)
	return err
}
