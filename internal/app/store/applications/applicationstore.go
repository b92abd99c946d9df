package applicationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no application matches the id.
	ErrNotFound = errors.New("application not found")
	// ErrAlreadyApplied is returned when the user already has an application for the scheme.
	ErrAlreadyApplied = errors.New("already applied to this scheme")
	// ErrInvalidTransition is returned when the requested status change is not allowed
	// from the application's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrBadStatus is returned for an unknown status value.
	ErrBadStatus = errors.New(`status must be "pending"|"approved"|"rejected"|"under_review"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// Create inserts a pending application for (userID, schemeID).
// The (user_id, scheme_id) unique index backs ErrAlreadyApplied; the
// lookup below only gives a cleaner answer in the common case.
func (s *Store) Create(ctx context.Context, userID, schemeID primitive.ObjectID) (models.Application, error) {
	exists, err := s.Exists(ctx, userID, schemeID)
	if err != nil {
		return models.Application{}, err
	}
	if exists {
		return models.Application{}, ErrAlreadyApplied
	}

	now := time.Now().UTC()
	a := models.Application{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		SchemeID:    schemeID,
		Status:      models.StatusPending,
		ReferenceID: uuid.NewString(),
		AppliedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Application{}, ErrAlreadyApplied
		}
		return models.Application{}, fmt.Errorf("insert application: %w", err)
	}
	return a, nil
}

// Exists reports whether the user has applied to the scheme.
func (s *Store) Exists(ctx context.Context, userID, schemeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx,
		bson.M{"user_id": userID, "scheme_id": schemeID},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find application: %w", err)
	}
	return true, nil
}

// GetByID loads one application.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Application, error) {
	var a models.Application
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &a, nil
}

// List returns one page of applications, newest first. An empty status
// matches every status.
func (s *Store) List(ctx context.Context, status string, pg paging.Page) ([]models.Application, int64, error) {
	q := bson.M{}
	if status != "" {
		if !models.IsValidApplicationStatus(status) {
			return nil, 0, ErrBadStatus
		}
		q["status"] = status
	}

	find := pg.ApplyToFind(options.Find().
		SetSort(bson.D{{Key: "applied_at", Value: -1}, {Key: "_id", Value: -1}}))
	cur, err := s.c.Find(ctx, q, find)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Application{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode applications: %w", err)
	}

	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return out, total, nil
}

// UpdateStatus moves an application to status "to" and records the reviewer.
// The write is conditional on the status read, so two reviewers racing on
// the same application cannot both succeed.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, to, notes string, reviewer primitive.ObjectID) (*models.Application, error) {
	if !models.IsValidApplicationStatus(to) {
		return nil, ErrBadStatus
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(cur.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, to)
	}

	now := time.Now().UTC()
	var a models.Application
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": cur.Status},
		bson.M{"$set": bson.M{
			"status":      to,
			"notes":       notes,
			"reviewed_by": reviewer,
			"reviewed_at": now,
			"updated_at":  now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("update application: %w", err)
	}
	return &a, nil
}

// Count returns the number of applications; an empty status counts all.
func (s *Store) Count(ctx context.Context, status string) (int64, error) {
	q := bson.M{}
	if status != "" {
		q["status"] = status
	}
	return s.c.CountDocuments(ctx, q)
}
