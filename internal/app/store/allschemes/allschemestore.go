// Package allschemestore reads and writes the bulk scheme corpus. Documents
// are schemaless; only schemeName/name and the eligibility fields are
// interpreted (see models.AllSchemeName and models.AllSchemeCriteria).
package allschemestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no document matches the id.
var ErrNotFound = errors.New("scheme not found")

// Collection is the bulk corpus collection name.
const Collection = "all_schemes"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// List returns one page in natural order plus the collection size.
func (s *Store) List(ctx context.Context, pg paging.Page) ([]models.AllScheme, int64, error) {
	cur, err := s.c.Find(ctx, bson.M{}, pg.ApplyToFind(options.Find()))
	if err != nil {
		return nil, 0, fmt.Errorf("list all_schemes: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.AllScheme{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode all_schemes: %w", err)
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Count returns the number of documents in the corpus.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count all_schemes: %w", err)
	}
	return n, nil
}

// GetByID loads one document.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AllScheme, error) {
	var doc models.AllScheme
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find all_scheme: %w", err)
	}
	return doc, nil
}

// Exists reports whether a document with id is present.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create stores doc under a fresh id. Any client-supplied _id is ignored.
func (s *Store) Create(ctx context.Context, doc models.AllScheme) (models.AllScheme, error) {
	out := make(models.AllScheme, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["_id"] = primitive.NewObjectID()

	if _, err := s.c.InsertOne(ctx, out); err != nil {
		return nil, fmt.Errorf("insert all_scheme: %w", err)
	}
	return out, nil
}

// Update sets every key of fields on the document and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, fields models.AllScheme) (models.AllScheme, error) {
	set := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}

	var doc models.AllScheme
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update all_scheme: %w", err)
	}
	return doc, nil
}

// Delete removes one document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Names resolves display names for ids, keyed by id. Missing ids are absent
// from the result.
func (s *Store) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	proj := options.Find().SetProjection(bson.M{"schemeName": 1, "name": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc models.AllScheme
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if id, ok := doc["_id"].(primitive.ObjectID); ok {
			out[id] = models.AllSchemeName(doc)
		}
	}
	return out, cur.Err()
}
