package poststore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jansethu/mysarkar/internal/app/system/normalize"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no active post matches the id.
var ErrNotFound = errors.New("post not found")

// Sort orders accepted by List.
const (
	SortRecent  = "recent"
	SortPopular = "popular"
)

// TrendingLimit is how many tags TrendingTags returns by default.
const TrendingLimit = 10

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// Create inserts an active post. Tags are normalized.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Tags = normalize.Tags(p.Tags)
	p.Likes = []models.Like{}
	p.Comments = []models.Comment{}
	p.IsActive = true
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

// ListFilter narrows List.
type ListFilter struct {
	Tags   []string
	SortBy string // recent (default) | popular
}

// List returns one page of active posts plus the total match count.
// Popular sorts by number of likes, then recency.
func (s *Store) List(ctx context.Context, f ListFilter, pg paging.Page) ([]models.Post, int64, error) {
	match := bson.M{"is_active": true}
	if tags := normalize.Tags(f.Tags); len(tags) > 0 {
		match["tags"] = bson.M{"$in": tags}
	}

	var sortStage bson.D
	if f.SortBy == SortPopular {
		sortStage = bson.D{{Key: "like_count", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	} else {
		sortStage = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{
			"like_count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: sortStage}},
		{{Key: "$skip", Value: pg.Skip()}},
		{{Key: "$limit", Value: int64(pg.Limit)}},
		{{Key: "$project", Value: bson.M{"like_count": 0}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode posts: %w", err)
	}

	total, err := s.c.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	return out, total, nil
}

// All returns every post, including soft-deleted ones.
func (s *Store) All(ctx context.Context) ([]models.Post, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("all posts: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads an active post.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

// ToggleLike unlikes the post if userID already liked it and likes it
// otherwise. It returns whether the post is now liked and the new like count.
func (s *Store) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (liked bool, count int, err error) {
	after := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var p models.Post
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true, "likes.user_id": userID},
		bson.M{"$pull": bson.M{"likes": bson.M{"user_id": userID}}},
		after,
	).Decode(&p)
	if err == nil {
		return false, len(p.Likes), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, fmt.Errorf("unlike post: %w", err)
	}

	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true, "likes.user_id": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": models.Like{UserID: userID, CreatedAt: time.Now().UTC()}}},
		after,
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, ErrNotFound
		}
		return false, 0, fmt.Errorf("like post: %w", err)
	}
	return true, len(p.Likes), nil
}

// AddComment appends a comment by userID and returns it.
func (s *Store) AddComment(ctx context.Context, id, userID primitive.ObjectID, content string) (models.Comment, error) {
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{
			"$push": bson.M{"comments": c},
			"$set":  bson.M{"updated_at": c.CreatedAt},
		},
	)
	if err != nil {
		return models.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Comment{}, ErrNotFound
	}
	return c, nil
}

// SoftDelete hides a post by clearing is_active.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TrendingTags returns the most used tags across active posts.
func (s *Store) TrendingTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	if limit <= 0 {
		limit = TrendingLimit
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{"_id": "$tags", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("trending tags: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.TagCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
