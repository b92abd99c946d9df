// Package vectorsearch runs semantic scheme search with Atlas $vectorSearch.
package vectorsearch

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Search defaults.
const (
	DefaultIndex         = "default"
	DefaultNumCandidates = 200
	DefaultLimit         = 5
	EmbeddingPath        = "embedding"
)

// QueryEmbedder embeds a search query.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher queries one collection through the shared client pool.
type Searcher struct {
	coll          *mongo.Collection
	embed         QueryEmbedder
	index         string
	numCandidates int
	limit         int
	log           *zap.Logger
}

// New returns a Searcher over db.collection using the named vector index.
func New(db *mongo.Database, collection, index string, embed QueryEmbedder, logger *zap.Logger) *Searcher {
	if index == "" {
		index = DefaultIndex
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		coll:          db.Collection(collection),
		embed:         embed,
		index:         index,
		numCandidates: DefaultNumCandidates,
		limit:         DefaultLimit,
		log:           logger,
	}
}

// Pipeline builds the aggregation: nearest neighbours by vector, then drop
// the stored vector and expose the similarity score.
func Pipeline(queryVector []float32, index string, numCandidates, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "queryVector", Value: queryVector},
			{Key: "path", Value: EmbeddingPath},
			{Key: "numCandidates", Value: numCandidates},
			{Key: "limit", Value: limit},
			{Key: "index", Value: index},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: EmbeddingPath, Value: 0},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}
}

// Search embeds query and returns the closest documents, best first.
func (s *Searcher) Search(ctx context.Context, query string) ([]bson.M, error) {
	vec, err := s.embed.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	cur, err := s.coll.Aggregate(ctx, Pipeline(vec, s.index, s.numCandidates, s.limit))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cur.Close(ctx)

	results := []bson.M{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("vector search decode: %w", err)
	}
	s.log.Debug("vector search",
		zap.String("collection", s.coll.Name()),
		zap.Int("results", len(results)))
	return results, nil
}
