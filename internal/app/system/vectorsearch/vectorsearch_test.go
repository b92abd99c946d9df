package vectorsearch

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type failingEmbedder struct {
	queries []string
}

func (f *failingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	return nil, errors.New("embedder offline")
}

func TestPipeline_Shape(t *testing.T) {
	p := Pipeline([]float32{0.1, 0.2}, "default", 200, 5)
	if len(p) != 2 {
		t.Fatalf("stages = %d, want 2", len(p))
	}

	vs, ok := p[0][0].Value.(bson.D)
	if p[0][0].Key != "$vectorSearch" || !ok {
		t.Fatalf("first stage = %v", p[0])
	}
	got := vs.Map()
	if got["path"] != "embedding" || got["numCandidates"] != 200 || got["limit"] != 5 || got["index"] != "default" {
		t.Errorf("vectorSearch options = %v", got)
	}

	proj, ok := p[1][0].Value.(bson.D)
	if p[1][0].Key != "$project" || !ok {
		t.Fatalf("second stage = %v", p[1])
	}
	pm := proj.Map()
	if pm["embedding"] != 0 {
		t.Errorf("embedding should be excluded, got %v", pm["embedding"])
	}
	if meta, ok := pm["score"].(bson.D); !ok || meta.Map()["$meta"] != "vectorSearchScore" {
		t.Errorf("score projection = %v", pm["score"])
	}
}

func TestSearch_EmbedError(t *testing.T) {
	emb := &failingEmbedder{}
	s := &Searcher{coll: (*mongo.Collection)(nil), embed: emb}
	if _, err := s.Search(context.Background(), "housing"); err == nil {
		t.Fatal("expected embed failure to surface")
	}
	if len(emb.queries) != 1 || emb.queries[0] != "housing" {
		t.Errorf("query embeddings = %v, want [housing]", emb.queries)
	}
}
