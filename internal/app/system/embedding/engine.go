// Package embedding turns scheme text into dense vectors for semantic search.
// Supports two backends: Google GenAI (cloud) and Ollama (local).
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
)

// Engine generates vector embeddings for text.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// QueryEngine is implemented by engines that embed search queries
// differently from stored documents.
type QueryEngine interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Task types understood by GenAI embedding models.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Providers.
const (
	ProviderGenAI  = "genai"
	ProviderOllama = "ollama"
)

// Config selects and configures an Engine.
type Config struct {
	Provider string

	// GenAI
	APIKey string

	// Ollama
	OllamaEndpoint string

	Model      string
	Dimensions int
}

// ErrEmptyText is returned when there is nothing to embed.
var ErrEmptyText = errors.New("embedding: empty text")

// NewEngine builds the Engine named by cfg.Provider.
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Provider {
	case ProviderGenAI, "":
		return NewGenAIEngine(ctx, cfg.APIKey, cfg.Model, cfg.Dimensions)
	case ProviderOllama:
		return NewOllamaEngine(cfg.OllamaEndpoint, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'genai' or 'ollama')", cfg.Provider)
	}
}

// Normalize scales v to unit length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// Builder constructs an Engine; swapped out in tests.
type Builder func(ctx context.Context) (Engine, error)

// Embedder is the process-wide embedding handle. The engine is built on
// first use and reused afterwards; a failed build is not remembered, so the
// next call tries again.
type Embedder struct {
	mu     sync.Mutex
	engine Engine
	build  Builder
	log    *zap.Logger
}

// NewEmbedder returns an Embedder that builds its engine from cfg lazily.
func NewEmbedder(cfg Config, logger *zap.Logger) *Embedder {
	return NewEmbedderWith(func(ctx context.Context) (Engine, error) {
		return NewEngine(ctx, cfg)
	}, logger)
}

// NewEmbedderWith returns an Embedder using a custom builder.
func NewEmbedderWith(build Builder, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{build: build, log: logger}
}

func (e *Embedder) get(ctx context.Context) (Engine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.engine != nil {
		return e.engine, nil
	}
	eng, err := e.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("init embedding engine: %w", err)
	}
	e.log.Info("embedding engine ready", zap.String("engine", eng.Name()))
	e.engine = eng
	return eng, nil
}

// Embed returns the unit-length document embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, false)
}

// EmbedQuery returns the unit-length embedding of a search query. Engines
// without a separate query mode fall back to Embed.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, true)
}

func (e *Embedder) embed(ctx context.Context, text string, query bool) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	eng, err := e.get(ctx)
	if err != nil {
		return nil, err
	}
	var v []float32
	if qe, ok := eng.(QueryEngine); ok && query {
		v, err = qe.EmbedQuery(ctx, text)
	} else {
		v, err = eng.Embed(ctx, text)
	}
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("%s returned an empty vector", eng.Name())
	}
	return Normalize(v), nil
}

// EmbedScheme embeds the scheme text. Failures are logged and yield an
// empty, non-nil vector so the document can still be saved.
func (e *Embedder) EmbedScheme(ctx context.Context, f Fields) []float32 {
	v, err := e.Embed(ctx, BuildText(f))
	if err != nil {
		e.log.Warn("scheme embedding failed; saving without vector",
			zap.String("scheme", f.Name), zap.Error(err))
		return []float32{}
	}
	return v
}
