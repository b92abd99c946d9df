// internal/app/system/workers/embedbackfill.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/jansethu/mysarkar/internal/app/system/embedding"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SchemeSource is the part of the schemes store the backfill needs.
type SchemeSource interface {
	ForEachMissingEmbedding(ctx context.Context, fn func(models.Scheme) error) error
	SetEmbedding(ctx context.Context, id primitive.ObjectID, vec []float32) error
}

// SchemeEmbedder turns scheme text into a vector, returning an empty
// vector when the backend is unusable.
type SchemeEmbedder interface {
	EmbedScheme(ctx context.Context, f embedding.Fields) []float32
}

// BackfillResult counts what one backfill pass did.
type BackfillResult struct {
	Filled int
	Failed int
}

// BackfillEmbeddings embeds every scheme saved without a vector. Schemes
// the backend cannot embed are counted as failed and left for the next pass.
func BackfillEmbeddings(ctx context.Context, src SchemeSource, emb SchemeEmbedder) (BackfillResult, error) {
	var res BackfillResult
	err := src.ForEachMissingEmbedding(ctx, func(s models.Scheme) error {
		vec := emb.EmbedScheme(ctx, embedding.SchemeFields(s))
		if len(vec) == 0 {
			res.Failed++
			return nil
		}
		if err := src.SetEmbedding(ctx, s.ID, vec); err != nil {
			return err
		}
		res.Filled++
		return nil
	})
	return res, err
}

// EmbeddingBackfill is a background worker that periodically fills in
// embeddings for schemes created while the embedding backend was down.
type EmbeddingBackfill struct {
	src      SchemeSource
	emb      SchemeEmbedder
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEmbeddingBackfill creates a backfill worker that runs every interval.
// Each pass is bounded by timeout.
func NewEmbeddingBackfill(src SchemeSource, emb SchemeEmbedder, logger *zap.Logger, interval, timeout time.Duration) *EmbeddingBackfill {
	return &EmbeddingBackfill{
		src:      src,
		emb:      emb,
		log:      logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Start begins the background loop.
func (w *EmbeddingBackfill) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
	w.log.Info("embedding backfill worker started", zap.Duration("interval", w.interval))
}

// Stop cancels any pass in flight and waits for the loop to exit.
func (w *EmbeddingBackfill) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.log.Info("embedding backfill worker stopped")
}

func (w *EmbeddingBackfill) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *EmbeddingBackfill) pass(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := BackfillEmbeddings(ctx, w.src, w.emb)
	if err != nil && ctx.Err() == nil {
		w.log.Error("embedding backfill failed", zap.Error(err))
	}
	if res.Filled > 0 || res.Failed > 0 {
		w.log.Info("embedding backfill pass",
			zap.Int("filled", res.Filled),
			zap.Int("failed", res.Failed))
	}
}
