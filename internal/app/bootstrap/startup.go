// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/jansethu/mysarkar/internal/app/store/audit"
	schemestore "github.com/jansethu/mysarkar/internal/app/store/schemes"
	"github.com/jansethu/mysarkar/internal/app/system/auditlog"
	"github.com/jansethu/mysarkar/internal/app/system/auth"
	"github.com/jansethu/mysarkar/internal/app/system/eligibility"
	"github.com/jansethu/mysarkar/internal/app/system/embedding"
	"github.com/jansethu/mysarkar/internal/app/system/quizcache"
	"github.com/jansethu/mysarkar/internal/app/system/ratelimit"
	"github.com/jansethu/mysarkar/internal/app/system/timeouts"
	"github.com/jansethu/mysarkar/internal/app/system/vectorsearch"
	"github.com/jansethu/mysarkar/internal/app/system/workers"
	"go.uber.org/zap"
)

// services are the process-wide handles shared by feature handlers.
type services struct {
	Tokens   *auth.Manager
	Embedder *embedding.Embedder
	Search   *vectorsearch.Searcher
	Quiz     *eligibility.Service
	Cache    *quizcache.Cache
	Limiter  *ratelimit.Limiter
	Audit    *auditlog.Logger
	Backfill *workers.EmbeddingBackfill // nil when disabled
}

// shared is set by Startup and read by BuildHandler and Shutdown.
var shared *services

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{LLM: appCfg.LLMTimeout})
	shared = newServices(ctx, appCfg, deps, logger)

	if appCfg.EmbedBackfillInterval > 0 {
		shared.Backfill = workers.NewEmbeddingBackfill(schemestore.New(deps.MongoDatabase), shared.Embedder,
			logger, appCfg.EmbedBackfillInterval, 5*time.Minute)
		shared.Backfill.Start()
	}
	return nil
}

func newServices(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	embedder := embedding.NewEmbedder(embedding.Config{
		Provider:       appCfg.EmbedProvider,
		APIKey:         appCfg.GoogleAPIKey,
		OllamaEndpoint: appCfg.OllamaEndpoint,
		Model:          appCfg.EmbedModel,
		Dimensions:     appCfg.EmbedDimensions,
	}, logger)

	// A nil Generator selects the offline quiz and evaluation fallbacks.
	var llm eligibility.Generator
	if appCfg.GoogleAPIKey != "" {
		m, err := eligibility.NewGenAIModel(ctx, appCfg.GoogleAPIKey, appCfg.LLMModel)
		if err != nil {
			logger.Warn("LLM unavailable; using quiz fallbacks", zap.Error(err))
		} else {
			llm = m
		}
	}

	var cache *quizcache.Cache
	if deps.Redis != nil {
		cache = quizcache.New(deps.Redis, appCfg.QuizCacheTTL, logger)
	}

	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	return &services{
		Tokens:   auth.NewManager(appCfg.JWTSecret, appCfg.JWTTTL, logger),
		Embedder: embedder,
		Search:   vectorsearch.New(deps.MongoDatabase, appCfg.VectorCollection, appCfg.VectorIndex, embedder, logger),
		Quiz:     eligibility.NewService(llm, logger),
		Cache:    cache,
		Limiter:  ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow),
		Audit:    auditLog,
	}
}
