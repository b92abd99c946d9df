// Command embedbackfill computes embeddings for curated schemes that were
// saved without one (e.g. while the embedding backend was down). It reads
// the same configuration as the API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jansethu/mysarkar/internal/app/bootstrap"
	schemestore "github.com/jansethu/mysarkar/internal/app/store/schemes"
	"github.com/jansethu/mysarkar/internal/app/system/embedding"
	"github.com/jansethu/mysarkar/internal/app/system/workers"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Error("embedding backfill failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coreCfg, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		return err
	}
	if err := bootstrap.ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return err
	}

	deps, err := bootstrap.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = bootstrap.Shutdown(context.Background(), coreCfg, appCfg, deps, logger) }()

	embedder := embedding.NewEmbedder(embedding.Config{
		Provider:       appCfg.EmbedProvider,
		APIKey:         appCfg.GoogleAPIKey,
		OllamaEndpoint: appCfg.OllamaEndpoint,
		Model:          appCfg.EmbedModel,
		Dimensions:     appCfg.EmbedDimensions,
	}, logger)

	res, err := workers.BackfillEmbeddings(ctx, schemestore.New(deps.MongoDatabase), embedder)
	logger.Info("embedding backfill finished", zap.Int("filled", res.Filled), zap.Int("failed", res.Failed))
	return err
}
