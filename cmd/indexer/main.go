package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chemi-labs/chemtutor/internal/bootstrap"
	"github.com/chemi-labs/chemtutor/internal/config"
	"github.com/chemi-labs/chemtutor/internal/observability/logging"
	"github.com/chemi-labs/chemtutor/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("indexer", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if app.ReindexUC == nil {
		log.Fatal("indexer requires SEARCH_MODE=hybrid")
	}

	indexerMetrics := metrics.NewIndexerMetrics("indexer")
	indexerMetrics.SetCorpusSize(app.Corpus.Len())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.IndexerMetricsPort,
		Handler: indexerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	runReindex := func(runCtx context.Context, reason string) error {
		started := time.Now()
		err := app.ReindexUC.Reindex(runCtx)
		indexerMetrics.FinishReindex("indexer", time.Since(started), err)
		if err != nil {
			logger.Error("reindex_failed", "reason", reason, "error", err)
			return err
		}
		logger.Info("reindex_done", "reason", reason)
		return nil
	}

	if err := runReindex(ctx, "startup"); err != nil {
		log.Fatalf("initial reindex error: %v", err)
	}

	if app.Queue == nil {
		logger.Info("queue_not_configured", "hint", "set NATS_URL to react to reindex events")
		return
	}

	logger.Info("indexer_subscribed", "subject", cfg.NATSReindexSubject)
	err = app.Queue.SubscribeCorpusReindex(ctx, func(handlerCtx context.Context, reason string) error {
		reindexCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()
		return runReindex(reindexCtx, reason)
	})
	if err != nil {
		log.Fatalf("indexer subscribe error: %v", err)
	}
}
