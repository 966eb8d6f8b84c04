// Package main wires together the pagesift service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/api"
	"github.com/pagesift/pagesift/internal/clock/system"
	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/dispatcher"
	"github.com/pagesift/pagesift/internal/extract"
	collyfetcher "github.com/pagesift/pagesift/internal/fetcher/colly"
	"github.com/pagesift/pagesift/internal/id/uuid"
	"github.com/pagesift/pagesift/internal/logging"
	"github.com/pagesift/pagesift/internal/metrics"
	queueMemory "github.com/pagesift/pagesift/internal/queue/memory"
	queuePubsub "github.com/pagesift/pagesift/internal/queue/pubsub"
	"github.com/pagesift/pagesift/internal/scrape"
	storageMemory "github.com/pagesift/pagesift/internal/storage/memory"
	storagePostgres "github.com/pagesift/pagesift/internal/storage/postgres"
	"github.com/pagesift/pagesift/internal/summary"
	"github.com/pagesift/pagesift/internal/worker"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	jobStore, storeCleanup, err := buildJobStore(ctx, cfg)
	if err != nil {
		logger.Fatal("job store init failed", zap.Error(err))
	}
	defer storeCleanup()

	queue, queueCleanup, err := buildQueue(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("queue init failed", zap.Error(err))
	}
	defer queueCleanup()

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	summarizer := summary.New(
		summary.NewAnthropicClient(cfg.Summary.Model, cfg.Summary.MaxTokens),
		summary.Config{
			APIKey:        cfg.Summary.APIKey,
			RemoteTimeout: cfg.SummaryTimeout(),
			MaxSentences:  cfg.Summary.MaxSentences,
		},
		logger.Named("summary"),
	)
	orchestrator := scrape.NewOrchestrator(fetcher, extract.New(), summarizer, logger.Named("orchestrator"))

	var workers []*worker.Worker
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		workers = append(workers, worker.New(
			queue,
			jobStore,
			orchestrator,
			logger.Named("worker").With(zap.Int("index", i)),
		))
	}
	dispatch := dispatcher.New(queue, workers)

	apiServer := api.NewServer(jobStore, dispatch, orchestrator, uuid.New(), system.New(), cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("dispatcher started", zap.Int("workers", cfg.Worker.Concurrency))
		dispatch.Run(ctx)
	}()

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func buildJobStore(ctx context.Context, cfg config.Config) (scrape.JobStore, func(), error) {
	switch cfg.Store.Provider {
	case "postgres":
		pool, err := storagePostgres.Connect(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return storagePostgres.NewJobStore(pool), pool.Close, nil
	default:
		return storageMemory.NewJobStore(), func() {}, nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config, logger *zap.Logger) (scrape.Queue, func(), error) {
	switch cfg.Queue.Provider {
	case "pubsub":
		q, err := queuePubsub.New(ctx, queuePubsub.Config{
			ProjectID:      cfg.Queue.ProjectID,
			TopicID:        cfg.Queue.TopicID,
			SubscriptionID: cfg.Queue.SubscriptionID,
			BufferSize:     cfg.Worker.QueueDepth,
		}, logger.Named("queue"))
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := q.Close(); err != nil {
				logger.Warn("queue close failed", zap.Error(err))
			}
		}
		return q, cleanup, nil
	default:
		q := queueMemory.NewQueue(cfg.Worker.QueueDepth)
		return q, q.Close, nil
	}
}
