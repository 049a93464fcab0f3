package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/bot"
	"github.com/factlens/social-factcheck-go/internal/config"
	"github.com/factlens/social-factcheck-go/internal/db"
	"github.com/factlens/social-factcheck-go/internal/db/repository"
	"github.com/factlens/social-factcheck-go/internal/events"
	"github.com/factlens/social-factcheck-go/internal/extractor"
	"github.com/factlens/social-factcheck-go/internal/metrics"
	"github.com/factlens/social-factcheck-go/internal/pipeline"
	"github.com/factlens/social-factcheck-go/internal/platform"
	"github.com/factlens/social-factcheck-go/internal/queue"
	"github.com/factlens/social-factcheck-go/internal/verify"
	"github.com/factlens/social-factcheck-go/pkg/logger"
)

const sweepConcurrency = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if cfg.Redis.URL == "" {
		log.Fatal("redis.url is required for the sweep worker")
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close(pool)

	contentRepo := repository.NewContentRepository(pool)
	verifyRepo := repository.NewVerificationRepository(pool)
	watchRepo := repository.NewWatchRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	tiktokClient := extractor.NewTikTokClient(cfg.RapidAPI.Key, cfg.RapidAPI.TikTokHost, logger.Named("tiktok"))
	instagramClient := extractor.NewInstagramClient(cfg.RapidAPI.Key, cfg.RapidAPI.InstagramHost, logger.Named("instagram"))

	extractors := extractor.Set{
		platform.TikTok:    tiktokClient,
		platform.Instagram: instagramClient,
	}

	verifier := verify.NewClient(cfg.FactCheck.APIKey, cfg.FactCheck.Endpoint, cfg.FactCheck.Timeout, logger.Named("verify"))

	var eventPublisher pipeline.EventPublisher
	if cfg.RabbitMQ.Host != "" {
		publisher, err := events.NewPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("Failed to connect to RabbitMQ, events will not be published", zap.Error(err))
		} else {
			eventPublisher = publisher
			defer func() { _ = publisher.Close() }()
		}
	}

	m := metrics.NewMetrics()

	pipelineSvc := pipeline.NewService(
		extractors,
		verifier,
		tiktokClient,
		eventPublisher,
		contentRepo,
		verifyRepo,
		watchRepo,
		userRepo,
		m,
		cfg.Monitor.MaxPerUser,
		logger.Named("pipeline"),
	)

	notifier, err := bot.NewNotifier(cfg.Telegram.BotToken, logger.Named("notifier"))
	if err != nil {
		logger.Log.Fatal("Failed to create Telegram notifier", zap.Error(err))
	}

	sweepHandler := queue.NewSweepHandler(
		tiktokClient,
		pipelineSvc,
		watchRepo,
		notifier,
		m,
		cfg.Monitor.VideosPerSweep,
	)

	server, err := queue.NewServer(cfg.Redis.URL, sweepConcurrency, sweepHandler)
	if err != nil {
		logger.Log.Fatal("Failed to create sweep server", zap.Error(err))
	}

	client, err := queue.NewClient(cfg.Redis.URL)
	if err != nil {
		logger.Log.Fatal("Failed to create queue client", zap.Error(err))
	}
	defer func() { _ = client.Close() }()

	if err := server.Start(); err != nil {
		logger.Log.Fatal("Failed to start sweep server", zap.Error(err))
	}

	go runScheduler(ctx, cfg, watchRepo, client)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	sig := <-shutdown
	logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))

	cancel()
	server.Stop()
	logger.Log.Info("Worker stopped gracefully")
}

// runScheduler periodically enqueues sweeps for every due watch. The first
// pass runs immediately so fresh watches are not stuck for a full interval.
func runScheduler(ctx context.Context, cfg *config.Config, watchRepo repository.WatchRepository, client *queue.Client) {
	ticker := time.NewTicker(cfg.Monitor.Interval)
	defer ticker.Stop()

	enqueueDue(ctx, cfg, watchRepo, client)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueueDue(ctx, cfg, watchRepo, client)
		}
	}
}

func enqueueDue(ctx context.Context, cfg *config.Config, watchRepo repository.WatchRepository, client *queue.Client) {
	olderThan := fmt.Sprintf("%d seconds", int(cfg.Monitor.Interval.Seconds()))

	due, err := watchRepo.ListDue(ctx, olderThan, cfg.Monitor.SweepBatchLimit)
	if err != nil {
		logger.Log.Error("Failed to list due watches", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	logger.Log.Info("Enqueueing due sweeps", zap.Int("count", len(due)))
	if err := client.EnqueueSweepBatch(ctx, due); err != nil {
		logger.Log.Error("Failed to enqueue sweep batch", zap.Error(err))
	}
}
