package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
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
	"github.com/factlens/social-factcheck-go/internal/handler"
	"github.com/factlens/social-factcheck-go/internal/metrics"
	"github.com/factlens/social-factcheck-go/internal/pipeline"
	"github.com/factlens/social-factcheck-go/internal/platform"
	"github.com/factlens/social-factcheck-go/internal/verify"
	"github.com/factlens/social-factcheck-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
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

	if cfg.YouTube.APIKey != "" {
		youtubeClient, err := extractor.NewYouTubeClient(ctx, cfg.YouTube.APIKey, logger.Named("youtube"))
		if err != nil {
			logger.Log.Warn("Failed to initialize YouTube client, YouTube checks disabled", zap.Error(err))
		} else {
			extractors[platform.YouTube] = youtubeClient
		}
	} else {
		logger.Log.Info("YouTube API key not configured, YouTube checks disabled")
	}

	verifier := verify.NewClient(cfg.FactCheck.APIKey, cfg.FactCheck.Endpoint, cfg.FactCheck.Timeout, logger.Named("verify"))
	if !verifier.Configured() {
		logger.Log.Warn("Fact-check API key not configured, running in demo mode")
	}

	var publisher *events.Publisher
	var eventPublisher pipeline.EventPublisher
	if cfg.RabbitMQ.Host != "" {
		publisher, err = events.NewPublisher(&cfg.RabbitMQ)
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

	if stats, err := pipelineSvc.GlobalStats(ctx); err == nil {
		logger.Log.Info("Startup stats",
			zap.Int64("contents", stats.TotalContents),
			zap.Int64("verifications", stats.TotalVerifications),
			zap.Int64("active_watches", stats.ActiveWatches),
			zap.Int64("users", stats.TotalUsers),
		)
	}

	tgBot, err := bot.NewBot(cfg.Telegram.BotToken, pipelineSvc, cfg.Monitor.MaxPerUser, cfg.Monitor.Interval, logger.Named("bot"))
	if err != nil {
		logger.Log.Fatal("Failed to create Telegram bot", zap.Error(err))
	}

	healthHandler := handler.NewHealthHandler(pool, publisher)
	adminHandler := handler.NewAdminHandler(pipelineSvc, contentRepo, verifyRepo)
	router := handler.NewRouter(healthHandler, adminHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Admin API starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	botErrors := make(chan error, 1)
	go func() {
		botErrors <- tgBot.Start(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("Admin API error", zap.Error(err))
	case err := <-botErrors:
		if err != nil {
			logger.Log.Fatal("Bot error", zap.Error(err))
		}
	case sig := <-shutdown:
		logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Graceful shutdown failed", zap.Error(err))
			_ = server.Close()
		}

		logger.Log.Info("Stopped gracefully")
	}
}
