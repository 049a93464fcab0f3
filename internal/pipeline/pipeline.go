// Package pipeline wires classification, extraction, verification, storage
// and event publishing into the operations the bot and the sweep worker run.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/db"
	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/db/repository"
	"github.com/factlens/social-factcheck-go/internal/events"
	"github.com/factlens/social-factcheck-go/internal/extractor"
	"github.com/factlens/social-factcheck-go/internal/metrics"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

// Verifier submits content for fact-checking.
type Verifier interface {
	CheckContent(ctx context.Context, record *models.ContentRecord) (*models.Verification, error)
	Configured() bool
}

// AccountDirectory resolves watchable account profiles.
type AccountDirectory interface {
	UserInfo(ctx context.Context, username string) (*extractor.TikTokUserInfo, error)
}

// EventPublisher pushes completed verifications to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.VerificationEvent) error
}

// CheckResult carries the outcome of one check. Content is always set once
// extraction and persistence succeed, even when verification later fails.
type CheckResult struct {
	Content      *models.ContentRecord
	Verification *models.Verification
}

// Service exposes every operation the bot commands and sweep jobs need.
type Service interface {
	// CheckURL runs the full pipeline for one URL: classify, extract,
	// persist, verify, persist the verdict, publish the event.
	CheckURL(ctx context.Context, url string, telegramID int64) (*CheckResult, error)

	// ExtractContent classifies the URL and extracts its content without
	// verifying. Lets callers report progress between the two stages.
	ExtractContent(ctx context.Context, url string, telegramID int64) (*models.ContentRecord, error)

	// VerifyContent verifies an already-extracted record and persists both
	// the content and the verdict. Used by the sweep worker.
	VerifyContent(ctx context.Context, record *models.ContentRecord) (*CheckResult, error)

	// KnownContent reports whether a native content id has been seen.
	KnownContent(ctx context.Context, p platform.Platform, contentID string) (bool, error)

	// AddWatch validates the account upstream and adds it to the owner's
	// watch-list.
	AddWatch(ctx context.Context, username string, ownerID int64) (*extractor.TikTokUserInfo, *models.WatchedAccount, error)

	// RemoveWatch deactivates an active watch.
	RemoveWatch(ctx context.Context, username string) error

	// ListWatches returns the owner's active watches.
	ListWatches(ctx context.Context, ownerID int64) ([]*models.WatchedAccount, error)

	// RegisterUser records or refreshes a bot user.
	RegisterUser(ctx context.Context, user *models.BotUser) error

	// RecordRequest bumps the user's request counter.
	RecordRequest(ctx context.Context, telegramID int64) error

	// UserStats aggregates the per-user statistics.
	UserStats(ctx context.Context, telegramID int64) (*models.UserStats, error)

	// GlobalStats aggregates service-wide counters.
	GlobalStats(ctx context.Context) (*models.GlobalStats, error)
}

type service struct {
	extractors  extractor.Set
	verifier    Verifier
	directory   AccountDirectory
	publisher   EventPublisher
	contentRepo repository.ContentRepository
	verifyRepo  repository.VerificationRepository
	watchRepo   repository.WatchRepository
	userRepo    repository.UserRepository
	metrics     *metrics.Metrics
	maxWatches  int
	logger      *zap.Logger
}

// NewService creates the pipeline service. The publisher may be nil when no
// broker is configured; events are then skipped.
func NewService(
	extractors extractor.Set,
	verifier Verifier,
	directory AccountDirectory,
	publisher EventPublisher,
	contentRepo repository.ContentRepository,
	verifyRepo repository.VerificationRepository,
	watchRepo repository.WatchRepository,
	userRepo repository.UserRepository,
	m *metrics.Metrics,
	maxWatches int,
	logger *zap.Logger,
) Service {
	return &service{
		extractors:  extractors,
		verifier:    verifier,
		directory:   directory,
		publisher:   publisher,
		contentRepo: contentRepo,
		verifyRepo:  verifyRepo,
		watchRepo:   watchRepo,
		userRepo:    userRepo,
		metrics:     m,
		maxWatches:  maxWatches,
		logger:      logger,
	}
}

func (s *service) CheckURL(ctx context.Context, url string, telegramID int64) (*CheckResult, error) {
	start := time.Now()

	record, err := s.ExtractContent(ctx, url, telegramID)
	if err != nil {
		return nil, err
	}
	p := record.Platform

	result, err := s.VerifyContent(ctx, record)
	s.metrics.CheckDuration.WithLabelValues(string(p)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ChecksTotal.WithLabelValues(string(p), "error").Inc()
		return result, err
	}

	s.metrics.ChecksTotal.WithLabelValues(string(p), "ok").Inc()
	return result, nil
}

func (s *service) ExtractContent(ctx context.Context, url string, telegramID int64) (*models.ContentRecord, error) {
	p, err := platform.Classify(url)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.RecordRequest(ctx, telegramID); err != nil {
		// Counter loss is not worth failing the check over.
		s.logger.Warn("failed to record user request", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	ext, ok := s.extractors[p]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for platform %s", p)
	}

	extractStart := time.Now()
	record, err := ext.Extract(ctx, url)
	if err != nil {
		s.metrics.ExtractionTotal.WithLabelValues(string(p), "error").Inc()
		s.metrics.ChecksTotal.WithLabelValues(string(p), "error").Inc()
		return nil, fmt.Errorf("extract %s content: %w", p, err)
	}
	s.metrics.ExtractionTotal.WithLabelValues(string(p), "ok").Inc()
	s.metrics.ExtractionDuration.WithLabelValues(string(p)).Observe(time.Since(extractStart).Seconds())

	return record, nil
}

func (s *service) VerifyContent(ctx context.Context, record *models.ContentRecord) (*CheckResult, error) {
	// Persist the content first so an immutable record survives even when
	// verification fails or times out.
	if err := s.contentRepo.CreateContent(ctx, record); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	result := &CheckResult{Content: record}

	verifyStart := time.Now()
	verification, err := s.verifier.CheckContent(ctx, record)
	s.metrics.VerificationDuration.WithLabelValues(string(record.Platform)).Observe(time.Since(verifyStart).Seconds())
	if err != nil {
		s.metrics.VerificationTotal.WithLabelValues("none", "error").Inc()
		return result, fmt.Errorf("verify content: %w", err)
	}

	verification.ContentID = record.ID
	if err := s.verifyRepo.CreateVerification(ctx, verification); err != nil {
		return result, fmt.Errorf("store verification: %w", err)
	}
	s.metrics.VerificationTotal.WithLabelValues(string(verification.Verdict), "ok").Inc()
	result.Verification = verification

	s.publishEvent(ctx, record, verification)

	return result, nil
}

// publishEvent emits the completed verification. Publish failures are logged
// and counted but never fail the check; the result is already stored.
func (s *service) publishEvent(ctx context.Context, record *models.ContentRecord, verification *models.Verification) {
	if s.publisher == nil {
		return
	}

	event := events.NewVerificationEvent(record, verification)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventPublishTotal.WithLabelValues(events.EventVerificationCompleted, "error").Inc()
		s.logger.Error("failed to publish verification event",
			zap.String("content_id", record.ContentID),
			zap.Error(err),
		)
		return
	}
	s.metrics.EventPublishTotal.WithLabelValues(events.EventVerificationCompleted, "ok").Inc()
}

func (s *service) KnownContent(ctx context.Context, p platform.Platform, contentID string) (bool, error) {
	_, err := s.contentRepo.GetByNativeID(ctx, p, contentID)
	if err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) AddWatch(ctx context.Context, username string, ownerID int64) (*extractor.TikTokUserInfo, *models.WatchedAccount, error) {
	username = strings.TrimPrefix(username, "@")

	count, err := s.watchRepo.CountActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("count watches: %w", err)
	}
	if count >= int64(s.maxWatches) {
		return nil, nil, ErrWatchLimitExceeded
	}

	info, err := s.directory.UserInfo(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("look up account @%s: %w", username, err)
	}

	watch := models.NewWatchedAccount(username, ownerID)
	if err := s.watchRepo.CreateWatch(ctx, watch); err != nil {
		if db.IsDuplicateKey(err) {
			return info, nil, ErrAlreadyWatched
		}
		return nil, nil, fmt.Errorf("create watch: %w", err)
	}

	s.logger.Info("watch added",
		zap.String("username", username),
		zap.Int64("owner", ownerID),
	)

	return info, watch, nil
}

func (s *service) RemoveWatch(ctx context.Context, username string) error {
	username = strings.TrimPrefix(username, "@")

	if err := s.watchRepo.Deactivate(ctx, username); err != nil {
		if db.IsNotFound(err) {
			return ErrNotWatched
		}
		return fmt.Errorf("deactivate watch: %w", err)
	}

	s.logger.Info("watch removed", zap.String("username", username))
	return nil
}

func (s *service) ListWatches(ctx context.Context, ownerID int64) ([]*models.WatchedAccount, error) {
	return s.watchRepo.ListActiveByOwner(ctx, ownerID)
}

func (s *service) RegisterUser(ctx context.Context, user *models.BotUser) error {
	return s.userRepo.UpsertUser(ctx, user)
}

func (s *service) RecordRequest(ctx context.Context, telegramID int64) error {
	return s.userRepo.RecordRequest(ctx, telegramID)
}

func (s *service) UserStats(ctx context.Context, telegramID int64) (*models.UserStats, error) {
	stats := &models.UserStats{}

	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil && !db.IsNotFound(err) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user != nil {
		stats.RequestCount = user.RequestCount
		joined := user.JoinedAt
		stats.JoinedAt = &joined
	}

	watchCount, err := s.watchRepo.CountActiveByOwner(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("count watches: %w", err)
	}
	stats.WatchCount = watchCount

	verifiedCount, err := s.verifyRepo.CountVerifiedForOwner(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("count verified content: %w", err)
	}
	stats.VerifiedCount = verifiedCount

	return stats, nil
}

func (s *service) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	contents, err := s.contentRepo.CountContents(ctx)
	if err != nil {
		return nil, fmt.Errorf("count contents: %w", err)
	}

	verifications, err := s.verifyRepo.CountVerifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("count verifications: %w", err)
	}

	watches, err := s.watchRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count active watches: %w", err)
	}

	users, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	return &models.GlobalStats{
		TotalContents:      contents,
		TotalVerifications: verifications,
		ActiveWatches:      watches,
		TotalUsers:         users,
	}, nil
}
