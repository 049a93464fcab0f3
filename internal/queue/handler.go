package queue

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/db/repository"
	"github.com/factlens/social-factcheck-go/internal/format"
	"github.com/factlens/social-factcheck-go/internal/metrics"
	"github.com/factlens/social-factcheck-go/internal/pipeline"
)

// VideoLister fetches a creator's recent uploads, newest first.
type VideoLister interface {
	RecentVideos(ctx context.Context, username string, maxCount int) ([]*models.ContentRecord, error)
}

// Notifier delivers a message to a chat. The bot satisfies this; the worker
// never talks to Telegram directly.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// SweepHandler processes account sweep tasks: it lists a watched account's
// recent uploads, runs the pipeline for every unseen one and notifies the
// watch owner.
type SweepHandler struct {
	lister         VideoLister
	pipeline       pipeline.Service
	watchRepo      repository.WatchRepository
	notifier       Notifier
	metrics        *metrics.Metrics
	videosPerSweep int
}

// NewSweepHandler creates a new sweep task handler.
func NewSweepHandler(
	lister VideoLister,
	pipelineSvc pipeline.Service,
	watchRepo repository.WatchRepository,
	notifier Notifier,
	m *metrics.Metrics,
	videosPerSweep int,
) *SweepHandler {
	if videosPerSweep <= 0 || videosPerSweep > 30 {
		videosPerSweep = 10
	}

	return &SweepHandler{
		lister:         lister,
		pipeline:       pipelineSvc,
		watchRepo:      watchRepo,
		notifier:       notifier,
		metrics:        m,
		videosPerSweep: videosPerSweep,
	}
}

// ProcessTask implements asynq.HandlerFunc.
func (h *SweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := UnmarshalSweepAccountPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.Printf("[Sweep] Processing account sweep: username=%s", payload.Username)

	videos, err := h.lister.RecentVideos(ctx, payload.Username, h.videosPerSweep)
	if err != nil {
		h.metrics.SweepsTotal.WithLabelValues("error").Inc()
		h.logSweep(ctx, payload.AccountID, "error", 0, 0, map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to list recent videos for @%s: %w", payload.Username, err)
	}

	newestID := ""
	if len(videos) > 0 {
		newestID = videos[0].ContentID
	}

	newVideos := 0
	for _, video := range videos {
		known, err := h.pipeline.KnownContent(ctx, video.Platform, video.ContentID)
		if err != nil {
			log.Printf("[Sweep] Warning: could not check content %s: %v", video.ContentID, err)
			continue
		}
		if known {
			continue
		}

		newVideos++
		result, err := h.pipeline.VerifyContent(ctx, video)
		if err != nil {
			// The content row is already stored; a failed verification
			// should not sink the whole sweep.
			log.Printf("[Sweep] Verification failed for %s: %v", video.ContentID, err)
			continue
		}

		if h.notifier != nil {
			message := format.Notification(payload.Username, result.Content, result.Verification)
			if err := h.notifier.Notify(payload.OwnerUserID, message); err != nil {
				log.Printf("[Sweep] Warning: failed to notify owner %d: %v", payload.OwnerUserID, err)
			}
		}
	}

	if err := h.watchRepo.MarkChecked(ctx, payload.Username, newestID); err != nil {
		log.Printf("[Sweep] Warning: failed to mark watch checked: %v", err)
	}

	h.metrics.SweepsTotal.WithLabelValues("ok").Inc()
	h.metrics.SweepNewVideos.Add(float64(newVideos))
	h.logSweep(ctx, payload.AccountID, "sweep", len(videos), newVideos, map[string]any{
		"newest_content_id": newestID,
	})

	log.Printf("[Sweep] Completed sweep: username=%s, found=%d, new=%d", payload.Username, len(videos), newVideos)
	return nil
}

func (h *SweepHandler) logSweep(ctx context.Context, accountID int64, action string, found, fresh int, details map[string]any) {
	entry := &models.SweepLog{
		AccountID:   accountID,
		Action:      action,
		VideosFound: found,
		NewVideos:   fresh,
		Details:     details,
	}
	if err := h.watchRepo.CreateSweepLog(ctx, entry); err != nil {
		log.Printf("[Sweep] Warning: failed to record sweep log: %v", err)
	}
}

// HandleSweepAccountTask returns an asynq.HandlerFunc for account sweeps.
func (h *SweepHandler) HandleSweepAccountTask() asynq.HandlerFunc {
	return h.ProcessTask
}

// Server wraps the asynq server that processes sweep tasks.
type Server struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
}

// NewServer creates a new task processing server.
func NewServer(redisURL string, concurrency int, handler *SweepHandler) (*Server, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"sweeps": 10,
			},
			StrictPriority: false,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Server] Task failed: type=%s, error=%v", task.Type(), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSweepAccount, handler.HandleSweepAccountTask())

	return &Server{
		asynqServer: srv,
		mux:         mux,
	}, nil
}

// Start starts the server.
func (s *Server) Start() error {
	log.Println("[Server] Starting sweep processing server...")
	return s.asynqServer.Start(s.mux)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	log.Println("[Server] Shutting down sweep processing server...")
	s.asynqServer.Shutdown()
}
