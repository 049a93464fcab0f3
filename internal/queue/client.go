package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/factlens/social-factcheck-go/internal/db/models"
)

// Client wraps the asynq client for enqueueing sweep tasks.
type Client struct {
	asynqClient *asynq.Client
}

// NewClient creates a new queue client.
func NewClient(redisURL string) (*Client, error) {
	redisOpt, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Client{
		asynqClient: asynq.NewClient(redisOpt),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.asynqClient.Close()
}

// EnqueueAccountSweep enqueues a sweep task for one watched account. The
// unique option collapses duplicate sweeps while one is still in flight.
func (c *Client) EnqueueAccountSweep(ctx context.Context, account *models.WatchedAccount) error {
	payload, err := NewSweepAccountTask(account.ID, account.Username, account.OwnerUserID, map[string]any{
		"source":      "scheduler",
		"enqueued_at": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to create task payload: %w", err)
	}

	payloadBytes, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeSweepAccount, payloadBytes)

	info, err := c.asynqClient.EnqueueContext(ctx, task,
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("sweeps"),
		asynq.Unique(10*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Printf("[Queue] Enqueued account sweep: username=%s, task_id=%s", account.Username, info.ID)
	return nil
}

// EnqueueSweepBatch enqueues sweeps for a batch of due accounts. Individual
// failures are logged and the rest of the batch still goes out.
func (c *Client) EnqueueSweepBatch(ctx context.Context, accounts []*models.WatchedAccount) error {
	for _, account := range accounts {
		if err := c.EnqueueAccountSweep(ctx, account); err != nil {
			log.Printf("[Queue] Failed to enqueue sweep for @%s: %v", account.Username, err)
		}
	}

	log.Printf("[Queue] Enqueued %d account sweeps", len(accounts))
	return nil
}
