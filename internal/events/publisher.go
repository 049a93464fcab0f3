// Package events publishes verification results to RabbitMQ for downstream
// consumers such as dashboards and archival jobs.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/factlens/social-factcheck-go/internal/config"
	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/pkg/logger"
)

// EventVerificationCompleted is emitted after a verification row is stored.
const EventVerificationCompleted = "verification.completed"

// confirmTimeout bounds the wait for a broker acknowledgment.
const confirmTimeout = 5 * time.Second

// VerificationEvent is the wire payload published for each completed check.
type VerificationEvent struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Platform   string          `json:"platform"`
	ContentID  string          `json:"content_id"`
	URL        string          `json:"url"`
	Author     string          `json:"author"`
	Verdict    models.Verdict  `json:"verdict"`
	Score      int             `json:"score"`
	Flags      []models.Flag   `json:"flags,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewVerificationEvent builds the event for one content/verification pair.
func NewVerificationEvent(content *models.ContentRecord, verification *models.Verification) *VerificationEvent {
	return &VerificationEvent{
		ID:         uuid.New(),
		Type:       EventVerificationCompleted,
		Platform:   string(content.Platform),
		ContentID:  content.ContentID,
		URL:        content.URL,
		Author:     content.Author,
		Verdict:    verification.Verdict,
		Score:      verification.Score,
		Flags:      verification.Flags,
		OccurredAt: verification.VerifiedAt,
	}
}

// Publisher pushes verification events to a durable topic exchange with
// publisher confirms enabled.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	mu      sync.RWMutex
}

// NewPublisher connects to RabbitMQ and declares the exchange, queue and
// binding used for verification events.
func NewPublisher(cfg *config.RabbitMQConfig) (*Publisher, error) {
	p := &Publisher{
		config: cfg,
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Publisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		p.config.User, p.config.Password, p.config.Host, p.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		p.config.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		amqp.Table{
			"x-message-ttl": 86400000, // 24 hours
			"x-max-length":  100000,   // max 100k messages
		},
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		p.config.Queue,      // queue name
		p.config.RoutingKey, // routing key
		p.config.Exchange,   // exchange
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	p.conn = conn
	p.channel = ch

	logger.Log.Info("Connected to RabbitMQ",
		zap.String("exchange", p.config.Exchange),
		zap.String("queue", p.config.Queue),
	)

	return nil
}

// Publish sends one event and waits for the broker acknowledgment.
func (p *Publisher) Publish(ctx context.Context, event *VerificationEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Deferred confirmations track each publish individually. A per-call
	// NotifyPublish listener would stay registered after this returns and
	// eventually block the channel's confirm dispatch.
	confirmation, err := p.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		p.config.Exchange,   // exchange
		p.config.RoutingKey, // routing key
		true,                // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    event.ID.String(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	acked, err := confirmation.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("timeout waiting for publish confirmation: %w", err)
	}
	if !acked {
		return fmt.Errorf("message was not acknowledged by broker")
	}

	logger.Log.Debug("Published verification event",
		zap.String("eventId", event.ID.String()),
		zap.String("routingKey", p.config.RoutingKey),
	)

	return nil
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %v", errs)
	}

	logger.Log.Info("RabbitMQ publisher closed")
	return nil
}

// IsHealthy reports whether the connection is usable.
func (p *Publisher) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil
}
