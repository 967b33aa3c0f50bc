package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
)

// EventPublisher delivers a CloudEvent to a topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.ZoneCloudEvent) error
}

// PublisherConfig tunes the relay loop
type PublisherConfig struct {
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultPublisherConfig polls every second, 100 messages at a time
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		PollInterval:   time.Second,
		BatchSize:      100,
		MaxAttempts:    DefaultMaxAttempts,
		RetryBaseDelay: DefaultRetryBaseDelay,
		RetryMaxDelay:  DefaultRetryMaxDelay,
	}
}

// Publisher relays due outbox messages to Kafka. Failed messages are retried
// with exponential backoff until MaxAttempts, then abandoned.
type Publisher struct {
	repo     Repository
	producer EventPublisher
	logger   *logging.Logger
	metrics  *metrics.Metrics
	config   PublisherConfig
	now      func() time.Time

	mu   sync.Mutex
	stop context.CancelFunc
	done chan struct{}
}

// NewPublisher builds a Publisher; m may be nil and zero config fields take defaults
func NewPublisher(repo Repository, producer EventPublisher, logger *logging.Logger, m *metrics.Metrics, config *PublisherConfig) *Publisher {
	cfg := *DefaultPublisherConfig()
	if config != nil {
		if config.PollInterval > 0 {
			cfg.PollInterval = config.PollInterval
		}
		if config.BatchSize > 0 {
			cfg.BatchSize = config.BatchSize
		}
		if config.MaxAttempts > 0 {
			cfg.MaxAttempts = config.MaxAttempts
		}
		if config.RetryBaseDelay > 0 {
			cfg.RetryBaseDelay = config.RetryBaseDelay
		}
		if config.RetryMaxDelay > 0 {
			cfg.RetryMaxDelay = config.RetryMaxDelay
		}
	}

	return &Publisher{
		repo:     repo,
		producer: producer,
		logger:   logger.WithComponent("outbox-publisher"),
		metrics:  m,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the polling loop. It stops on Stop or when ctx ends.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return fmt.Errorf("outbox publisher already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.stop = cancel
	p.done = make(chan struct{})
	go p.loop(loopCtx, p.done)

	p.logger.Info("Outbox publisher started", "interval", p.config.PollInterval, "batchSize", p.config.BatchSize)
	return nil
}

// Stop cancels the loop and waits for the in-flight batch
func (p *Publisher) Stop() error {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return fmt.Errorf("outbox publisher not running")
	}
	stop()
	<-done
	p.logger.Info("Outbox publisher stopped")
	return nil
}

func (p *Publisher) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

func (p *Publisher) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Drain(ctx)
		}
	}
}

// Drain publishes one batch of due messages and reports how many were
// delivered and how many failed.
func (p *Publisher) Drain(ctx context.Context) (published, failed int) {
	due, err := p.repo.Due(ctx, p.now(), p.config.BatchSize)
	if err != nil {
		p.logger.WithError(err).ErrorContext(ctx, "Failed to load due outbox messages")
		return 0, 0
	}
	if p.metrics != nil {
		p.metrics.SetOutboxPending(len(due))
	}

	for _, msg := range due {
		if ctx.Err() != nil {
			break
		}
		if err := p.deliver(ctx, msg); err != nil {
			failed++
			p.fail(ctx, msg, err)
			continue
		}
		published++
		if err := p.repo.MarkPublished(ctx, msg.ID, p.now()); err != nil {
			p.logger.WithError(err).ErrorContext(ctx, "Failed to mark outbox message published", "messageId", msg.ID)
		}
	}
	return published, failed
}

func (p *Publisher) deliver(ctx context.Context, msg *Message) error {
	start := time.Now()
	event, err := msg.Event()
	if err == nil {
		err = p.producer.PublishEvent(ctx, msg.Topic, event)
	}
	if p.metrics != nil {
		p.metrics.RecordOutboxPublish(msg.EventType, err == nil, time.Since(start))
	}
	return err
}

func (p *Publisher) fail(ctx context.Context, msg *Message, cause error) {
	attempts := msg.Attempts + 1
	var retryAt time.Time
	if attempts < p.config.MaxAttempts {
		retryAt = p.now().Add(retryDelay(attempts, p.config.RetryBaseDelay, p.config.RetryMaxDelay))
	}

	log := p.logger.WithError(cause)
	if retryAt.IsZero() {
		log.ErrorContext(ctx, "Abandoning outbox message",
			"messageId", msg.ID, "eventType", msg.EventType, "attempts", attempts)
	} else {
		log.WarnContext(ctx, "Outbox message delivery failed",
			"messageId", msg.ID, "eventType", msg.EventType, "attempts", attempts, "retryAt", retryAt)
	}

	if p.metrics != nil {
		p.metrics.RecordOutboxRetry(msg.EventType)
	}
	if err := p.repo.MarkFailed(ctx, msg.ID, cause.Error(), retryAt); err != nil {
		p.logger.WithError(err).ErrorContext(ctx, "Failed to record outbox failure", "messageId", msg.ID)
	}
}
