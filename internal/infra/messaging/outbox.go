package messaging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/metrics"
)

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
	drainTimeout       = 5 * time.Second
)

// Outbox hands messages to a Notifier from a background loop, retrying
// failed sends a bounded number of times.
type Outbox struct {
	notifier    Notifier
	queue       chan Message
	maxAttempts int
	backoff     time.Duration
	log         *zap.Logger
	metrics     *metrics.Metrics
}

type OutboxOption func(*Outbox)

func WithRetry(maxAttempts int, backoff time.Duration) OutboxOption {
	return func(o *Outbox) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		o.backoff = backoff
	}
}

func WithQueueSize(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.queue = make(chan Message, n)
		}
	}
}

func NewOutbox(n Notifier, log *zap.Logger, m *metrics.Metrics, opts ...OutboxOption) *Outbox {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Outbox{
		notifier:    n,
		queue:       make(chan Message, defaultQueueSize),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		log:         log,
		metrics:     m,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enqueue never blocks; it reports false when the queue is full.
func (o *Outbox) Enqueue(msg Message) bool {
	select {
	case o.queue <- msg:
		return true
	default:
		o.metrics.Notification("dropped")
		o.log.Warn("outbox full, dropping message",
			zap.String("kind", msg.Kind),
			zap.Uint("reservation_id", msg.ReservationID),
		)
		return false
	}
}

// Run delivers messages until ctx ends, then makes one attempt for each
// message still queued.
func (o *Outbox) Run(ctx context.Context) error {
	for {
		select {
		case msg := <-o.queue:
			o.deliver(ctx, msg, o.maxAttempts)
		case <-ctx.Done():
			o.drain()
			return nil
		}
	}
}

func (o *Outbox) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case msg := <-o.queue:
			o.deliver(ctx, msg, 1)
		default:
			return
		}
	}
}

func (o *Outbox) deliver(ctx context.Context, msg Message, attempts int) {
	var err error
retry:
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = o.notifier.Send(ctx, msg); err == nil {
			o.metrics.Notification("sent")
			return
		}
		if errors.Is(err, ErrNoRecipient) || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			break retry
		case <-time.After(o.backoff * time.Duration(attempt)):
		}
	}

	o.metrics.Notification("failed")
	o.log.Error("notification failed",
		zap.String("kind", msg.Kind),
		zap.Uint("salon_id", msg.SalonID),
		zap.Uint("reservation_id", msg.ReservationID),
		zap.Error(err),
	)
}
