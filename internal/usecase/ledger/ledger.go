// Package ledger applies the loyalty side effects of reservation
// transitions and runs the redemption and sweep operations.
package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/lock"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/messaging"
	"github.com/BruksfildServices01/salon-reserve/internal/metrics"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
)

const (
	defaultBatchSize = 100
	maxCodeAttempts  = 8
	sweepLockTTL     = 10 * time.Minute
)

var (
	ErrSweepInProgress = httperr.Conflict("sweep_in_progress", "another sweep is running, try again later")
	ErrStaffOnly       = httperr.Forbidden("staff_only", "only salon staff can perform this action")
)

// Sender queues an outbound message; messaging.Outbox implements it.
type Sender interface {
	Enqueue(msg messaging.Message) bool
}

// IssuedCode is a freshly issued redemption code, to be delivered once the
// issuing transaction has committed.
type IssuedCode struct {
	SalonID       uint
	ReservationID uint
	Code          string
	ExpiresAt     time.Time
	Phone         string
}

type Ledger struct {
	db      store.Database
	codes   *points.CodeGenerator
	sender  Sender
	locker  lock.Locker
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
	batch   int
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithBatchSize(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.batch = n
		}
	}
}

func WithLocker(lk lock.Locker) Option {
	return func(l *Ledger) { l.locker = lk }
}

func WithAudit(d *audit.Dispatcher) Option {
	return func(l *Ledger) { l.audit = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func New(
	db store.Database,
	codes *points.CodeGenerator,
	sender Sender,
	log *zap.Logger,
	opts ...Option,
) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{
		db:     db,
		codes:  codes,
		sender: sender,
		locker: lock.NewLocal(),
		log:    log,
		now:    time.Now,
		batch:  defaultBatchSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Deliver queues the code message. It never fails the caller.
func (l *Ledger) Deliver(issued *IssuedCode) {
	if issued == nil || l.sender == nil {
		return
	}
	if issued.Phone == "" {
		l.log.Warn("redemption code issued for customer without phone",
			zap.Uint("reservation_id", issued.ReservationID),
		)
		return
	}
	l.sender.Enqueue(messaging.Message{
		Kind:          messaging.KindRedemptionCode,
		To:            issued.Phone,
		Body:          codeMessage(issued),
		SalonID:       issued.SalonID,
		ReservationID: issued.ReservationID,
	})
}

func codeMessage(issued *IssuedCode) string {
	return fmt.Sprintf(
		"Your points redemption code is %s. Show it at checkout before %s.",
		issued.Code,
		issued.ExpiresAt.Format("02/01 15:04"),
	)
}

// post appends one ledger entry and moves the cached balance with it.
func post(
	ctx context.Context,
	tx store.Store,
	salonID, customerID uint,
	reservationID *uint,
	delta int,
	kind string,
	at time.Time,
) (*models.PointTransaction, error) {

	cp, err := tx.GetCustomerPoints(ctx, salonID, customerID)
	if err != nil {
		return nil, err
	}

	entry := &models.PointTransaction{
		SalonID:         salonID,
		ReservationID:   reservationID,
		CustomerID:      customerID,
		Points:          delta,
		TransactionType: kind,
		TransactionDate: at,
	}
	if err := tx.AppendTransaction(ctx, entry); err != nil {
		return nil, err
	}

	points.Apply(cp, delta, at)
	if err := tx.SaveCustomerPoints(ctx, cp); err != nil {
		return nil, err
	}
	return entry, nil
}
