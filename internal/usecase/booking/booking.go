// Package booking holds the reservation usecases: slot resolution,
// creation, status transitions and the calendar write paths.
package booking

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/metrics"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/ledger"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate   = httperr.Validation("invalid_date", "date must be YYYY-MM-DD")
	ErrInvalidStatus = httperr.Validation("invalid_status", "unknown reservation status")
)

// Effects runs ledger side effects; *ledger.Ledger implements it.
type Effects interface {
	Apply(ctx context.Context, tx store.Store, r *models.Reservation, effects []reservation.Effect, now time.Time) (*ledger.IssuedCode, error)
	Deliver(issued *ledger.IssuedCode)
}

// deps is shared by every usecase of the package.
type deps struct {
	now     func() time.Time
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
	log     *zap.Logger
}

type Option func(*deps)

func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

func WithAudit(a *audit.Dispatcher) Option {
	return func(d *deps) { d.audit = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *deps) { d.log = l }
}

func newDeps(opts []Option) deps {
	d := deps{now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// parseDate reads YYYY-MM-DD as local midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// dayName is the WeekSchedule.DayOfWeek key of t.
func dayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// ParseDayOfWeek accepts the lowercase English day names used as
// WeekSchedule keys.
func ParseDayOfWeek(s string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, true
		}
	}
	return 0, false
}
