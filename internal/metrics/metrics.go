// Package metrics holds the Prometheus collectors of the service. Every
// method is safe on a nil *Metrics so callers need no guards.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salon_reserve"

type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	reservationsCreated prometheus.Counter
	bookingConflicts    *prometheus.CounterVec
	transitions         *prometheus.CounterVec

	pointsCredited prometheus.Counter
	pointsRedeemed prometheus.Counter
	pointsExpired  prometheus.Counter
	redemptions    *prometheus.CounterVec
	sweepTasks     *prometheus.CounterVec
	sweepDuration  *prometheus.HistogramVec
	notifications  *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		reservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Reservations committed.",
		}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejections_total",
			Help:      "Booking attempts rejected, by error code.",
		}, []string{"code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Committed status transitions.",
		}, []string{"from", "to"}),

		pointsCredited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_credited_total",
			Help:      "Points posted as earned.",
		}),
		pointsRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_redeemed_total",
			Help:      "Points posted as used.",
		}),
		pointsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_expired_total",
			Help:      "Points posted as expired.",
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Redemption attempts by result.",
		}, []string{"result"}),
		sweepTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credit_sweep_tasks_total",
			Help:      "Credit tasks handled by the sweep, by result.",
		}, []string{"result"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of ledger sweeps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sweep"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outbound notifications by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.reservationsCreated,
		m.bookingConflicts,
		m.transitions,
		m.pointsCredited,
		m.pointsRedeemed,
		m.pointsExpired,
		m.redemptions,
		m.sweepTasks,
		m.sweepDuration,
		m.notifications,
	)
	return m
}

func (m *Metrics) ObserveHTTP(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ReservationCreated() {
	if m == nil {
		return
	}
	m.reservationsCreated.Inc()
}

func (m *Metrics) BookingRejected(code string) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(code).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) PointsCredited(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsCredited.Add(float64(n))
}

func (m *Metrics) PointsRedeemed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsRedeemed.Add(float64(n))
}

func (m *Metrics) PointsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsExpired.Add(float64(n))
}

func (m *Metrics) Redemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

func (m *Metrics) SweepTask(result string) {
	if m == nil {
		return
	}
	m.sweepTasks.WithLabelValues(result).Inc()
}

func (m *Metrics) SweepDone(sweep string, d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.WithLabelValues(sweep).Observe(d.Seconds())
}

func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
