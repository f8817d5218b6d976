package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/handlers"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/memstore"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/messaging"
	"github.com/BruksfildServices01/salon-reserve/internal/metrics"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/booking"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/ledger"
)

const secret = "routes-secret"

type nopSender struct{}

func (nopSender) Enqueue(messaging.Message) bool { return true }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memstore.New()
	log := zap.NewNop()
	led := ledger.New(db, points.NewCodeGenerator([]byte("k")), nopSender{}, log)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ReservationCreated()

	r := gin.New()
	RegisterRoutes(r, Handlers{
		Reservations: handlers.NewReservationHandler(
			booking.NewResolveSlots(db),
			booking.NewCreateReservation(db, led),
			booking.NewTransitionReservation(db, led),
			booking.NewListStaffDay(db),
			log,
		),
		Points:    handlers.NewPointsHandler(led, log),
		Schedule:  handlers.NewScheduleHandler(booking.NewSchedule(db), log),
		AuditLogs: handlers.NewAuditLogsHandler(nil, log),
		Gatherer:  reg,
		JWTSecret: secret,
	})
	return r
}

func token(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 1, "salonId": 1, "role": role,
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestRoutes(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"slots without token", http.MethodGet, "/api/slots", "", http.StatusUnauthorized},
		{"sweep as staff", http.MethodPost, "/api/points/sweep", token(t, "staff"), http.StatusForbidden},
		{"sweep as owner", http.MethodPost, "/api/points/sweep", token(t, "owner"), http.StatusOK},
		{"audit as customer", http.MethodGet, "/api/audit-logs", token(t, "customer"), http.StatusForbidden},
		{"day as customer", http.MethodGet, "/api/reservations?staff_id=1&date=2026-03-23", token(t, "customer"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestMetricsExposed(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reservations_created_total")
}
