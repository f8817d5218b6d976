package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/handlers"
	"github.com/BruksfildServices01/salon-reserve/internal/middleware"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Reservations *handlers.ReservationHandler
	Points       *handlers.PointsHandler
	Schedule     *handlers.ScheduleHandler
	AuditLogs    *handlers.AuditLogsHandler

	RedeemLimiter *middleware.RateLimiter
	Gatherer      prometheus.Gatherer
	JWTSecret     string
}

func RegisterRoutes(r *gin.Engine, h Handlers) {

	// ======================================================
	// PROBES
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}

	staffRoles := middleware.RequireRoles(reservation.RoleOwner, reservation.RoleManager, reservation.RoleStaff)
	managers := middleware.RequireRoles(reservation.RoleOwner, reservation.RoleManager)
	owner := middleware.RequireRoles(reservation.RoleOwner)

	// ======================================================
	// API (JSON, token scoped to one salon)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.JWTSecret))
	{
		// ------------------------------
		// Reservations
		// ------------------------------
		api.GET("/slots", h.Reservations.Slots)
		api.POST("/reservations", h.Reservations.Create)
		api.PATCH("/reservations/:id/status", h.Reservations.Transition)
		api.GET("/reservations", staffRoles, h.Reservations.ListDay)

		// ------------------------------
		// Points
		// ------------------------------
		redeem := []gin.HandlerFunc{staffRoles}
		if h.RedeemLimiter != nil {
			redeem = append(redeem, h.RedeemLimiter.Middleware())
		}
		redeem = append(redeem, h.Points.Redeem)
		api.POST("/reservations/:id/redeem", redeem...)
		api.POST("/reservations/:id/redemption-code", staffRoles, h.Points.Reissue)

		api.POST("/points/sweep", owner, h.Points.Sweep)
		api.POST("/points/expire", owner, h.Points.Expire)

		// ------------------------------
		// Calendar
		// ------------------------------
		api.GET("/staff/:id/week-schedule", staffRoles, h.Schedule.GetWeek)
		api.PUT("/staff/:id/week-schedule", managers, h.Schedule.UpdateWeek)
		api.POST("/staff/:id/exceptions", managers, h.Schedule.AddException)

		// ------------------------------
		// Audit
		// ------------------------------
		api.GET("/audit-logs", managers, h.AuditLogs.List)
	}
}
