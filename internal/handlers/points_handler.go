package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/httpresp"
	"github.com/BruksfildServices01/salon-reserve/internal/middleware"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/ledger"
)

// PointsService is implemented by *ledger.Ledger.
type PointsService interface {
	RedeemPoints(ctx context.Context, in ledger.RedeemInput) (*models.PointTransaction, error)
	ReissueCode(ctx context.Context, in ledger.ReissueInput) (*ledger.IssuedCode, error)
	SweepCredits(ctx context.Context) (int, error)
	ExpirePoints(ctx context.Context) (int, error)
}

type PointsHandler struct {
	points PointsService
	log    *zap.Logger
}

func NewPointsHandler(points PointsService, log *zap.Logger) *PointsHandler {
	return &PointsHandler{points: points, log: log}
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *PointsHandler) Redeem(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	id, err := pathID(c, "id")
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.FromError(c, log, errInvalidRequest)
		return
	}

	entry, err := h.points.RedeemPoints(c.Request.Context(), ledger.RedeemInput{
		SalonID:       middleware.SalonID(c),
		ReservationID: id,
		Code:          req.Code,
		Actor:         middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"reservation_id": id,
		"points_used":    -entry.Points,
		"transaction_id": entry.ID,
	})
}

// Reissue never returns the code itself; it goes to the customer's phone.
func (h *PointsHandler) Reissue(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	id, err := pathID(c, "id")
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	issued, err := h.points.ReissueCode(c.Request.Context(), ledger.ReissueInput{
		SalonID:       middleware.SalonID(c),
		ReservationID: id,
		Actor:         middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"reservation_id": id,
		"expires_at":     issued.ExpiresAt,
		"sent":           issued.Phone != "",
	})
}

func (h *PointsHandler) Sweep(c *gin.Context) {
	h.runSweep(c, h.points.SweepCredits)
}

func (h *PointsHandler) Expire(c *gin.Context) {
	h.runSweep(c, h.points.ExpirePoints)
}

func (h *PointsHandler) runSweep(c *gin.Context, sweep func(context.Context) (int, error)) {
	n, err := sweep(c.Request.Context())
	if err != nil {
		httperr.FromError(c, middleware.Logger(c, h.log), err)
		return
	}
	httpresp.OK(c, gin.H{"applied": n})
}
