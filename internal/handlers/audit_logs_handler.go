package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/middleware"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// AuditLister is implemented by *audit.Logger.
type AuditLister interface {
	List(ctx context.Context, f audit.Filter) ([]models.AuditLog, int64, error)
}

type AuditLogsHandler struct {
	logs AuditLister
	log  *zap.Logger
}

func NewAuditLogsHandler(logs AuditLister, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs, log: log}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	f := audit.Filter{
		SalonID: middleware.SalonID(c),
		Action:  c.Query("action"),
		Entity:  c.Query("entity"),
		Page:    page,
		Limit:   limit,
	}

	// --------------------------------------------------
	// Optional date range, "to" inclusive
	// --------------------------------------------------
	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			f.From = from
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			f.To = to.AddDate(0, 0, 1)
		}
	}

	logs, total, err := h.logs.List(c.Request.Context(), f)
	if err != nil {
		httperr.FromError(c, middleware.Logger(c, h.log), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
