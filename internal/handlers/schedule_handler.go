package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/httpresp"
	"github.com/BruksfildServices01/salon-reserve/internal/middleware"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/booking"
)

type ScheduleHandler struct {
	schedule *booking.Schedule
	log      *zap.Logger
}

func NewScheduleHandler(schedule *booking.Schedule, log *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, log: log}
}

type WeekDayConfig struct {
	DayOfWeek string `json:"day_of_week" binding:"required"`
	IsOpen    bool   `json:"is_open"`
	StartHour string `json:"start_hour"`
	EndHour   string `json:"end_hour"`
}

type WeekScheduleUpdateRequest struct {
	Days []WeekDayConfig `json:"days" binding:"required,min=1,max=7,dive"`
}

type ExceptionRequest struct {
	Date      string `json:"date" binding:"required"`
	Type      string `json:"type"`
	IsAllDay  bool   `json:"is_all_day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes" binding:"max=255"`
}

func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	staffID, err := pathID(c, "id")
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	rows, err := h.schedule.ListWeekSchedule(c.Request.Context(), middleware.SalonID(c), staffID)
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}
	httpresp.List(c, rows)
}

func (h *ScheduleHandler) UpdateWeek(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	staffID, err := pathID(c, "id")
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	var req WeekScheduleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.FromError(c, log, errInvalidRequest)
		return
	}

	days := make([]booking.WeekDayInput, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, booking.WeekDayInput{
			DayOfWeek: d.DayOfWeek,
			IsOpen:    d.IsOpen,
			StartHour: d.StartHour,
			EndHour:   d.EndHour,
		})
	}

	rows, err := h.schedule.UpsertWeekSchedule(
		c.Request.Context(),
		middleware.SalonID(c),
		staffID,
		days,
		middleware.Actor(c),
	)
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}
	httpresp.List(c, rows)
}

func (h *ScheduleHandler) AddException(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	staffID, err := pathID(c, "id")
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	var req ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.FromError(c, log, errInvalidRequest)
		return
	}

	ex, err := h.schedule.AddScheduleException(c.Request.Context(), booking.ExceptionInput{
		SalonID:   middleware.SalonID(c),
		StaffID:   &staffID,
		Date:      req.Date,
		Type:      req.Type,
		IsAllDay:  req.IsAllDay,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
		Actor:     middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ex)
}
