package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/httpresp"
	"github.com/BruksfildServices01/salon-reserve/internal/middleware"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type ReservationHandler struct {
	slots      *booking.ResolveSlots
	create     *booking.CreateReservation
	transition *booking.TransitionReservation
	staffDay   *booking.ListStaffDay
	log        *zap.Logger
}

func NewReservationHandler(
	slots *booking.ResolveSlots,
	create *booking.CreateReservation,
	transition *booking.TransitionReservation,
	staffDay *booking.ListStaffDay,
	log *zap.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		slots:      slots,
		create:     create,
		transition: transition,
		staffDay:   staffDay,
		log:        log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateReservationRequest struct {
	StaffID *uint `json:"staff_id"` // null = any

	CustomerID   *uint  `json:"customer_id"`
	CustomerName string `json:"customer_name"`

	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`

	Menus   []models.MenuLine   `json:"menus" binding:"required"`
	Options []models.OptionLine `json:"options"`

	UnitPrice      int    `json:"unit_price"`
	CouponID       *uint  `json:"coupon_id"`
	CouponDiscount int    `json:"coupon_discount"`
	UsePoints      int    `json:"use_points"`
	Notes          string `json:"notes"`
	PaymentMethod  string `json:"payment_method"`
	Confirm        bool   `json:"confirm"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// SLOTS
// ======================================================

func (h *ReservationHandler) Slots(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	staffID, err := staffParam(c.Query("staff_id"))
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}
	menus, err := menuLines(c.Query("menu_ids"))
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}
	options, err := optionLines(c.Query("option_ids"))
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	out, err := h.slots.Execute(c.Request.Context(), booking.ResolveSlotsInput{
		SalonID: middleware.SalonID(c),
		StaffID: staffID,
		Date:    c.Query("date"),
		Menus:   menus,
		Options: options,
	})
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}
	httpresp.OK(c, out)
}

// ======================================================
// CREATE
// ======================================================

func (h *ReservationHandler) Create(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.FromError(c, log, errInvalidRequest)
		return
	}

	r, err := h.create.Execute(c.Request.Context(), booking.CreateReservationInput{
		SalonID:        middleware.SalonID(c),
		StaffID:        req.StaffID,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		Date:           req.Date,
		Time:           req.Time,
		Menus:          req.Menus,
		Options:        req.Options,
		UnitPrice:      req.UnitPrice,
		CouponID:       req.CouponID,
		CouponDiscount: req.CouponDiscount,
		UsePoints:      req.UsePoints,
		Notes:          req.Notes,
		PaymentMethod:  req.PaymentMethod,
		Confirm:        req.Confirm,
		Actor:          middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// ======================================================
// TRANSITION
// ======================================================

func (h *ReservationHandler) Transition(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	id, err := pathID(c, "id")
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.FromError(c, log, errInvalidRequest)
		return
	}

	r, err := h.transition.Execute(c.Request.Context(), booking.TransitionInput{
		SalonID:       middleware.SalonID(c),
		ReservationID: id,
		Status:        req.Status,
		Actor:         middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"id":     r.ID,
		"status": r.Status,
	})
}

// ======================================================
// STAFF DAY
// ======================================================

func (h *ReservationHandler) ListDay(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	staffID, ok := parseID(c.Query("staff_id"))
	if !ok {
		httperr.FromError(c, log, errInvalidStaffID)
		return
	}

	list, err := h.staffDay.Execute(c.Request.Context(), middleware.SalonID(c), staffID, c.Query("date"))
	if err != nil {
		httperr.FromError(c, log, err)
		return
	}
	httpresp.List(c, list)
}
