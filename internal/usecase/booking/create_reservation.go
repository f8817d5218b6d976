package booking

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
	"github.com/BruksfildServices01/salon-reserve/internal/timezone"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/ledger"
)

const startLayout = "2006-01-02 15:04"

var (
	ErrCustomerNameRequired = httperr.Validation("customer_name_required", "a customer or a customer name is required")
	ErrInvalidDiscount      = httperr.Validation("invalid_coupon_discount", "coupon discount cannot be negative")
	ErrCustomerProfile      = httperr.Forbidden("customer_profile_required", "the token carries no customer profile")
)

// ======================================================
// INPUT
// ======================================================

type CreateReservationInput struct {
	SalonID uint
	StaffID *uint // nil = any staff

	CustomerID   *uint
	CustomerName string

	Date string // YYYY-MM-DD
	Time string // HH:MM

	Menus   []models.MenuLine
	Options []models.OptionLine

	// UnitPrice zero prices the lines from the catalog.
	UnitPrice      int
	CouponID       *uint
	CouponDiscount int
	UsePoints      int

	Notes         string
	PaymentMethod string

	// Confirm creates the reservation directly as confirmed.
	Confirm bool

	Actor reservation.Actor
}

// ======================================================
// USE CASE
// ======================================================

type CreateReservation struct {
	db      store.Database
	effects Effects
	deps
}

func NewCreateReservation(db store.Database, effects Effects, opts ...Option) *CreateReservation {
	return &CreateReservation{db: db, effects: effects, deps: newDeps(opts)}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateReservation) Execute(
	ctx context.Context,
	in CreateReservationInput,
) (*models.Reservation, error) {

	r, err := uc.execute(ctx, in)
	if err != nil {
		if be, ok := httperr.As(err); ok {
			uc.metrics.BookingRejected(be.Code)
		}
		return nil, err
	}

	uc.metrics.ReservationCreated()
	uc.audit.Dispatch(audit.Event{
		SalonID:  r.SalonID,
		UserID:   userID(in.Actor),
		Action:   "reservation_created",
		Entity:   "reservation",
		EntityID: &r.ID,
		Metadata: map[string]any{
			"staff_id":   r.StaffID,
			"start_time": r.StartTime,
			"status":     r.Status,
			"use_points": r.UsePoints,
		},
	})
	return r, nil
}

func (uc *CreateReservation) execute(
	ctx context.Context,
	in CreateReservationInput,
) (*models.Reservation, error) {

	// --------------------------------------------------
	// Request shape
	// --------------------------------------------------
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Salon, config and start instant
	// --------------------------------------------------
	salon, err := uc.db.GetSalon(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(salon.Timezone)

	start, err := time.ParseInLocation(startLayout, in.Date+" "+in.Time, loc)
	if err != nil {
		return nil, reservation.ErrInvalidStart
	}

	cfg, err := uc.db.GetScheduleConfig(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Lines, price and duration
	// --------------------------------------------------
	items, err := loadItems(ctx, uc.db, in.SalonID, in.Menus, in.Options)
	if err != nil {
		return nil, err
	}
	duration := reservation.Duration(items)
	if duration <= 0 {
		return nil, reservation.ErrDurationMismatch
	}

	unitPrice := in.UnitPrice
	if unitPrice == 0 {
		for _, it := range items {
			unitPrice += it.Price()
		}
	}
	if unitPrice < 0 || unitPrice > reservation.MaxTotalPrice {
		return nil, reservation.ErrInvalidPrice
	}

	// --------------------------------------------------
	// Customer
	// --------------------------------------------------
	customerName := strings.TrimSpace(in.CustomerName)
	if in.CustomerID != nil {
		customer, err := uc.db.GetCustomer(ctx, in.SalonID, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		customerName = customer.Name
	}
	if customerName == "" {
		return nil, ErrCustomerNameRequired
	}

	// --------------------------------------------------
	// Staff choice against the current calendar
	// --------------------------------------------------
	now := uc.now().In(loc)

	list, err := candidates(ctx, uc.db, in.SalonID, in.StaffID, reservation.MenuIDs(in.Menus))
	if err != nil {
		return nil, err
	}
	chosen, err := pickStaff(ctx, uc.db, in.SalonID, cfg, list, duration, start, now)
	if err != nil {
		return nil, err
	}

	draft := models.Reservation{
		SalonID:        in.SalonID,
		CustomerID:     in.CustomerID,
		CustomerName:   customerName,
		StaffID:        chosen.ID,
		StaffName:      chosen.Name,
		Menus:          in.Menus,
		Options:        in.Options,
		UnitPrice:      unitPrice,
		TotalPrice:     reservation.TotalPrice(unitPrice, chosen.ExtraCharge, in.CouponDiscount, in.UsePoints),
		Status:         string(reservation.InitialStatus()),
		StartTime:      start,
		EndTime:        start.Add(duration),
		UsePoints:      in.UsePoints,
		CouponID:       in.CouponID,
		CouponDiscount: in.CouponDiscount,
		Notes:          in.Notes,
		PaymentMethod:  in.PaymentMethod,
	}
	if err := reservation.CheckDuration(&draft, items); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Transaction: lock, re-check, persist, effects
	// --------------------------------------------------
	// WithinTx may retry the closure; each attempt starts from the unsaved
	// draft.
	var (
		r      *models.Reservation
		issued *ledger.IssuedCode
	)
	err = uc.db.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		row := draft
		r, issued = &row, nil

		if err := tx.LockForBooking(ctx, in.SalonID, chosen.ID); err != nil {
			return err
		}

		day, err := loadDay(ctx, tx, in.SalonID, cfg, chosen.ID, start)
		if err != nil {
			return err
		}
		if err := checkStart(day, cfg, duration, start, now); err != nil {
			return reservation.ErrSlotTaken
		}

		if r.UsePoints > 0 {
			if err := checkBalance(ctx, tx, r, now); err != nil {
				return err
			}
		}

		if err := tx.CreateReservation(ctx, r); err != nil {
			return err
		}

		if !in.Confirm {
			return nil
		}

		effects, err := reservation.Transition(r, reservation.StatusConfirmed, now)
		if err != nil {
			return err
		}
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		issued, err = uc.effects.Apply(ctx, tx, r, effects, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.effects.Deliver(issued)

	uc.log.Info("reservation created",
		zap.Uint("reservation_id", r.ID),
		zap.Uint("salon_id", r.SalonID),
		zap.Uint("staff_id", r.StaffID),
		zap.Time("start_time", r.StartTime),
		zap.String("status", r.Status),
	)
	return r, nil
}

// ======================================================
// Helpers
// ======================================================

func validateCreate(in *CreateReservationInput) error {
	if in.Actor.Role == reservation.RoleCustomer {
		if in.Actor.CustomerID == nil {
			return ErrCustomerProfile
		}
		in.CustomerID = in.Actor.CustomerID

		// Customers book at catalog price; pricing overrides are staff input.
		in.UnitPrice = 0
		in.CouponID = nil
		in.CouponDiscount = 0
	}
	if in.Confirm && !in.Actor.IsStaff() {
		return reservation.ErrForbiddenTransition
	}

	if err := reservation.ValidateLines(in.Menus, in.Options); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Notes) > reservation.MaxNotesLength {
		return reservation.ErrNotesTooLong
	}
	if in.UsePoints < 0 || in.UsePoints > reservation.MaxUsePoints {
		return reservation.ErrUsePointsOutOfRange
	}
	if in.UsePoints > 0 && in.CustomerID == nil {
		return reservation.ErrPointsRequireCustomer
	}
	if in.CouponDiscount < 0 {
		return ErrInvalidDiscount
	}
	if !reservation.ValidPaymentMethod(in.PaymentMethod) {
		return reservation.ErrInvalidPaymentMethod
	}
	return nil
}

// pickStaff returns the first candidate for whom start is a slot. When
// every candidate fails and at least one failed only because of bookings,
// the result is ErrSlotTaken.
func pickStaff(
	ctx context.Context,
	repo reservation.Repository,
	salonID uint,
	cfg *models.SalonScheduleConfig,
	list []candidate,
	duration time.Duration,
	start, now time.Time,
) (candidate, error) {

	taken := false
	for _, c := range list {
		day, err := loadDay(ctx, repo, salonID, cfg, c.ID, start)
		if err != nil {
			return candidate{}, err
		}
		err = checkStart(day, cfg, duration, start, now)
		if err == nil {
			return c, nil
		}
		if errors.Is(err, reservation.ErrSlotTaken) {
			taken = true
		}
	}
	if taken {
		return candidate{}, reservation.ErrSlotTaken
	}
	return candidate{}, reservation.ErrStaffUnavailable
}

// checkBalance rejects usePoints above the balance left after the other
// live redemption authorizations.
func checkBalance(ctx context.Context, tx store.Store, r *models.Reservation, now time.Time) error {
	cp, err := tx.GetCustomerPoints(ctx, r.SalonID, *r.CustomerID)
	if err != nil {
		return err
	}
	held, err := tx.SumHeldPoints(ctx, r.SalonID, *r.CustomerID, 0, now)
	if err != nil {
		return err
	}
	if available := cp.TotalPoints - held; available < r.UsePoints {
		return points.InsufficientBalance(available, r.UsePoints)
	}
	return nil
}

func userID(a reservation.Actor) *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}
