package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// Repository is the reservation-side persistence contract. Lookups of
// archived rows behave as not found.
type Repository interface {
	// -------- Salon --------
	GetSalon(
		ctx context.Context,
		salonID uint,
	) (*models.Salon, error)

	// GetScheduleConfig returns a zero config when the salon has none.
	GetScheduleConfig(
		ctx context.Context,
		salonID uint,
	) (*models.SalonScheduleConfig, error)

	// -------- Calendar --------
	// FindWeekSchedule returns nil, nil when no row exists. A nil staffID
	// reads the salon row.
	FindWeekSchedule(
		ctx context.Context,
		salonID uint,
		staffID *uint,
		dayOfWeek string,
	) (*models.WeekSchedule, error)

	ListWeekSchedules(
		ctx context.Context,
		salonID uint,
		staffID uint,
	) ([]models.WeekSchedule, error)

	// SaveWeekSchedules upserts rows keyed by (salon, staff, day of week).
	SaveWeekSchedules(
		ctx context.Context,
		rows []models.WeekSchedule,
	) error

	// ListScheduleExceptions lists the exceptions for the exact date. A nil
	// staffID lists salon-wide exceptions.
	ListScheduleExceptions(
		ctx context.Context,
		salonID uint,
		staffID *uint,
		date string,
	) ([]models.ScheduleException, error)

	CreateScheduleException(
		ctx context.Context,
		ex *models.ScheduleException,
	) error

	// -------- Staff --------
	GetStaff(
		ctx context.Context,
		salonID uint,
		staffID uint,
	) (*models.Staff, error)

	ListActiveStaff(
		ctx context.Context,
		salonID uint,
	) ([]models.Staff, error)

	ListStaffConfigs(
		ctx context.Context,
		salonID uint,
	) ([]models.StaffConfig, error)

	ListMenuExclusions(
		ctx context.Context,
		salonID uint,
		menuIDs []uint,
	) ([]models.MenuExclusionStaff, error)

	// -------- Catalog --------
	ListMenus(
		ctx context.Context,
		salonID uint,
		ids []uint,
	) ([]models.Menu, error)

	ListOptions(
		ctx context.Context,
		salonID uint,
		ids []uint,
	) ([]models.SalonOption, error)

	GetCustomer(
		ctx context.Context,
		salonID uint,
		customerID uint,
	) (*models.Customer, error)

	// -------- Reservation (availability) --------
	// ListStaffReservations returns the staff's reservations that occupy
	// their time range and overlap [from, to), ordered by start.
	ListStaffReservations(
		ctx context.Context,
		staffID uint,
		from time.Time,
		to time.Time,
	) ([]models.Reservation, error)

	ListSalonReservations(
		ctx context.Context,
		salonID uint,
		from time.Time,
		to time.Time,
	) ([]models.Reservation, error)

	// ListStaffDay returns every non-archived reservation of the staff
	// starting in [from, to), whatever its status.
	ListStaffDay(
		ctx context.Context,
		salonID uint,
		staffID uint,
		from time.Time,
		to time.Time,
	) ([]models.Reservation, error)

	// -------- Reservation (write) --------
	// LockForBooking serializes bookings for the staff member (and the salon,
	// for the seat check). Only meaningful inside a transaction.
	LockForBooking(
		ctx context.Context,
		salonID uint,
		staffID uint,
	) error

	CreateReservation(
		ctx context.Context,
		r *models.Reservation,
	) error

	GetReservation(
		ctx context.Context,
		salonID uint,
		reservationID uint,
	) (*models.Reservation, error)

	// GetReservationForUpdate locks the row for the rest of the transaction.
	GetReservationForUpdate(
		ctx context.Context,
		salonID uint,
		reservationID uint,
	) (*models.Reservation, error)

	UpdateReservation(
		ctx context.Context,
		r *models.Reservation,
	) error
}
