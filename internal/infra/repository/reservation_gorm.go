package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// --------------------------------------------------
// Salon
// --------------------------------------------------

func (s *GormStore) GetSalon(
	ctx context.Context,
	salonID uint,
) (*models.Salon, error) {

	var salon models.Salon
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_archive = false", salonID).
		First(&salon).Error; err != nil {
		return nil, notFound(err, reservation.ErrSalonNotFound)
	}
	return &salon, nil
}

func (s *GormStore) GetScheduleConfig(
	ctx context.Context,
	salonID uint,
) (*models.SalonScheduleConfig, error) {

	var cfg []models.SalonScheduleConfig
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND is_archive = false", salonID).
		Limit(1).
		Find(&cfg).Error; err != nil {
		return nil, err
	}
	if len(cfg) == 0 {
		return &models.SalonScheduleConfig{SalonID: salonID}, nil
	}
	return &cfg[0], nil
}

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (s *GormStore) GetStaff(
	ctx context.Context,
	salonID uint,
	staffID uint,
) (*models.Staff, error) {

	var st models.Staff
	if err := s.db.WithContext(ctx).
		Where("id = ? AND salon_id = ? AND is_archive = false", staffID, salonID).
		First(&st).Error; err != nil {
		return nil, notFound(err, reservation.ErrStaffNotFound)
	}
	return &st, nil
}

func (s *GormStore) ListActiveStaff(
	ctx context.Context,
	salonID uint,
) ([]models.Staff, error) {

	var list []models.Staff
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND is_active = true AND is_archive = false", salonID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) ListStaffConfigs(
	ctx context.Context,
	salonID uint,
) ([]models.StaffConfig, error) {

	var list []models.StaffConfig
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND is_archive = false", salonID).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) ListMenuExclusions(
	ctx context.Context,
	salonID uint,
	menuIDs []uint,
) ([]models.MenuExclusionStaff, error) {

	var list []models.MenuExclusionStaff
	if len(menuIDs) == 0 {
		return list, nil
	}
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND menu_id IN ? AND is_archive = false", salonID, menuIDs).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (s *GormStore) ListMenus(
	ctx context.Context,
	salonID uint,
	ids []uint,
) ([]models.Menu, error) {

	var list []models.Menu
	if len(ids) == 0 {
		return list, nil
	}
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND id IN ? AND is_active = true AND is_archive = false", salonID, ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) ListOptions(
	ctx context.Context,
	salonID uint,
	ids []uint,
) ([]models.SalonOption, error) {

	var list []models.SalonOption
	if len(ids) == 0 {
		return list, nil
	}
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND id IN ? AND is_active = true AND is_archive = false", salonID, ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) GetCustomer(
	ctx context.Context,
	salonID uint,
	customerID uint,
) (*models.Customer, error) {

	var c models.Customer
	if err := s.db.WithContext(ctx).
		Where("id = ? AND salon_id = ? AND is_archive = false", customerID, salonID).
		First(&c).Error; err != nil {
		return nil, notFound(err, reservation.ErrCustomerNotFound)
	}
	return &c, nil
}

// --------------------------------------------------
// Reservation (availability)
// --------------------------------------------------

func (s *GormStore) ListStaffReservations(
	ctx context.Context,
	staffID uint,
	from time.Time,
	to time.Time,
) ([]models.Reservation, error) {

	var list []models.Reservation
	if err := s.db.WithContext(ctx).
		Where(
			"staff_id = ? AND status IN ? AND is_archive = false AND start_time < ? AND end_time > ?",
			staffID, reservation.OccupyingStatuses(), to, from,
		).
		Order("start_time ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) ListSalonReservations(
	ctx context.Context,
	salonID uint,
	from time.Time,
	to time.Time,
) ([]models.Reservation, error) {

	var list []models.Reservation
	if err := s.db.WithContext(ctx).
		Select("id", "staff_id", "start_time", "end_time", "status").
		Where(
			"salon_id = ? AND status IN ? AND is_archive = false AND start_time < ? AND end_time > ?",
			salonID, reservation.OccupyingStatuses(), to, from,
		).
		Order("start_time ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *GormStore) ListStaffDay(
	ctx context.Context,
	salonID uint,
	staffID uint,
	from time.Time,
	to time.Time,
) ([]models.Reservation, error) {

	var list []models.Reservation
	if err := s.db.WithContext(ctx).
		Where(
			"salon_id = ? AND staff_id = ? AND is_archive = false AND start_time >= ? AND start_time < ?",
			salonID, staffID, from, to,
		).
		Order("start_time ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// --------------------------------------------------
// Reservation (write)
// --------------------------------------------------

// LockForBooking takes the salon row, then the staff row, FOR UPDATE. The
// fixed order keeps concurrent bookings from deadlocking each other.
func (s *GormStore) LockForBooking(
	ctx context.Context,
	salonID uint,
	staffID uint,
) error {

	lock := clause.Locking{Strength: "UPDATE"}

	var salon models.Salon
	if err := s.db.WithContext(ctx).
		Clauses(lock).
		Select("id").
		Where("id = ?", salonID).
		First(&salon).Error; err != nil {
		return notFound(err, reservation.ErrSalonNotFound)
	}

	var st models.Staff
	if err := s.db.WithContext(ctx).
		Clauses(lock).
		Select("id").
		Where("id = ? AND salon_id = ?", staffID, salonID).
		First(&st).Error; err != nil {
		return notFound(err, reservation.ErrStaffNotFound)
	}
	return nil
}

func (s *GormStore) CreateReservation(
	ctx context.Context,
	r *models.Reservation,
) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) GetReservation(
	ctx context.Context,
	salonID uint,
	reservationID uint,
) (*models.Reservation, error) {

	var r models.Reservation
	if err := s.db.WithContext(ctx).
		Where("id = ? AND salon_id = ? AND is_archive = false", reservationID, salonID).
		First(&r).Error; err != nil {
		return nil, notFound(err, reservation.ErrReservationNotFound)
	}
	return &r, nil
}

func (s *GormStore) GetReservationForUpdate(
	ctx context.Context,
	salonID uint,
	reservationID uint,
) (*models.Reservation, error) {

	var r models.Reservation
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND salon_id = ? AND is_archive = false", reservationID, salonID).
		First(&r).Error; err != nil {
		return nil, notFound(err, reservation.ErrReservationNotFound)
	}
	return &r, nil
}

func (s *GormStore) UpdateReservation(
	ctx context.Context,
	r *models.Reservation,
) error {
	return s.db.WithContext(ctx).Save(r).Error
}
