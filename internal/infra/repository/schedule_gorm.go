package repository

import (
	"context"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"gorm.io/gorm"
)

// ownerScope matches rows of one staff member, or the salon row when
// staffID is nil.
func ownerScope(salonID uint, staffID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("salon_id = ? AND is_archive = false", salonID)
		if staffID == nil {
			return db.Where("staff_id IS NULL")
		}
		return db.Where("staff_id = ?", *staffID)
	}
}

func (s *GormStore) FindWeekSchedule(
	ctx context.Context,
	salonID uint,
	staffID *uint,
	dayOfWeek string,
) (*models.WeekSchedule, error) {

	var rows []models.WeekSchedule
	if err := s.db.WithContext(ctx).
		Scopes(ownerScope(salonID, staffID)).
		Where("day_of_week = ?", dayOfWeek).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *GormStore) ListWeekSchedules(
	ctx context.Context,
	salonID uint,
	staffID uint,
) ([]models.WeekSchedule, error) {

	var rows []models.WeekSchedule
	if err := s.db.WithContext(ctx).
		Scopes(ownerScope(salonID, &staffID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveWeekSchedules upserts by (salon, staff, day). The lookup is done in
// code because a NULL staff_id never matches the unique index.
func (s *GormStore) SaveWeekSchedules(
	ctx context.Context,
	rows []models.WeekSchedule,
) error {

	for i := range rows {
		row := &rows[i]

		existing, err := s.FindWeekSchedule(ctx, row.SalonID, row.StaffID, row.DayOfWeek)
		if err != nil {
			return err
		}
		if existing != nil {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}

		if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) ListScheduleExceptions(
	ctx context.Context,
	salonID uint,
	staffID *uint,
	date string,
) ([]models.ScheduleException, error) {

	var rows []models.ScheduleException
	if err := s.db.WithContext(ctx).
		Scopes(ownerScope(salonID, staffID)).
		Where("date = ?", date).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) CreateScheduleException(
	ctx context.Context,
	ex *models.ScheduleException,
) error {
	return s.db.WithContext(ctx).Create(ex).Error
}
