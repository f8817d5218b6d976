package booking

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/availability"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/timezone"
)

var (
	ErrInvalidDay       = httperr.Validation("invalid_day_of_week", "day_of_week must be monday..sunday")
	ErrDuplicateDay     = httperr.Validation("duplicate_day_of_week", "each day of the week may appear once")
	ErrInvalidHours     = httperr.Validation("invalid_hours", "start_hour must be before end_hour, both HH:MM")
	ErrInvalidException = httperr.Validation("invalid_exception_type", "type must be holiday, work or other")
	ErrInvalidRange     = httperr.Validation("invalid_time_range", "start_time must be before end_time, both HH:MM")
)

// ======================================================
// Weekly hours
// ======================================================

type WeekDayInput struct {
	DayOfWeek string
	IsOpen    bool
	StartHour string
	EndHour   string
}

type Schedule struct {
	repo reservation.Repository
	deps
}

func NewSchedule(repo reservation.Repository, opts ...Option) *Schedule {
	return &Schedule{repo: repo, deps: newDeps(opts)}
}

func (uc *Schedule) ListWeekSchedule(
	ctx context.Context,
	salonID uint,
	staffID uint,
) ([]models.WeekSchedule, error) {

	if _, err := uc.repo.GetStaff(ctx, salonID, staffID); err != nil {
		return nil, err
	}
	return uc.repo.ListWeekSchedules(ctx, salonID, staffID)
}

// UpsertWeekSchedule replaces the given days of the staff's week. Days not
// listed keep their current row.
func (uc *Schedule) UpsertWeekSchedule(
	ctx context.Context,
	salonID uint,
	staffID uint,
	days []WeekDayInput,
	actor reservation.Actor,
) ([]models.WeekSchedule, error) {

	if _, err := uc.repo.GetStaff(ctx, salonID, staffID); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(days))
	rows := make([]models.WeekSchedule, 0, len(days))
	for _, d := range days {
		wd, ok := ParseDayOfWeek(d.DayOfWeek)
		if !ok {
			return nil, ErrInvalidDay
		}
		name := strings.ToLower(wd.String())
		if _, dup := seen[name]; dup {
			return nil, ErrDuplicateDay
		}
		seen[name] = struct{}{}

		if d.IsOpen {
			start, okStart := availability.ParseClock(d.StartHour)
			end, okEnd := availability.ParseClock(d.EndHour)
			if !okStart || !okEnd || start >= end {
				return nil, ErrInvalidHours
			}
		}

		id := staffID
		rows = append(rows, models.WeekSchedule{
			SalonID:   salonID,
			StaffID:   &id,
			DayOfWeek: name,
			IsOpen:    d.IsOpen,
			StartHour: d.StartHour,
			EndHour:   d.EndHour,
		})
	}

	if err := uc.repo.SaveWeekSchedules(ctx, rows); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		SalonID:  salonID,
		UserID:   userID(actor),
		Action:   "week_schedule_updated",
		Entity:   "staff",
		EntityID: &staffID,
		Metadata: map[string]any{"days": len(rows)},
	})

	return uc.repo.ListWeekSchedules(ctx, salonID, staffID)
}

// ======================================================
// Exceptions
// ======================================================

// ExceptionInput adds one dated override. A nil StaffID makes it
// salon-wide. StartTime and EndTime are HH:MM and ignored when IsAllDay.
type ExceptionInput struct {
	SalonID   uint
	StaffID   *uint
	Date      string
	Type      string
	IsAllDay  bool
	StartTime string
	EndTime   string
	Notes     string
	Actor     reservation.Actor
}

func (uc *Schedule) AddScheduleException(
	ctx context.Context,
	in ExceptionInput,
) (*models.ScheduleException, error) {

	switch in.Type {
	case "":
		in.Type = models.ExceptionHoliday
	case models.ExceptionHoliday, models.ExceptionWork, models.ExceptionOther:
	default:
		return nil, ErrInvalidException
	}

	salon, err := uc.repo.GetSalon(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}
	if in.StaffID != nil {
		if _, err := uc.repo.GetStaff(ctx, in.SalonID, *in.StaffID); err != nil {
			return nil, err
		}
	}

	loc := timezone.Location(salon.Timezone)
	day, err := parseDate(in.Date, loc)
	if err != nil {
		return nil, err
	}

	ex := &models.ScheduleException{
		SalonID:  in.SalonID,
		StaffID:  in.StaffID,
		Date:     day.Format(dateLayout),
		Type:     in.Type,
		IsAllDay: in.IsAllDay,
		Notes:    in.Notes,
	}

	if !in.IsAllDay {
		start, okStart := clockOn(day, in.StartTime)
		end, okEnd := clockOn(day, in.EndTime)
		if !okStart || !okEnd || !start.Before(end) {
			return nil, ErrInvalidRange
		}
		ex.StartTime, ex.EndTime = &start, &end
	}

	if err := uc.repo.CreateScheduleException(ctx, ex); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		SalonID:  in.SalonID,
		UserID:   userID(in.Actor),
		Action:   "schedule_exception_created",
		Entity:   "schedule_exception",
		EntityID: &ex.ID,
		Metadata: map[string]any{"date": ex.Date, "type": ex.Type},
	})
	return ex, nil
}

// clockOn places HH:MM on the local date of midnight.
func clockOn(midnight time.Time, hm string) (time.Time, bool) {
	minutes, ok := availability.ParseClock(strings.TrimSpace(hm))
	if !ok {
		return time.Time{}, false
	}
	return time.Date(
		midnight.Year(), midnight.Month(), midnight.Day(),
		minutes/60, minutes%60, 0, 0,
		midnight.Location(),
	), true
}
