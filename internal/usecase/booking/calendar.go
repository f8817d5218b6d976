package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/availability"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/staff"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// loadDay gathers the resolver input for one staff member on the date of
// midnight.
func loadDay(
	ctx context.Context,
	repo reservation.Repository,
	salonID uint,
	cfg *models.SalonScheduleConfig,
	staffID uint,
	midnight time.Time,
) (availability.Day, error) {

	dayStart, dayEnd := availability.DayBounds(midnight)
	date := dayStart.Format(dateLayout)
	name := dayName(dayStart)

	day := availability.Day{Date: dayStart}

	staffRow, err := repo.FindWeekSchedule(ctx, salonID, &staffID, name)
	if err != nil {
		return day, err
	}
	day.StaffHours = toHours(staffRow)

	staffEx, err := repo.ListScheduleExceptions(ctx, salonID, &staffID, date)
	if err != nil {
		return day, err
	}
	day.StaffExceptions = toExceptions(staffEx)

	booked, err := repo.ListStaffReservations(ctx, staffID, dayStart, dayEnd)
	if err != nil {
		return day, err
	}
	day.Reservations = toBusy(booked)

	salonRow, err := repo.FindWeekSchedule(ctx, salonID, nil, name)
	if err != nil {
		return day, err
	}
	day.SalonHours = toHours(salonRow)

	salonEx, err := repo.ListScheduleExceptions(ctx, salonID, nil, date)
	if err != nil {
		return day, err
	}
	day.SalonExceptions = toExceptions(salonEx)

	if cfg.AvailableSheet > 0 {
		all, err := repo.ListSalonReservations(ctx, salonID, dayStart, dayEnd)
		if err != nil {
			return day, err
		}
		day.SalonBusy = toBusy(all)
		day.Capacity = cfg.AvailableSheet
	}

	return day, nil
}

func toHours(row *models.WeekSchedule) *availability.Hours {
	if row == nil {
		return nil
	}
	return &availability.Hours{
		IsOpen:    row.IsOpen,
		StartHour: row.StartHour,
		EndHour:   row.EndHour,
	}
}

// toExceptions treats a partial exception without a range as all-day.
func toExceptions(rows []models.ScheduleException) []availability.Exception {
	out := make([]availability.Exception, 0, len(rows))
	for _, ex := range rows {
		allDay := ex.IsAllDay || ex.StartTime == nil || ex.EndTime == nil
		e := availability.Exception{Type: ex.Type, AllDay: allDay}
		if !allDay {
			e.Start, e.End = *ex.StartTime, *ex.EndTime
		}
		out = append(out, e)
	}
	return out
}

func toBusy(rows []models.Reservation) []availability.Busy {
	out := make([]availability.Busy, 0, len(rows))
	for _, r := range rows {
		out = append(out, availability.Busy{Start: r.StartTime, End: r.EndTime})
	}
	return out
}

func slotRequest(
	day availability.Day,
	cfg *models.SalonScheduleConfig,
	duration time.Duration,
	now time.Time,
) availability.SlotRequest {
	return availability.SlotRequest{
		Date:        day.Date,
		Closed:      availability.Resolve(day),
		Duration:    duration,
		Granularity: time.Duration(cfg.ReservationIntervalMinutes) * time.Minute,
		Now:         now,
		LeadTime:    time.Duration(cfg.TodayFirstLaterMinutes) * time.Minute,
		HorizonDays: cfg.ReservationLimitDays,
	}
}

// checkStart reports nil when start is bookable. When start is only
// blocked by bookings (the staff's or the salon's seats) the result is
// ErrSlotTaken, otherwise ErrStaffUnavailable.
func checkStart(
	day availability.Day,
	cfg *models.SalonScheduleConfig,
	duration time.Duration,
	start, now time.Time,
) error {

	if availability.Contains(availability.Generate(slotRequest(day, cfg, duration, now)), start) {
		return nil
	}

	free := day
	free.Reservations = nil
	free.SalonBusy = nil
	if availability.Contains(availability.Generate(slotRequest(free, cfg, duration, now)), start) {
		return reservation.ErrSlotTaken
	}
	return reservation.ErrStaffUnavailable
}

// ======================================================
// Catalog and staff lookups
// ======================================================

// loadItems resolves the requested lines against the active catalog.
func loadItems(
	ctx context.Context,
	repo reservation.Repository,
	salonID uint,
	menus []models.MenuLine,
	options []models.OptionLine,
) ([]reservation.Item, error) {

	menuRows, err := repo.ListMenus(ctx, salonID, reservation.MenuIDs(menus))
	if err != nil {
		return nil, err
	}
	optionRows, err := repo.ListOptions(ctx, salonID, reservation.OptionIDs(options))
	if err != nil {
		return nil, err
	}

	menuByID := make(map[uint]models.Menu, len(menuRows))
	for _, m := range menuRows {
		menuByID[m.ID] = m
	}
	optionByID := make(map[uint]models.SalonOption, len(optionRows))
	for _, o := range optionRows {
		optionByID[o.ID] = o
	}

	items := make([]reservation.Item, 0, len(menus)+len(options))
	for _, l := range menus {
		m, ok := menuByID[l.MenuID]
		if !ok {
			return nil, reservation.ErrMenuNotFound
		}
		items = append(items, reservation.MenuItem(m, l.Quantity))
	}
	for _, l := range options {
		o, ok := optionByID[l.OptionID]
		if !ok {
			return nil, reservation.ErrMenuNotFound
		}
		items = append(items, reservation.OptionItem(o, l.Quantity))
	}
	return items, nil
}

type candidate struct {
	staff.Candidate
	ExtraCharge int
}

// candidates returns the staff able to take menuIDs, best first. A named
// staff member yields a single candidate or ErrStaffUnavailable.
func candidates(
	ctx context.Context,
	repo reservation.Repository,
	salonID uint,
	staffID *uint,
	menuIDs []uint,
) ([]candidate, error) {

	active, err := repo.ListActiveStaff(ctx, salonID)
	if err != nil {
		return nil, err
	}
	configs, err := repo.ListStaffConfigs(ctx, salonID)
	if err != nil {
		return nil, err
	}
	exclusionRows, err := repo.ListMenuExclusions(ctx, salonID, menuIDs)
	if err != nil {
		return nil, err
	}

	cfgByStaff := make(map[uint]models.StaffConfig, len(configs))
	for _, c := range configs {
		cfgByStaff[c.StaffID] = c
	}
	exclusions := staff.Exclusions{}
	for _, e := range exclusionRows {
		exclusions[e.MenuID] = append(exclusions[e.MenuID], e.StaffID)
	}

	if staffID != nil {
		if _, err := repo.GetStaff(ctx, salonID, *staffID); err != nil {
			return nil, err
		}
		for _, s := range active {
			if s.ID != *staffID {
				continue
			}
			if !staff.CanPerform(s.ID, exclusions, menuIDs) {
				return nil, reservation.ErrStaffUnavailable
			}
			cfg := cfgByStaff[s.ID]
			return []candidate{{
				Candidate:   staff.Candidate{ID: s.ID, Name: s.Name, Priority: cfg.Priority},
				ExtraCharge: cfg.ExtraCharge,
			}}, nil
		}
		return nil, reservation.ErrStaffUnavailable
	}

	all := make([]staff.Candidate, 0, len(active))
	for _, s := range active {
		all = append(all, staff.Candidate{ID: s.ID, Name: s.Name, Priority: cfgByStaff[s.ID].Priority})
	}

	ranked := staff.Rank(all, exclusions, menuIDs)
	out := make([]candidate, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, candidate{Candidate: c, ExtraCharge: cfgByStaff[c.ID].ExtraCharge})
	}
	return out, nil
}
