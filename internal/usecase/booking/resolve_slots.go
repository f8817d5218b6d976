package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/availability"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/dto"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

// ResolveSlotsInput asks for the bookable starts of one date. A nil StaffID
// means no preference.
type ResolveSlotsInput struct {
	SalonID uint
	StaffID *uint
	Date    string

	Menus   []models.MenuLine
	Options []models.OptionLine
}

// ======================================================
// USE CASE
// ======================================================

type ResolveSlots struct {
	repo reservation.Repository
	deps
}

func NewResolveSlots(repo reservation.Repository, opts ...Option) *ResolveSlots {
	return &ResolveSlots{repo: repo, deps: newDeps(opts)}
}

// Execute returns the slots of the named staff member, or of the first
// staff member in priority order with at least one slot. No availability
// is an empty result, not an error.
func (uc *ResolveSlots) Execute(ctx context.Context, in ResolveSlotsInput) (*dto.SlotsDTO, error) {

	if err := reservation.ValidateLines(in.Menus, in.Options); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Salon and date
	// --------------------------------------------------
	salon, err := uc.repo.GetSalon(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(salon.Timezone)

	date, err := parseDate(in.Date, loc)
	if err != nil {
		return nil, err
	}

	cfg, err := uc.repo.GetScheduleConfig(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Duration
	// --------------------------------------------------
	items, err := loadItems(ctx, uc.repo, in.SalonID, in.Menus, in.Options)
	if err != nil {
		return nil, err
	}
	duration := reservation.Duration(items)

	out := &dto.SlotsDTO{
		Date:        in.Date,
		DurationMin: int(duration / time.Minute),
		Slots:       []time.Time{},
	}

	// --------------------------------------------------
	// Candidates
	// --------------------------------------------------
	list, err := candidates(ctx, uc.repo, in.SalonID, in.StaffID, reservation.MenuIDs(in.Menus))
	if err != nil {
		return nil, err
	}

	now := uc.now().In(loc)
	for _, c := range list {
		day, err := loadDay(ctx, uc.repo, in.SalonID, cfg, c.ID, date)
		if err != nil {
			return nil, err
		}
		slots := availability.Generate(slotRequest(day, cfg, duration, now))

		if len(slots) == 0 && in.StaffID == nil {
			continue
		}

		out.StaffID = c.ID
		out.StaffName = c.Name
		out.Slots = slots
		return out, nil
	}

	return out, nil
}
