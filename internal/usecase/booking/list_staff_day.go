package booking

import (
	"context"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/availability"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/dto"
	"github.com/BruksfildServices01/salon-reserve/internal/timezone"
)

type ListStaffDay struct {
	repo reservation.Repository
}

func NewListStaffDay(repo reservation.Repository) *ListStaffDay {
	return &ListStaffDay{repo: repo}
}

// Execute lists every reservation of the staff member starting on date,
// whatever its status, ordered by start.
func (uc *ListStaffDay) Execute(
	ctx context.Context,
	salonID uint,
	staffID uint,
	date string,
) ([]dto.ReservationListDTO, error) {

	salon, err := uc.repo.GetSalon(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.repo.GetStaff(ctx, salonID, staffID); err != nil {
		return nil, err
	}

	day, err := parseDate(date, timezone.Location(salon.Timezone))
	if err != nil {
		return nil, err
	}
	from, to := availability.DayBounds(day)

	rows, err := uc.repo.ListStaffDay(ctx, salonID, staffID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReservationListDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.NewReservationListDTO(r))
	}
	return out, nil
}
