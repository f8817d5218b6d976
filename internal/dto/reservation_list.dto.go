package dto

import (
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

type ReservationListDTO struct {
	ID           uint                `json:"id"`
	StartTime    time.Time           `json:"start_time"`
	EndTime      time.Time           `json:"end_time"`
	Status       string              `json:"status"`
	CustomerName string              `json:"customer_name"`
	StaffName    string              `json:"staff_name"`
	Menus        []models.MenuLine   `json:"menus"`
	Options      []models.OptionLine `json:"options"`
	TotalPrice   int                 `json:"total_price"`
	UsePoints    int                 `json:"use_points"`
}

func NewReservationListDTO(r models.Reservation) ReservationListDTO {
	return ReservationListDTO{
		ID:           r.ID,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Status:       r.Status,
		CustomerName: r.CustomerName,
		StaffName:    r.StaffName,
		Menus:        r.Menus,
		Options:      r.Options,
		TotalPrice:   r.TotalPrice,
		UsePoints:    r.UsePoints,
	}
}

// SlotsDTO is the slot resolver answer for one staff member and date.
type SlotsDTO struct {
	StaffID     uint        `json:"staff_id"`
	StaffName   string      `json:"staff_name"`
	Date        string      `json:"date"`
	DurationMin int         `json:"duration_min"`
	Slots       []time.Time `json:"slots"`
}
