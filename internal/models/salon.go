package models

import "time"

type Salon struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Timezone string `gorm:"size:64;default:'Asia/Tokyo'" json:"timezone"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SalonScheduleConfig struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `gorm:"uniqueIndex;not null" json:"salon_id"`

	// Maximum concurrent reservations across the salon (seats). 0 = unlimited.
	AvailableSheet             int `json:"available_sheet"`
	ReservationLimitDays       int `json:"reservation_limit_days"`
	AvailableCancelDays        int `json:"available_cancel_days"`
	TodayFirstLaterMinutes     int `json:"today_first_later_minutes"`
	ReservationIntervalMinutes int `json:"reservation_interval_minutes"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
