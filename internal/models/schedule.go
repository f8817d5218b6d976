package models

import "time"

// WeekSchedule is the recurring open-hours row for one day of the week.
// StaffID nil means the row belongs to the salon itself.
type WeekSchedule struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SalonID   uint   `gorm:"uniqueIndex:idx_week_schedule_owner_day;not null" json:"salon_id"`
	StaffID   *uint  `gorm:"uniqueIndex:idx_week_schedule_owner_day" json:"staff_id"`
	DayOfWeek string `gorm:"size:10;uniqueIndex:idx_week_schedule_owner_day;not null" json:"day_of_week"`

	IsOpen    bool   `json:"is_open"`
	StartHour string `gorm:"size:5" json:"start_hour"`
	EndHour   string `gorm:"size:5" json:"end_hour"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	ExceptionHoliday = "holiday"
	ExceptionWork    = "work"
	ExceptionOther   = "other"
)

// ScheduleException overrides WeekSchedule for a single date.
// StaffID nil means the exception is salon-wide.
type ScheduleException struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	SalonID uint   `gorm:"index:idx_exception_lookup;not null" json:"salon_id"`
	StaffID *uint  `gorm:"index:idx_exception_lookup" json:"staff_id"`
	Date    string `gorm:"size:10;index:idx_exception_lookup;not null" json:"date"`
	Type    string `gorm:"size:16;default:'holiday'" json:"type"`

	IsAllDay  bool       `json:"is_all_day"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     string     `gorm:"size:255" json:"notes"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
