package models

import "time"

type Menu struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SalonID   uint   `gorm:"index;not null" json:"salon_id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	UnitPrice int    `json:"unit_price"`
	SalePrice *int   `json:"sale_price"`

	// TimeToMin is working time; EnsureTimeToMin is the seat hold, which may
	// be longer (e.g. processing waits).
	TimeToMin       int  `json:"time_to_min"`
	EnsureTimeToMin *int `json:"ensure_time_to_min"`
	IsActive        bool `gorm:"default:true" json:"is_active"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SalonOption struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	SalonID         uint   `gorm:"index;not null" json:"salon_id"`
	Name            string `gorm:"size:100;not null" json:"name"`
	UnitPrice       int    `json:"unit_price"`
	SalePrice       *int   `json:"sale_price"`
	TimeToMin       int    `json:"time_to_min"`
	EnsureTimeToMin *int   `json:"ensure_time_to_min"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
