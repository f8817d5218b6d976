package models

import "time"

type Staff struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	SalonID  uint   `gorm:"index;not null" json:"salon_id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:100" json:"email"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StaffConfig struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	StaffID     uint `gorm:"uniqueIndex;not null" json:"staff_id"`
	SalonID     uint `gorm:"index;not null" json:"salon_id"`
	Priority    int  `json:"priority"`
	ExtraCharge int  `json:"extra_charge"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuExclusionStaff marks a staff member as unable to perform a menu.
type MenuExclusionStaff struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `gorm:"index:idx_menu_exclusion;not null" json:"salon_id"`
	MenuID  uint `gorm:"index:idx_menu_exclusion;not null" json:"menu_id"`
	StaffID uint `gorm:"not null" json:"staff_id"`

	Archive

	CreatedAt time.Time `json:"created_at"`
}
