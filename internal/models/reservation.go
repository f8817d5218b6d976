package models

import "time"

type MenuLine struct {
	MenuID   uint `json:"menu_id"`
	Quantity int  `json:"quantity"`
}

type OptionLine struct {
	OptionID uint `json:"option_id"`
	Quantity int  `json:"quantity"`
}

type Reservation struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `gorm:"index:idx_reservation_staff_time;not null" json:"salon_id"`

	CustomerID   *uint  `gorm:"index" json:"customer_id"`
	CustomerName string `gorm:"size:100" json:"customer_name"`
	StaffID      uint   `gorm:"index:idx_reservation_staff_time;not null" json:"staff_id"`
	StaffName    string `gorm:"size:100" json:"staff_name"`

	Menus   []MenuLine   `gorm:"serializer:json;type:jsonb" json:"menus"`
	Options []OptionLine `gorm:"serializer:json;type:jsonb" json:"options"`

	UnitPrice  int    `json:"unit_price"`
	TotalPrice int    `json:"total_price"`
	Status     string `gorm:"size:20;index;default:'pending'" json:"status"`

	StartTime time.Time `gorm:"index:idx_reservation_staff_time" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	UsePoints      int    `json:"use_points"`
	CouponID       *uint  `json:"coupon_id"`
	CouponDiscount int    `json:"coupon_discount"`
	Notes          string `gorm:"size:1000" json:"notes"`
	PaymentMethod  string `gorm:"size:20" json:"payment_method"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	RefundedAt  *time.Time `json:"refunded_at"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
