package models

import "time"

// Customer is a salon client; reservations may also be walk-ins without one.
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	SalonID uint   `gorm:"index;not null" json:"salon_id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Phone   string `gorm:"size:20" json:"phone"`
	Email   string `gorm:"size:100" json:"email"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerPoints caches the sum of the customer's PointTransaction rows.
type CustomerPoints struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	SalonID             uint       `gorm:"uniqueIndex:idx_customer_points;not null" json:"salon_id"`
	CustomerID          uint       `gorm:"uniqueIndex:idx_customer_points;not null" json:"customer_id"`
	TotalPoints         int        `json:"total_points"`
	LastTransactionDate *time.Time `json:"last_transaction_date"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
