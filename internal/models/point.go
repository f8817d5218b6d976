package models

import "time"

type PointConfig struct {
	ID                  uint    `gorm:"primaryKey" json:"id"`
	SalonID             uint    `gorm:"uniqueIndex;not null" json:"salon_id"`
	IsFixedPoint        bool    `json:"is_fixed_point"`
	PointRate           float64 `json:"point_rate"`
	FixedPoint          int     `json:"fixed_point"`
	PointExpirationDays int     `json:"point_expiration_days"`

	// Minutes after the reservation start during which a redemption code stays valid.
	RedemptionGraceMinutes int `json:"redemption_grace_minutes"`

	Archive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PointExclusionMenu struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	SalonID       uint `gorm:"index:idx_point_exclusion;not null" json:"salon_id"`
	PointConfigID uint `gorm:"index:idx_point_exclusion;not null" json:"point_config_id"`
	MenuID        uint `gorm:"not null" json:"menu_id"`

	Archive

	CreatedAt time.Time `json:"created_at"`
}

// PointCreditTask is pending work: removed physically once applied or voided.
type PointCreditTask struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SalonID       uint      `gorm:"not null" json:"salon_id"`
	ReservationID uint      `gorm:"uniqueIndex;not null" json:"reservation_id"`
	CustomerID    uint      `gorm:"index;not null" json:"customer_id"`
	Points        int       `json:"points"`
	ScheduledFor  time.Time `gorm:"index;not null" json:"scheduled_for"`

	CreatedAt time.Time `json:"created_at"`
}

// PointRedemptionAuth gates consumption of reserved points. Only a digest of
// the one-time code is stored.
type PointRedemptionAuth struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SalonID       uint      `gorm:"index:idx_redemption_code;not null" json:"salon_id"`
	ReservationID uint      `gorm:"uniqueIndex;not null" json:"reservation_id"`
	CustomerID    uint      `gorm:"index;not null" json:"customer_id"`
	CodeDigest    string    `gorm:"size:64;index:idx_redemption_code;not null" json:"-"`
	ExpiresAt     time.Time `gorm:"index;not null" json:"expires_at"`
	Points        int       `json:"points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	TransactionEarned   = "earned"
	TransactionUsed     = "used"
	TransactionAdjusted = "adjusted"
	TransactionExpired  = "expired"
)

// PointTransaction is append-only; corrections are new "adjusted" rows.
type PointTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SalonID         uint      `gorm:"index:idx_point_tx_customer;not null" json:"salon_id"`
	ReservationID   *uint     `gorm:"index" json:"reservation_id"`
	CustomerID      uint      `gorm:"index:idx_point_tx_customer;not null" json:"customer_id"`
	Points          int       `json:"points"`
	MenuID          *uint     `json:"menu_id"`
	TransactionType string    `gorm:"size:20;not null" json:"transaction_type"`
	TransactionDate time.Time `json:"transaction_date"`

	Archive

	CreatedAt time.Time `json:"created_at"`
}
