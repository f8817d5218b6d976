package reservation

import (
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

const (
	MaxTotalPrice  = 1000000
	MaxUsePoints   = 10000
	MaxNotesLength = 1000

	// Per line and per reservation; they bound the price and duration sums.
	MaxQuantity = 100
	MaxLines    = 50
)

// Item is a priced, timed line of a reservation: a menu or an option
// resolved against the catalog.
type Item struct {
	MenuID          uint // zero for options
	OptionID        uint // zero for menus
	Quantity        int
	UnitPrice       int
	SalePrice       *int
	TimeToMin       int
	EnsureTimeToMin *int
}

// HoldMinutes is the time the item occupies the seat.
func (it Item) HoldMinutes() int {
	if it.EnsureTimeToMin != nil && *it.EnsureTimeToMin > 0 {
		return *it.EnsureTimeToMin
	}
	return it.TimeToMin
}

// Price is the line value using the sale price when present.
func (it Item) Price() int {
	p := it.UnitPrice
	if it.SalePrice != nil && *it.SalePrice >= 0 {
		p = *it.SalePrice
	}
	return p * it.Quantity
}

func MenuItem(m models.Menu, qty int) Item {
	return Item{
		MenuID:          m.ID,
		Quantity:        qty,
		UnitPrice:       m.UnitPrice,
		SalePrice:       m.SalePrice,
		TimeToMin:       m.TimeToMin,
		EnsureTimeToMin: m.EnsureTimeToMin,
	}
}

func OptionItem(o models.SalonOption, qty int) Item {
	return Item{
		OptionID:        o.ID,
		Quantity:        qty,
		UnitPrice:       o.UnitPrice,
		SalePrice:       o.SalePrice,
		TimeToMin:       o.TimeToMin,
		EnsureTimeToMin: o.EnsureTimeToMin,
	}
}

// Duration sums the seat hold of every item.
func Duration(items []Item) time.Duration {
	total := 0
	for _, it := range items {
		total += it.HoldMinutes() * it.Quantity
	}
	return time.Duration(total) * time.Minute
}

// CheckDuration enforces endTime - startTime == Duration(items).
func CheckDuration(r *models.Reservation, items []Item) error {
	if r.EndTime.Sub(r.StartTime) != Duration(items) {
		return ErrDurationMismatch
	}
	return nil
}

// TotalPrice applies extra charge, coupon discount and points to the unit
// price. The result is never negative.
func TotalPrice(unitPrice, extraCharge, couponDiscount, usePoints int) int {
	total := unitPrice + extraCharge - couponDiscount - usePoints
	if total < 0 {
		return 0
	}
	return total
}

// ValidateLines checks quantities and that at least one menu is present.
func ValidateLines(menus []models.MenuLine, options []models.OptionLine) error {
	if len(menus) == 0 {
		return ErrNoMenus
	}
	if len(menus)+len(options) > MaxLines {
		return ErrTooManyLines
	}
	for _, m := range menus {
		if m.Quantity <= 0 || m.Quantity > MaxQuantity || m.MenuID == 0 {
			return ErrInvalidQuantity
		}
	}
	for _, o := range options {
		if o.Quantity <= 0 || o.Quantity > MaxQuantity || o.OptionID == 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func MenuIDs(lines []models.MenuLine) []uint {
	out := make([]uint, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.MenuID)
	}
	return out
}

func OptionIDs(lines []models.OptionLine) []uint {
	out := make([]uint, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.OptionID)
	}
	return out
}

const (
	PaymentCash       = "cash"
	PaymentCreditCard = "credit_card"
	PaymentOther      = "other"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case "", PaymentCash, PaymentCreditCard, PaymentOther:
		return true
	}
	return false
}
