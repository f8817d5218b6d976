// Package points holds the loyalty rules: how many points a reservation
// earns, when they are credited, and how redemption codes are made.
package points

import (
	"math"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

const (
	MaxPointRate  = 0.9
	MaxFixedPoint = 10000
	MaxPoints     = 10000

	// CreditDay and CreditHour place a credit on the 15th of the month
	// after completion, at 09:00 salon time.
	CreditDay  = 15
	CreditHour = 9

	DefaultRedemptionGrace = 0

	// CheckoutWindowMinutes is the least a code stays valid once its
	// reservation completes.
	CheckoutWindowMinutes = 60
)

// Line is the point-relevant view of one reservation line.
type Line struct {
	MenuID uint // zero for options
	Value  int
}

// Earned computes the points a completed reservation earns. Lines whose menu
// is in excluded earn nothing; the eligible value never exceeds totalPrice.
func Earned(cfg *models.PointConfig, lines []Line, excluded map[uint]struct{}, totalPrice int) int {
	if cfg == nil {
		return 0
	}

	eligible := 0
	eligibleLines := 0
	for _, l := range lines {
		if l.MenuID != 0 {
			if _, skip := excluded[l.MenuID]; skip {
				continue
			}
		}
		eligible += l.Value
		eligibleLines++
	}
	if eligibleLines == 0 {
		return 0
	}
	if eligible > totalPrice {
		eligible = totalPrice
	}

	var pts int
	if cfg.IsFixedPoint {
		pts = cfg.FixedPoint
		if pts > MaxFixedPoint {
			pts = MaxFixedPoint
		}
	} else {
		rate := cfg.PointRate
		if rate > MaxPointRate {
			rate = MaxPointRate
		}
		if rate <= 0 || eligible <= 0 {
			return 0
		}
		pts = int(math.Floor(float64(eligible) * rate))
	}

	if pts < 0 {
		return 0
	}
	if pts > MaxPoints {
		return MaxPoints
	}
	return pts
}

// CreditDate is when points for a reservation completed at completedAt are
// credited, in loc.
func CreditDate(completedAt time.Time, loc *time.Location) time.Time {
	local := completedAt.In(loc)
	firstOfNext := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), CreditDay, CreditHour, 0, 0, 0, loc)
}

// RedemptionExpiry is the deadline of a code issued for a reservation starting
// at start. Codes reissued after the start run from now instead.
func RedemptionExpiry(start, now time.Time, graceMinutes int) time.Time {
	base := start
	if now.After(base) {
		base = now
	}
	if graceMinutes < 0 {
		graceMinutes = 0
	}
	return base.Add(time.Duration(graceMinutes) * time.Minute)
}

// CheckoutExpiry is the deadline of a code whose reservation completed at
// completedAt: the grace or the checkout window, whichever is longer.
func CheckoutExpiry(completedAt time.Time, graceMinutes int) time.Time {
	if graceMinutes < CheckoutWindowMinutes {
		graceMinutes = CheckoutWindowMinutes
	}
	return completedAt.Add(time.Duration(graceMinutes) * time.Minute)
}

// Apply adds delta to the cached balance and stamps the transaction time.
func Apply(cp *models.CustomerPoints, delta int, at time.Time) {
	cp.TotalPoints += delta
	cp.LastTransactionDate = &at
}
