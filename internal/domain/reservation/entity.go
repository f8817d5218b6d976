package reservation

import (
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// Effect is a ledger side effect attached to a transition. Effects run in
// the same store transaction as the status change.
type Effect string

const (
	EffectIssueRedemption  Effect = "issue_redemption"
	EffectScheduleCredit   Effect = "schedule_credit"
	EffectExtendRedemption Effect = "extend_redemption"
	EffectVoidLedger       Effect = "void_ledger"
	EffectReverseEarned    Effect = "reverse_earned"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves r to the target status, stamps the matching timestamp and
// returns the side effects the caller must apply.
func Transition(r *models.Reservation, to Status, now time.Time) ([]Effect, error) {
	from := Status(r.Status)
	if err := CanTransition(from, to); err != nil {
		return nil, err
	}

	var effects []Effect
	switch to {
	case StatusConfirmed:
		r.ConfirmedAt = &now
		if r.UsePoints > 0 {
			effects = append(effects, EffectIssueRedemption)
		}
	case StatusCompleted:
		r.CompletedAt = &now
		effects = append(effects, EffectScheduleCredit)
		if r.UsePoints > 0 {
			effects = append(effects, EffectExtendRedemption)
		}
	case StatusCancelled:
		r.CancelledAt = &now
		effects = append(effects, EffectVoidLedger)
	case StatusRefunded:
		r.RefundedAt = &now
		effects = append(effects, EffectVoidLedger, EffectReverseEarned)
	}

	r.Status = string(to)
	return effects, nil
}

// InitialStatus is the status a new reservation is created in before any
// requested auto-confirmation.
func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Actors
// ===============================

const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

type Actor struct {
	UserID     uint
	Role       string
	CustomerID *uint
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleOwner || a.Role == RoleManager || a.Role == RoleStaff
}

// Authorize checks that actor may move r to the target status. Customers may
// only cancel their own reservations, and only cancelDays or more before the
// start. Zero cancelDays leaves customer cancellation unrestricted.
func Authorize(actor Actor, r *models.Reservation, to Status, cancelDays int, now time.Time) error {
	if actor.IsStaff() {
		return nil
	}
	if actor.Role != RoleCustomer || to != StatusCancelled {
		return ErrForbiddenTransition
	}
	if actor.CustomerID == nil || r.CustomerID == nil || *actor.CustomerID != *r.CustomerID {
		return ErrForbiddenTransition
	}
	if cancelDays > 0 && r.StartTime.Sub(now) < time.Duration(cancelDays)*24*time.Hour {
		return ErrCancelWindowClosed
	}
	return nil
}
