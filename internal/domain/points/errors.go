package points

import (
	"fmt"

	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
)

var (
	ErrInsufficientPoints = httperr.Insufficient("insufficient_points", "the customer's point balance is too low")

	ErrCodeNotFound = httperr.NotFoundErr("redemption_code_not_found", "redemption code is invalid or was already used, request a new one")
	ErrCodeMismatch = httperr.Validation("redemption_code_mismatch", "redemption code belongs to another reservation")
	ErrCodeExpired  = httperr.Expired("redemption_code_expired", "redemption code has expired, request a new one")
	ErrCodeFormat   = httperr.Validation("invalid_redemption_code", "redemption code format is invalid")
	ErrNoPointsUsed = httperr.Validation("no_points_to_redeem", "the reservation does not use points")

	ErrDuplicateTask = httperr.Conflict("duplicate_credit_task", "a point credit is already scheduled for this reservation")
	ErrCodeExhausted = httperr.Conflict("redemption_code_collision", "could not allocate a unique redemption code")
)

// InsufficientBalance reports balance against the requested points.
func InsufficientBalance(balance, requested int) error {
	return ErrInsufficientPoints.WithMessage(
		fmt.Sprintf("balance is %d points, %d requested", balance, requested),
	)
}
