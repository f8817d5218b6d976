package reservation

import "github.com/BruksfildServices01/salon-reserve/internal/httperr"

var (
	ErrInvalidTransition = httperr.Conflict("invalid_transition", "reservation cannot move to the requested status")
	ErrSlotTaken         = httperr.Conflict("slot_no_longer_available", "the selected time is no longer available, pick another slot")
	ErrStaffUnavailable  = httperr.Conflict("staff_unavailable", "no staff member can take this reservation at the requested time")

	ErrReservationNotFound = httperr.NotFoundErr("reservation_not_found", "reservation not found")
	ErrSalonNotFound       = httperr.NotFoundErr("salon_not_found", "salon not found")
	ErrStaffNotFound       = httperr.NotFoundErr("staff_not_found", "staff member not found")
	ErrMenuNotFound        = httperr.NotFoundErr("menu_not_found", "menu or option not found")
	ErrCustomerNotFound    = httperr.NotFoundErr("customer_not_found", "customer not found")

	ErrNoMenus               = httperr.Validation("menus_required", "at least one menu is required")
	ErrInvalidQuantity       = httperr.Validation("invalid_quantity", "line item quantities must be between 1 and 100")
	ErrTooManyLines          = httperr.Validation("too_many_lines", "a reservation holds at most 50 line items")
	ErrInvalidStart          = httperr.Validation("invalid_start_time", "start time is invalid")
	ErrNotesTooLong          = httperr.Validation("notes_too_long", "notes exceed the maximum length")
	ErrInvalidPrice          = httperr.Validation("invalid_price", "price is out of range")
	ErrUsePointsOutOfRange   = httperr.Validation("invalid_use_points", "points to use are out of range")
	ErrPointsRequireCustomer = httperr.Validation("points_require_customer", "using points requires a registered customer")
	ErrDurationMismatch      = httperr.Validation("duration_mismatch", "reservation length does not match its line items")
	ErrInvalidPaymentMethod  = httperr.Validation("invalid_payment_method", "payment method is not supported")

	ErrForbiddenTransition = httperr.Forbidden("forbidden_transition", "this role cannot perform the requested transition")
	ErrCancelWindowClosed  = httperr.Forbidden("cancel_window_closed", "the reservation can no longer be cancelled online")
)
