package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/httperr"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
)

// ======================================================
// REDEEM
// ======================================================

type RedeemInput struct {
	SalonID       uint
	ReservationID uint
	Code          string
	Actor         reservation.Actor
}

// RedeemPoints consumes the authorization behind code and posts the "used"
// entry. A replayed code finds no authorization.
func (l *Ledger) RedeemPoints(ctx context.Context, in RedeemInput) (*models.PointTransaction, error) {
	if !in.Actor.IsStaff() {
		return nil, ErrStaffOnly
	}
	if !points.ValidCode(in.Code) {
		l.metrics.Redemption("invalid_format")
		return nil, points.ErrCodeFormat
	}
	digest, err := l.codes.Digest(in.Code)
	if err != nil {
		return nil, err
	}

	now := l.now()
	var entry *models.PointTransaction

	err = l.db.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		auth, err := tx.FindRedemptionAuthByDigest(ctx, in.SalonID, digest)
		if err != nil {
			return err
		}
		if auth == nil {
			return points.ErrCodeNotFound
		}
		if auth.ReservationID != in.ReservationID {
			return points.ErrCodeMismatch
		}
		if !now.Before(auth.ExpiresAt) {
			return points.ErrCodeExpired
		}

		r, err := tx.GetReservationForUpdate(ctx, in.SalonID, in.ReservationID)
		if err != nil {
			return err
		}
		st := reservation.Status(r.Status)
		if st != reservation.StatusConfirmed && st != reservation.StatusCompleted {
			return reservation.ErrInvalidTransition
		}

		cp, err := tx.GetCustomerPoints(ctx, in.SalonID, auth.CustomerID)
		if err != nil {
			return err
		}
		if cp.TotalPoints < auth.Points {
			return points.InsufficientBalance(cp.TotalPoints, auth.Points)
		}

		entry, err = post(ctx, tx, in.SalonID, auth.CustomerID, &r.ID, -auth.Points, models.TransactionUsed, now)
		if err != nil {
			return err
		}
		return tx.DeleteRedemptionAuth(ctx, auth.ID)
	})
	if err != nil {
		if be, ok := httperr.As(err); ok {
			l.metrics.Redemption(be.Code)
		}
		return nil, err
	}

	l.metrics.Redemption("ok")
	l.metrics.PointsRedeemed(-entry.Points)
	l.audit.Dispatch(audit.Event{
		SalonID:  in.SalonID,
		UserID:   &in.Actor.UserID,
		Action:   "points_redeemed",
		Entity:   "reservation",
		EntityID: &in.ReservationID,
		Metadata: map[string]any{"points": -entry.Points},
	})
	l.log.Info("points redeemed",
		zap.Uint("salon_id", in.SalonID),
		zap.Uint("reservation_id", in.ReservationID),
		zap.Int("points", -entry.Points),
	)
	return entry, nil
}

// ======================================================
// REISSUE
// ======================================================

type ReissueInput struct {
	SalonID       uint
	ReservationID uint
	Actor         reservation.Actor
}

// ReissueCode replaces the reservation's authorization with a fresh code,
// valid until max(start, now) plus the salon's grace.
func (l *Ledger) ReissueCode(ctx context.Context, in ReissueInput) (*IssuedCode, error) {
	if !in.Actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	now := l.now()
	var issued *IssuedCode

	err := l.db.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		r, err := tx.GetReservationForUpdate(ctx, in.SalonID, in.ReservationID)
		if err != nil {
			return err
		}
		st := reservation.Status(r.Status)
		if st != reservation.StatusConfirmed && st != reservation.StatusCompleted {
			return reservation.ErrInvalidTransition
		}

		issued, err = l.issue(ctx, tx, r, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.Deliver(issued)
	l.audit.Dispatch(audit.Event{
		SalonID:  in.SalonID,
		UserID:   &in.Actor.UserID,
		Action:   "redemption_code_reissued",
		Entity:   "reservation",
		EntityID: &in.ReservationID,
	})
	return issued, nil
}
