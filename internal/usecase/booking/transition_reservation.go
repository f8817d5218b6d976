package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/ledger"
)

type TransitionInput struct {
	SalonID       uint
	ReservationID uint
	Status        string
	Actor         reservation.Actor
}

type TransitionReservation struct {
	db      store.Database
	effects Effects
	deps
}

func NewTransitionReservation(db store.Database, effects Effects, opts ...Option) *TransitionReservation {
	return &TransitionReservation{db: db, effects: effects, deps: newDeps(opts)}
}

// Execute moves the reservation to the requested status. The status change
// and its ledger effects commit together.
func (uc *TransitionReservation) Execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Reservation, error) {

	to, ok := reservation.ParseStatus(in.Status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	var (
		r      *models.Reservation
		from   string
		issued *ledger.IssuedCode
	)
	err := uc.db.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		r, err = tx.GetReservationForUpdate(ctx, in.SalonID, in.ReservationID)
		if err != nil {
			return err
		}
		from = r.Status

		cfg, err := tx.GetScheduleConfig(ctx, in.SalonID)
		if err != nil {
			return err
		}

		now := uc.now()
		if err := reservation.Authorize(in.Actor, r, to, cfg.AvailableCancelDays, now); err != nil {
			return err
		}

		effects, err := reservation.Transition(r, to, now)
		if err != nil {
			return err
		}
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}

		issued, err = uc.effects.Apply(ctx, tx, r, effects, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.effects.Deliver(issued)
	uc.metrics.Transition(from, r.Status)

	uc.log.Info("reservation transitioned",
		zap.Uint("reservation_id", r.ID),
		zap.String("from", from),
		zap.String("to", r.Status),
	)

	uc.audit.Dispatch(audit.Event{
		SalonID:  r.SalonID,
		UserID:   userID(in.Actor),
		Action:   "reservation_" + r.Status,
		Entity:   "reservation",
		EntityID: &r.ID,
		Metadata: map[string]any{
			"from": from,
			"to":   r.Status,
			"role": in.Actor.Role,
		},
	})
	return r, nil
}
