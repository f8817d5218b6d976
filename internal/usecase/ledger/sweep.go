package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/lock"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
)

const (
	creditSweepKey = "credit-sweep"
	expirySweepKey = "expiry-sweep"
)

type creditResult string

const (
	creditApplied  creditResult = "applied"
	creditSkipped  creditResult = "skipped"
	creditOrphaned creditResult = "orphaned"
	creditFailed   creditResult = "failed"
)

func (l *Ledger) acquire(ctx context.Context, key string) (func(), error) {
	release, err := l.locker.Acquire(ctx, key, sweepLockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, ErrSweepInProgress
	}
	return release, err
}

// ======================================================
// CREDIT SWEEP
// ======================================================

// SweepCredits posts every due credit task and returns how many were
// applied. Each task commits on its own; a failing task is logged and left
// for the next run.
func (l *Ledger) SweepCredits(ctx context.Context) (int, error) {
	release, err := l.acquire(ctx, creditSweepKey)
	if err != nil {
		return 0, err
	}
	defer release()

	started := time.Now()
	now := l.now()
	log := l.log.With(zap.String("sweep_id", uuid.NewString()), zap.String("sweep", "credit"))

	applied := 0
	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		due, err := l.db.ListDueCreditTasks(ctx, now, afterID, l.batch)
		if err != nil {
			return applied, err
		}

		for _, task := range due {
			afterID = task.ID

			result, err := l.applyCredit(ctx, task.ID, now, log)
			if err != nil {
				log.Error("credit task failed",
					zap.Uint("task_id", task.ID),
					zap.Uint("reservation_id", task.ReservationID),
					zap.Error(err),
				)
				result = creditFailed
			}
			l.metrics.SweepTask(string(result))
			if result == creditApplied {
				applied++
				l.metrics.PointsCredited(task.Points)
			}
		}

		if len(due) < l.batch {
			break
		}
	}

	l.metrics.SweepDone("credit", time.Since(started))
	log.Info("credit sweep done", zap.Int("applied", applied))
	return applied, nil
}

// applyCredit re-locks the task and posts it. Tasks whose reservation is
// gone or no longer completed are dropped.
func (l *Ledger) applyCredit(
	ctx context.Context,
	taskID uint,
	now time.Time,
	log *zap.Logger,
) (creditResult, error) {

	result := creditSkipped
	err := l.db.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		task, err := tx.LockCreditTask(ctx, taskID)
		if err != nil || task == nil {
			return err
		}

		r, err := tx.GetReservation(ctx, task.SalonID, task.ReservationID)
		if err != nil && !errors.Is(err, reservation.ErrReservationNotFound) {
			return err
		}
		if r == nil || reservation.Status(r.Status) != reservation.StatusCompleted {
			log.Warn("dropping orphaned credit task",
				zap.Uint("task_id", task.ID),
				zap.Uint("reservation_id", task.ReservationID),
			)
			result = creditOrphaned
			return tx.DeleteCreditTask(ctx, task.ID)
		}

		if _, err := post(ctx, tx, task.SalonID, task.CustomerID, &task.ReservationID,
			task.Points, models.TransactionEarned, now); err != nil {
			return err
		}
		if err := tx.DeleteCreditTask(ctx, task.ID); err != nil {
			return err
		}
		result = creditApplied
		return nil
	})
	return result, err
}

// ======================================================
// EXPIRY SWEEP
// ======================================================

// ExpirePoints zeroes balances idle for longer than the salon's expiration
// window and returns how many balances expired.
func (l *Ledger) ExpirePoints(ctx context.Context) (int, error) {
	release, err := l.acquire(ctx, expirySweepKey)
	if err != nil {
		return 0, err
	}
	defer release()

	started := time.Now()
	now := l.now()
	log := l.log.With(zap.String("sweep_id", uuid.NewString()), zap.String("sweep", "expiry"))

	configs, err := l.db.ListExpiringPointConfigs(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, cfg := range configs {
		idleSince := now.AddDate(0, 0, -cfg.PointExpirationDays)

		balances, err := l.db.ListIdleBalances(ctx, cfg.SalonID, idleSince)
		if err != nil {
			return expired, err
		}

		for _, b := range balances {
			n, err := l.expireBalance(ctx, b.SalonID, b.CustomerID, idleSince, now)
			if err != nil {
				log.Error("point expiry failed",
					zap.Uint("salon_id", b.SalonID),
					zap.Uint("customer_id", b.CustomerID),
					zap.Error(err),
				)
				continue
			}
			if n > 0 {
				expired++
				l.metrics.PointsExpired(n)
				l.audit.Dispatch(audit.Event{
					SalonID:  b.SalonID,
					Action:   "points_expired",
					Entity:   "customer",
					EntityID: &b.CustomerID,
					Metadata: map[string]any{"points": n},
				})
			}
		}
	}

	l.metrics.SweepDone("expiry", time.Since(started))
	log.Info("expiry sweep done", zap.Int("expired", expired))
	return expired, nil
}

// expireBalance re-reads the balance under lock; activity since the listing
// keeps it alive.
func (l *Ledger) expireBalance(
	ctx context.Context,
	salonID, customerID uint,
	idleSince, now time.Time,
) (int, error) {

	n := 0
	err := l.db.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		cp, err := tx.GetCustomerPoints(ctx, salonID, customerID)
		if err != nil {
			return err
		}
		if cp.TotalPoints <= 0 || cp.LastTransactionDate == nil || !cp.LastTransactionDate.Before(idleSince) {
			return nil
		}
		n = cp.TotalPoints
		_, err = post(ctx, tx, salonID, customerID, nil, -n, models.TransactionExpired, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
