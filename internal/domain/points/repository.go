package points

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// Repository is the loyalty-ledger persistence contract.
type Repository interface {
	// -------- Config --------
	// GetPointConfig returns nil, nil when the salon has no point program.
	GetPointConfig(ctx context.Context, salonID uint) (*models.PointConfig, error)
	ListPointExclusionMenuIDs(ctx context.Context, salonID uint) ([]uint, error)
	ListExpiringPointConfigs(ctx context.Context) ([]models.PointConfig, error)

	// -------- Balance --------
	// GetCustomerPoints returns a zero balance when none exists. Inside a
	// transaction the row is locked until commit.
	GetCustomerPoints(ctx context.Context, salonID, customerID uint) (*models.CustomerPoints, error)
	SaveCustomerPoints(ctx context.Context, cp *models.CustomerPoints) error
	ListIdleBalances(ctx context.Context, salonID uint, idleSince time.Time) ([]models.CustomerPoints, error)

	// -------- Ledger (append only) --------
	AppendTransaction(ctx context.Context, tx *models.PointTransaction) error
	ListReservationTransactions(ctx context.Context, reservationID uint) ([]models.PointTransaction, error)

	// -------- Credit tasks --------
	// CreateCreditTask fails with ErrDuplicateTask when the reservation
	// already has one.
	CreateCreditTask(ctx context.Context, task *models.PointCreditTask) error
	// ListDueCreditTasks pages through tasks scheduled at or before now with
	// an id above afterID, in id order.
	ListDueCreditTasks(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.PointCreditTask, error)
	// LockCreditTask returns nil, nil when the task is gone or held by a
	// concurrent sweep.
	LockCreditTask(ctx context.Context, id uint) (*models.PointCreditTask, error)
	DeleteCreditTask(ctx context.Context, id uint) error
	DeleteCreditTasksForReservation(ctx context.Context, reservationID uint) error

	// -------- Redemption --------
	CreateRedemptionAuth(ctx context.Context, auth *models.PointRedemptionAuth) error
	// FindRedemptionAuth returns nil, nil when the reservation has none.
	FindRedemptionAuth(ctx context.Context, reservationID uint) (*models.PointRedemptionAuth, error)
	// FindRedemptionAuthByDigest locks the row; nil, nil when none matches.
	FindRedemptionAuthByDigest(ctx context.Context, salonID uint, digest string) (*models.PointRedemptionAuth, error)
	ActiveDigestExists(ctx context.Context, salonID uint, digest string, now time.Time) (bool, error)
	// SumHeldPoints totals unexpired authorizations of the customer, other
	// than the one for exceptReservationID.
	SumHeldPoints(ctx context.Context, salonID, customerID, exceptReservationID uint, now time.Time) (int, error)
	UpdateRedemptionAuth(ctx context.Context, auth *models.PointRedemptionAuth) error
	DeleteRedemptionAuth(ctx context.Context, id uint) error
	DeleteRedemptionAuthsForReservation(ctx context.Context, reservationID uint) error
}
