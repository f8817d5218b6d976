package ledger

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/lock"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/memstore"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/messaging"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []messaging.Message
}

func (s *recordingSender) Enqueue(msg messaging.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return true
}

type fixture struct {
	t        *testing.T
	db       *memstore.Store
	ledger   *Ledger
	sender   *recordingSender
	salon    models.Salon
	menu     models.Menu
	customer models.Customer
	now      time.Time
}

var staffActor = reservation.Actor{UserID: 7, Role: reservation.RoleStaff}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	db := memstore.New()
	f := &fixture{
		t:      t,
		db:     db,
		sender: &recordingSender{},
		now:    time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC),
	}
	f.salon = db.AddSalon("Studio", "UTC")
	f.menu = db.AddMenu(models.Menu{SalonID: f.salon.ID, Name: "Cut", UnitPrice: 1000, TimeToMin: 60})
	f.customer = db.AddCustomer(f.salon.ID, "Ana", "+5511999990000")
	db.SetPointConfig(models.PointConfig{
		SalonID:                f.salon.ID,
		PointRate:              0.1,
		RedemptionGraceMinutes: 30,
	})

	opts = append([]Option{WithClock(func() time.Time { return f.now })}, opts...)
	f.ledger = New(db, points.NewCodeGenerator([]byte("test-secret")), f.sender, nil, opts...)
	return f
}

func (f *fixture) reservation(status reservation.Status, usePoints int, start time.Time) models.Reservation {
	customerID := f.customer.ID
	return f.db.AddReservation(models.Reservation{
		SalonID:    f.salon.ID,
		CustomerID: &customerID,
		StaffID:    1,
		Menus:      []models.MenuLine{{MenuID: f.menu.ID, Quantity: 1}},
		UnitPrice:  1000,
		TotalPrice: reservation.TotalPrice(1000, 0, 0, usePoints),
		Status:     string(status),
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		UsePoints:  usePoints,
	})
}

// transition runs a domain transition and its ledger effects in one tx.
func (f *fixture) transition(id uint, to reservation.Status) (*IssuedCode, error) {
	f.t.Helper()
	var issued *IssuedCode
	err := f.db.WithinTx(context.Background(), func(ctx context.Context, tx store.Store) error {
		r, err := tx.GetReservationForUpdate(ctx, f.salon.ID, id)
		if err != nil {
			return err
		}
		effects, err := reservation.Transition(r, to, f.now)
		if err != nil {
			return err
		}
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}
		issued, err = f.ledger.Apply(ctx, tx, r, effects, f.now)
		return err
	})
	if err == nil {
		f.ledger.Deliver(issued)
	}
	return issued, err
}

// ======================================================
// Redemption authorization
// ======================================================

func TestIssue_ExactBalanceSucceeds(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 50, f.now.AddDate(0, -1, 0))
	start := f.now.Add(48 * time.Hour)
	r := f.reservation(reservation.StatusPending, 50, start)

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, issued)

	assert.True(t, points.ValidCode(issued.Code))

	auths := f.db.RedemptionAuths()
	require.Len(t, auths, 1)
	assert.Equal(t, 50, auths[0].Points)
	assert.Equal(t, start.Add(30*time.Minute), auths[0].ExpiresAt)
	assert.NotContains(t, auths[0].CodeDigest, issued.Code)

	require.Len(t, f.sender.msgs, 1)
	assert.Equal(t, "+5511999990000", f.sender.msgs[0].To)
	assert.Contains(t, f.sender.msgs[0].Body, issued.Code)
}

func TestIssue_InsufficientBalanceRollsBack(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 50, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 51, f.now.Add(48*time.Hour))

	_, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.Error(t, err)
	assert.True(t, httperrIs(err, "insufficient_points"))
	assert.Contains(t, err.Error(), "balance is 50 points, 51 requested")

	stored, _ := f.db.Reservation(r.ID)
	assert.Equal(t, string(reservation.StatusPending), stored.Status)
	assert.Nil(t, stored.ConfirmedAt)
	assert.Empty(t, f.db.RedemptionAuths())
	assert.Empty(t, f.sender.msgs)
}

func TestIssue_HeldPointsCountAgainstBalance(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 80, f.now.AddDate(0, -1, 0))

	first := f.reservation(reservation.StatusPending, 50, f.now.Add(24*time.Hour))
	second := f.reservation(reservation.StatusPending, 40, f.now.Add(48*time.Hour))

	_, err := f.transition(first.ID, reservation.StatusConfirmed)
	require.NoError(t, err)

	_, err = f.transition(second.ID, reservation.StatusConfirmed)
	assert.True(t, httperrIs(err, "insufficient_points"))
}

func TestIssue_RetriesOnDigestCollision(t *testing.T) {
	// AAAAAA collides with a live code, BBBBBB is free
	entropy := bytes.Repeat([]byte{0}, points.CodeLength)
	entropy = append(entropy, bytes.Repeat([]byte{1}, points.CodeLength)...)
	gen := points.NewCodeGenerator([]byte("test-secret"))

	f := newFixture(t)
	f.ledger.codes = gen.WithReader(bytes.NewReader(entropy))

	digest, err := gen.Digest("AAAAAA")
	require.NoError(t, err)
	other := f.reservation(reservation.StatusConfirmed, 0, f.now.Add(time.Hour))
	require.NoError(t, f.db.CreateRedemptionAuth(context.Background(), &models.PointRedemptionAuth{
		SalonID:       f.salon.ID,
		ReservationID: other.ID,
		CustomerID:    999,
		CodeDigest:    digest,
		ExpiresAt:     f.now.Add(time.Hour),
	}))

	f.db.SetPoints(f.salon.ID, f.customer.ID, 100, f.now)
	r := f.reservation(reservation.StatusPending, 10, f.now.Add(48*time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", issued.Code)
}

func TestIssue_ExhaustedEntropyFails(t *testing.T) {
	f := newFixture(t)
	f.ledger.codes = f.ledger.codes.WithReader(bytes.NewReader(nil))
	f.db.SetPoints(f.salon.ID, f.customer.ID, 100, f.now)
	r := f.reservation(reservation.StatusPending, 10, f.now.Add(48*time.Hour))

	_, err := f.transition(r.ID, reservation.StatusConfirmed)
	assert.Error(t, err)
	assert.Empty(t, f.db.RedemptionAuths())
}

// ======================================================
// Redeem
// ======================================================

func TestRedeem_RoundTripAndReplay(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 120, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(2*time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	in := RedeemInput{SalonID: f.salon.ID, ReservationID: r.ID, Code: " " + lower(issued.Code), Actor: staffActor}

	entry, err := f.ledger.RedeemPoints(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, -50, entry.Points)
	assert.Equal(t, models.TransactionUsed, entry.TransactionType)
	assert.Equal(t, 70, f.db.Balance(f.salon.ID, f.customer.ID))
	assert.Empty(t, f.db.RedemptionAuths())

	_, err = f.ledger.RedeemPoints(context.Background(), in)
	assert.ErrorIs(t, err, points.ErrCodeNotFound)
	assert.Equal(t, 70, f.db.Balance(f.salon.ID, f.customer.ID))
	assert.Len(t, f.db.Transactions(f.salon.ID, f.customer.ID), 2)
}

func TestRedeem_Rejections(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 200, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(time.Hour))
	other := f.reservation(reservation.StatusConfirmed, 0, f.now.Add(time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = f.ledger.RedeemPoints(ctx, RedeemInput{SalonID: f.salon.ID, ReservationID: r.ID, Code: "AB1", Actor: staffActor})
	assert.ErrorIs(t, err, points.ErrCodeFormat)

	_, err = f.ledger.RedeemPoints(ctx, RedeemInput{SalonID: f.salon.ID, ReservationID: other.ID, Code: issued.Code, Actor: staffActor})
	assert.ErrorIs(t, err, points.ErrCodeMismatch)

	_, err = f.ledger.RedeemPoints(ctx, RedeemInput{SalonID: f.salon.ID + 100, ReservationID: r.ID, Code: issued.Code, Actor: staffActor})
	assert.ErrorIs(t, err, points.ErrCodeNotFound)

	customer := reservation.Actor{UserID: 9, Role: reservation.RoleCustomer}
	_, err = f.ledger.RedeemPoints(ctx, RedeemInput{SalonID: f.salon.ID, ReservationID: r.ID, Code: issued.Code, Actor: customer})
	assert.ErrorIs(t, err, ErrStaffOnly)

	f.now = f.now.Add(time.Hour + 30*time.Minute)
	_, err = f.ledger.RedeemPoints(ctx, RedeemInput{SalonID: f.salon.ID, ReservationID: r.ID, Code: issued.Code, Actor: staffActor})
	assert.ErrorIs(t, err, points.ErrCodeExpired)

	assert.Equal(t, 200, f.db.Balance(f.salon.ID, f.customer.ID))
}

func TestRedeem_BalanceSpentElsewhere(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 60, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)

	f.db.SetPoints(f.salon.ID, f.customer.ID, 20, f.now)

	_, err = f.ledger.RedeemPoints(context.Background(), RedeemInput{
		SalonID: f.salon.ID, ReservationID: r.ID, Code: issued.Code, Actor: staffActor,
	})
	assert.True(t, httperrIs(err, "insufficient_points"))
	assert.Len(t, f.db.RedemptionAuths(), 1)
}

func TestCompletion_ExtendsPendingCode(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 60, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)

	// checkout runs long past start + grace
	f.now = f.now.Add(3 * time.Hour)
	_, err = f.transition(r.ID, reservation.StatusCompleted)
	require.NoError(t, err)

	auths := f.db.RedemptionAuths()
	require.Len(t, auths, 1)
	assert.Equal(t, f.now.Add(points.CheckoutWindowMinutes*time.Minute), auths[0].ExpiresAt)

	_, err = f.ledger.RedeemPoints(context.Background(), RedeemInput{
		SalonID: f.salon.ID, ReservationID: r.ID, Code: issued.Code, Actor: staffActor,
	})
	require.NoError(t, err)
}

func TestCompletion_ZeroGraceStillRedeemable(t *testing.T) {
	f := newFixture(t)
	f.db.SetPointConfig(models.PointConfig{SalonID: f.salon.ID, PointRate: 0.1})
	f.db.SetPoints(f.salon.ID, f.customer.ID, 60, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, r.StartTime, f.db.RedemptionAuths()[0].ExpiresAt)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.transition(r.ID, reservation.StatusCompleted)
	require.NoError(t, err)

	auths := f.db.RedemptionAuths()
	require.Len(t, auths, 1)
	assert.True(t, f.now.Before(auths[0].ExpiresAt))

	entry, err := f.ledger.RedeemPoints(context.Background(), RedeemInput{
		SalonID: f.salon.ID, ReservationID: r.ID, Code: issued.Code, Actor: staffActor,
	})
	require.NoError(t, err)
	assert.Equal(t, -50, entry.Points)
	assert.Equal(t, 10, f.db.Balance(f.salon.ID, f.customer.ID))
}

// ======================================================
// Reissue
// ======================================================

func TestReissue_ReplacesCode(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 60, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(time.Hour))

	first, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	fresh, err := f.ledger.ReissueCode(context.Background(), ReissueInput{
		SalonID: f.salon.ID, ReservationID: r.ID, Actor: staffActor,
	})
	require.NoError(t, err)

	auths := f.db.RedemptionAuths()
	require.Len(t, auths, 1)
	assert.Equal(t, f.now.Add(30*time.Minute), auths[0].ExpiresAt)
	assert.Len(t, f.sender.msgs, 2)

	if first.Code != fresh.Code {
		_, err = f.ledger.RedeemPoints(context.Background(), RedeemInput{
			SalonID: f.salon.ID, ReservationID: r.ID, Code: first.Code, Actor: staffActor,
		})
		assert.ErrorIs(t, err, points.ErrCodeNotFound)
	}

	_, err = f.ledger.RedeemPoints(context.Background(), RedeemInput{
		SalonID: f.salon.ID, ReservationID: r.ID, Code: fresh.Code, Actor: staffActor,
	})
	require.NoError(t, err)
}

func TestReissue_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.reservation(reservation.StatusPending, 50, f.now.Add(time.Hour))
	_, err := f.ledger.ReissueCode(ctx, ReissueInput{SalonID: f.salon.ID, ReservationID: pending.ID, Actor: staffActor})
	assert.ErrorIs(t, err, reservation.ErrInvalidTransition)

	noPoints := f.reservation(reservation.StatusConfirmed, 0, f.now.Add(time.Hour))
	_, err = f.ledger.ReissueCode(ctx, ReissueInput{SalonID: f.salon.ID, ReservationID: noPoints.ID, Actor: staffActor})
	assert.ErrorIs(t, err, points.ErrNoPointsUsed)

	_, err = f.ledger.ReissueCode(ctx, ReissueInput{
		SalonID: f.salon.ID, ReservationID: noPoints.ID, Actor: reservation.Actor{Role: reservation.RoleCustomer},
	})
	assert.ErrorIs(t, err, ErrStaffOnly)
}

// ======================================================
// Crediting
// ======================================================

func TestCredit_ScheduledAndSweptOnDate(t *testing.T) {
	f := newFixture(t)
	r := f.reservation(reservation.StatusConfirmed, 0, f.now.Add(-time.Hour))

	_, err := f.transition(r.ID, reservation.StatusCompleted)
	require.NoError(t, err)

	tasks := f.db.CreditTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, 100, tasks[0].Points)
	assert.Equal(t, time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC), tasks[0].ScheduledFor)

	f.now = time.Date(2026, 4, 15, 8, 59, 0, 0, time.UTC)
	applied, err := f.ledger.SweepCredits(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Len(t, f.db.CreditTasks(), 1)

	f.now = time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	applied, err = f.ledger.SweepCredits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Empty(t, f.db.CreditTasks())

	entries := f.db.Transactions(f.salon.ID, f.customer.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, 100, entries[0].Points)
	assert.Equal(t, models.TransactionEarned, entries[0].TransactionType)
	assert.Equal(t, 100, f.db.Balance(f.salon.ID, f.customer.ID))

	applied, err = f.ledger.SweepCredits(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Len(t, f.db.Transactions(f.salon.ID, f.customer.ID), 1)
}

func TestCredit_ExclusionsAndWalkIns(t *testing.T) {
	f := newFixture(t)
	f.db.AddPointExclusion(f.salon.ID, f.menu.ID)

	r := f.reservation(reservation.StatusConfirmed, 0, f.now)
	_, err := f.transition(r.ID, reservation.StatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, f.db.CreditTasks())

	walkIn := f.db.AddReservation(models.Reservation{
		SalonID:    f.salon.ID,
		Menus:      []models.MenuLine{{MenuID: f.menu.ID, Quantity: 1}},
		TotalPrice: 1000,
		Status:     string(reservation.StatusConfirmed),
		StartTime:  f.now,
		EndTime:    f.now.Add(time.Hour),
	})
	_, err = f.transition(walkIn.ID, reservation.StatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, f.db.CreditTasks())
}

func TestSweep_DropsTaskOfReservationNoLongerCompleted(t *testing.T) {
	f := newFixture(t)
	r := f.reservation(reservation.StatusConfirmed, 0, f.now)
	_, err := f.transition(r.ID, reservation.StatusCompleted)
	require.NoError(t, err)

	// refund races the sweep: the task survives the status change
	tasks := f.db.CreditTasks()
	require.Len(t, tasks, 1)
	stored, _ := f.db.Reservation(r.ID)
	stored.Status = string(reservation.StatusRefunded)
	require.NoError(t, f.db.UpdateReservation(context.Background(), &stored))

	f.db.AddCreditTask(models.PointCreditTask{
		SalonID: f.salon.ID, ReservationID: 9999, CustomerID: f.customer.ID, Points: 10, ScheduledFor: f.now,
	})

	f.now = tasks[0].ScheduledFor
	applied, err := f.ledger.SweepCredits(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Empty(t, f.db.CreditTasks())
	assert.Empty(t, f.db.Transactions(f.salon.ID, f.customer.ID))
}

func TestSweep_FailedTaskDoesNotBlockOthers(t *testing.T) {
	f := newFixture(t, WithBatchSize(1))
	first := f.reservation(reservation.StatusConfirmed, 0, f.now)
	second := f.reservation(reservation.StatusConfirmed, 0, f.now)
	_, err := f.transition(first.ID, reservation.StatusCompleted)
	require.NoError(t, err)
	_, err = f.transition(second.ID, reservation.StatusCompleted)
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 2, 0)
	f.db.FailOn("AppendTransaction", assert.AnError)
	applied, err := f.ledger.SweepCredits(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Len(t, f.db.CreditTasks(), 2)

	f.db.FailOn("AppendTransaction", nil)
	applied, err = f.ledger.SweepCredits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, 200, f.db.Balance(f.salon.ID, f.customer.ID))
}

func TestSweep_LockHeldElsewhere(t *testing.T) {
	locker := lock.NewLocal()
	f := newFixture(t, WithLocker(locker))

	release, err := locker.Acquire(context.Background(), creditSweepKey, time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = f.ledger.SweepCredits(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
}

// ======================================================
// Voiding
// ======================================================

func TestCancel_VoidsCreditAndCode(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 60, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(48*time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.transition(r.ID, reservation.StatusCancelled)
	require.NoError(t, err)

	assert.Empty(t, f.db.RedemptionAuths())
	_, err = f.ledger.RedeemPoints(context.Background(), RedeemInput{
		SalonID: f.salon.ID, ReservationID: r.ID, Code: issued.Code, Actor: staffActor,
	})
	assert.ErrorIs(t, err, points.ErrCodeNotFound)
	assert.Equal(t, 60, f.db.Balance(f.salon.ID, f.customer.ID))
}

func TestCancel_ReturnsRedeemedPoints(t *testing.T) {
	f := newFixture(t)
	f.db.SetPoints(f.salon.ID, f.customer.ID, 60, f.now.AddDate(0, -1, 0))
	r := f.reservation(reservation.StatusPending, 50, f.now.Add(time.Hour))

	issued, err := f.transition(r.ID, reservation.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.ledger.RedeemPoints(context.Background(), RedeemInput{
		SalonID: f.salon.ID, ReservationID: r.ID, Code: issued.Code, Actor: staffActor,
	})
	require.NoError(t, err)
	require.Equal(t, 10, f.db.Balance(f.salon.ID, f.customer.ID))

	_, err = f.transition(r.ID, reservation.StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, 60, f.db.Balance(f.salon.ID, f.customer.ID))
	entries := f.db.Transactions(f.salon.ID, f.customer.ID)
	last := entries[len(entries)-1]
	assert.Equal(t, models.TransactionAdjusted, last.TransactionType)
	assert.Equal(t, 50, last.Points)
}

func TestRefund_ReversesEarned(t *testing.T) {
	f := newFixture(t)
	r := f.reservation(reservation.StatusConfirmed, 0, f.now)
	_, err := f.transition(r.ID, reservation.StatusCompleted)
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 1, 0)
	applied, err := f.ledger.SweepCredits(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, applied)

	_, err = f.transition(r.ID, reservation.StatusRefunded)
	require.NoError(t, err)

	assert.Zero(t, f.db.Balance(f.salon.ID, f.customer.ID))
	assert.Zero(t, f.db.LedgerSum(f.salon.ID, f.customer.ID))
}

func TestRefund_BeforeSweepDropsTask(t *testing.T) {
	f := newFixture(t)
	r := f.reservation(reservation.StatusConfirmed, 0, f.now)
	_, err := f.transition(r.ID, reservation.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, f.db.CreditTasks(), 1)

	_, err = f.transition(r.ID, reservation.StatusRefunded)
	require.NoError(t, err)
	assert.Empty(t, f.db.CreditTasks())
	assert.Empty(t, f.db.Transactions(f.salon.ID, f.customer.ID))
}

// ======================================================
// Expiry
// ======================================================

func TestExpirePoints_IdleBalances(t *testing.T) {
	f := newFixture(t)
	f.db.SetPointConfig(models.PointConfig{SalonID: f.salon.ID, PointRate: 0.1, PointExpirationDays: 365})

	active := f.db.AddCustomer(f.salon.ID, "Bia", "")
	f.db.SetPoints(f.salon.ID, f.customer.ID, 300, f.now.AddDate(-2, 0, 0))
	f.db.SetPoints(f.salon.ID, active.ID, 150, f.now.AddDate(0, -1, 0))

	n, err := f.ledger.ExpirePoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Zero(t, f.db.Balance(f.salon.ID, f.customer.ID))
	assert.Equal(t, 150, f.db.Balance(f.salon.ID, active.ID))

	entries := f.db.Transactions(f.salon.ID, f.customer.ID)
	last := entries[len(entries)-1]
	assert.Equal(t, models.TransactionExpired, last.TransactionType)
	assert.Equal(t, -300, last.Points)

	n, err = f.ledger.ExpirePoints(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
