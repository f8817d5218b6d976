package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
	"github.com/BruksfildServices01/salon-reserve/internal/store"
	"github.com/BruksfildServices01/salon-reserve/internal/timezone"
)

// Apply runs the ledger effects of one transition inside tx. A non-nil
// IssuedCode must be passed to Deliver after the transaction commits.
func (l *Ledger) Apply(
	ctx context.Context,
	tx store.Store,
	r *models.Reservation,
	effects []reservation.Effect,
	now time.Time,
) (*IssuedCode, error) {

	var issued *IssuedCode
	for _, eff := range effects {
		var err error
		switch eff {
		case reservation.EffectIssueRedemption:
			issued, err = l.issue(ctx, tx, r, now)
		case reservation.EffectScheduleCredit:
			err = l.scheduleCredit(ctx, tx, r, now)
		case reservation.EffectExtendRedemption:
			err = l.extendRedemption(ctx, tx, r, now)
		case reservation.EffectVoidLedger:
			err = l.void(ctx, tx, r, now)
		case reservation.EffectReverseEarned:
			err = l.reverseEarned(ctx, tx, r, now)
		default:
			err = fmt.Errorf("unknown ledger effect %q", eff)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", eff, err)
		}
	}
	return issued, nil
}

// --------------------------------------------------
// Redemption authorization
// --------------------------------------------------

// issue replaces any authorization of r with a fresh code. The customer
// must hold usePoints beyond what other live authorizations already hold.
func (l *Ledger) issue(
	ctx context.Context,
	tx store.Store,
	r *models.Reservation,
	now time.Time,
) (*IssuedCode, error) {

	if r.UsePoints <= 0 {
		return nil, points.ErrNoPointsUsed
	}
	if r.CustomerID == nil {
		return nil, reservation.ErrPointsRequireCustomer
	}
	customerID := *r.CustomerID

	customer, err := tx.GetCustomer(ctx, r.SalonID, customerID)
	if err != nil {
		return nil, err
	}

	cp, err := tx.GetCustomerPoints(ctx, r.SalonID, customerID)
	if err != nil {
		return nil, err
	}
	held, err := tx.SumHeldPoints(ctx, r.SalonID, customerID, r.ID, now)
	if err != nil {
		return nil, err
	}
	available := cp.TotalPoints - held
	if available < r.UsePoints {
		return nil, points.InsufficientBalance(available, r.UsePoints)
	}

	cfg, err := tx.GetPointConfig(ctx, r.SalonID)
	if err != nil {
		return nil, err
	}
	grace := points.DefaultRedemptionGrace
	if cfg != nil {
		grace = cfg.RedemptionGraceMinutes
	}

	code, digest, err := l.uniqueCode(ctx, tx, r.SalonID, now)
	if err != nil {
		return nil, err
	}

	if err := tx.DeleteRedemptionAuthsForReservation(ctx, r.ID); err != nil {
		return nil, err
	}

	auth := &models.PointRedemptionAuth{
		SalonID:       r.SalonID,
		ReservationID: r.ID,
		CustomerID:    customerID,
		CodeDigest:    digest,
		ExpiresAt:     points.RedemptionExpiry(r.StartTime, now, grace),
		Points:        r.UsePoints,
	}
	if err := tx.CreateRedemptionAuth(ctx, auth); err != nil {
		return nil, err
	}

	salon, err := tx.GetSalon(ctx, r.SalonID)
	if err != nil {
		return nil, err
	}

	return &IssuedCode{
		SalonID:       r.SalonID,
		ReservationID: r.ID,
		Code:          code,
		ExpiresAt:     auth.ExpiresAt.In(timezone.Location(salon.Timezone)),
		Phone:         customer.Phone,
	}, nil
}

// uniqueCode draws codes until none of the salon's live authorizations
// carries the same digest.
func (l *Ledger) uniqueCode(
	ctx context.Context,
	tx store.Store,
	salonID uint,
	now time.Time,
) (string, string, error) {

	for i := 0; i < maxCodeAttempts; i++ {
		code, err := l.codes.New()
		if err != nil {
			return "", "", err
		}
		digest, err := l.codes.Digest(code)
		if err != nil {
			return "", "", err
		}
		taken, err := tx.ActiveDigestExists(ctx, salonID, digest, now)
		if err != nil {
			return "", "", err
		}
		if !taken {
			return code, digest, nil
		}
	}
	return "", "", points.ErrCodeExhausted
}

// extendRedemption keeps a pending authorization consumable at checkout:
// its expiry moves to the checkout deadline when that is later.
func (l *Ledger) extendRedemption(
	ctx context.Context,
	tx store.Store,
	r *models.Reservation,
	now time.Time,
) error {

	auth, err := tx.FindRedemptionAuth(ctx, r.ID)
	if err != nil || auth == nil {
		return err
	}

	cfg, err := tx.GetPointConfig(ctx, r.SalonID)
	if err != nil {
		return err
	}
	grace := points.DefaultRedemptionGrace
	if cfg != nil {
		grace = cfg.RedemptionGraceMinutes
	}

	next := points.CheckoutExpiry(now, grace)
	if !next.After(auth.ExpiresAt) {
		return nil
	}
	auth.ExpiresAt = next
	return tx.UpdateRedemptionAuth(ctx, auth)
}

// --------------------------------------------------
// Crediting
// --------------------------------------------------

func (l *Ledger) scheduleCredit(
	ctx context.Context,
	tx store.Store,
	r *models.Reservation,
	now time.Time,
) error {

	if r.CustomerID == nil {
		return nil
	}

	cfg, err := tx.GetPointConfig(ctx, r.SalonID)
	if err != nil || cfg == nil {
		return err
	}

	earned, err := l.earnedFor(ctx, tx, cfg, r)
	if err != nil || earned == 0 {
		return err
	}

	salon, err := tx.GetSalon(ctx, r.SalonID)
	if err != nil {
		return err
	}

	completedAt := now
	if r.CompletedAt != nil {
		completedAt = *r.CompletedAt
	}

	task := &models.PointCreditTask{
		SalonID:       r.SalonID,
		ReservationID: r.ID,
		CustomerID:    *r.CustomerID,
		Points:        earned,
		ScheduledFor:  points.CreditDate(completedAt, timezone.Location(salon.Timezone)),
	}
	if err := tx.CreateCreditTask(ctx, task); err != nil {
		if errors.Is(err, points.ErrDuplicateTask) {
			l.log.Warn("credit task already scheduled", zap.Uint("reservation_id", r.ID))
			return nil
		}
		return err
	}
	return nil
}

// earnedFor prices the reservation lines against the catalog and applies
// the salon's point rules.
func (l *Ledger) earnedFor(
	ctx context.Context,
	tx store.Store,
	cfg *models.PointConfig,
	r *models.Reservation,
) (int, error) {

	menus, err := tx.ListMenus(ctx, r.SalonID, reservation.MenuIDs(r.Menus))
	if err != nil {
		return 0, err
	}
	options, err := tx.ListOptions(ctx, r.SalonID, reservation.OptionIDs(r.Options))
	if err != nil {
		return 0, err
	}
	excludedIDs, err := tx.ListPointExclusionMenuIDs(ctx, r.SalonID)
	if err != nil {
		return 0, err
	}

	menuByID := make(map[uint]models.Menu, len(menus))
	for _, m := range menus {
		menuByID[m.ID] = m
	}
	optionByID := make(map[uint]models.SalonOption, len(options))
	for _, o := range options {
		optionByID[o.ID] = o
	}
	excluded := make(map[uint]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}

	lines := make([]points.Line, 0, len(r.Menus)+len(r.Options))
	for _, ml := range r.Menus {
		if m, ok := menuByID[ml.MenuID]; ok {
			lines = append(lines, points.Line{MenuID: m.ID, Value: reservation.MenuItem(m, ml.Quantity).Price()})
		}
	}
	for _, ol := range r.Options {
		if o, ok := optionByID[ol.OptionID]; ok {
			lines = append(lines, points.Line{Value: reservation.OptionItem(o, ol.Quantity).Price()})
		}
	}

	return points.Earned(cfg, lines, excluded, r.TotalPrice), nil
}

// --------------------------------------------------
// Voiding
// --------------------------------------------------

// void drops pending ledger work of r and gives back points already used.
func (l *Ledger) void(
	ctx context.Context,
	tx store.Store,
	r *models.Reservation,
	now time.Time,
) error {

	if err := tx.DeleteCreditTasksForReservation(ctx, r.ID); err != nil {
		return err
	}
	if err := tx.DeleteRedemptionAuthsForReservation(ctx, r.ID); err != nil {
		return err
	}
	if r.CustomerID == nil {
		return nil
	}

	used, err := l.sumByType(ctx, tx, r.ID, models.TransactionUsed)
	if err != nil || used >= 0 {
		return err
	}

	_, err = post(ctx, tx, r.SalonID, *r.CustomerID, &r.ID, -used, models.TransactionAdjusted, now)
	return err
}

// reverseEarned takes back points credited for r. The reversal never
// drives the balance below zero.
func (l *Ledger) reverseEarned(
	ctx context.Context,
	tx store.Store,
	r *models.Reservation,
	now time.Time,
) error {

	if r.CustomerID == nil {
		return nil
	}

	earned, err := l.sumByType(ctx, tx, r.ID, models.TransactionEarned)
	if err != nil || earned <= 0 {
		return err
	}

	cp, err := tx.GetCustomerPoints(ctx, r.SalonID, *r.CustomerID)
	if err != nil {
		return err
	}
	reverse := earned
	if cp.TotalPoints < reverse {
		reverse = max(cp.TotalPoints, 0)
		l.log.Warn("earned points partly spent, reversing the remainder",
			zap.Uint("reservation_id", r.ID),
			zap.Int("earned", earned),
			zap.Int("reversed", reverse),
		)
	}
	if reverse == 0 {
		return nil
	}

	_, err = post(ctx, tx, r.SalonID, *r.CustomerID, &r.ID, -reverse, models.TransactionAdjusted, now)
	return err
}

func (l *Ledger) sumByType(
	ctx context.Context,
	tx store.Store,
	reservationID uint,
	kind string,
) (int, error) {

	entries, err := tx.ListReservationTransactions(ctx, reservationID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range entries {
		if e.TransactionType == kind {
			total += e.Points
		}
	}
	return total, nil
}
