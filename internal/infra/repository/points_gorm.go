package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// --------------------------------------------------
// Config
// --------------------------------------------------

func (s *GormStore) GetPointConfig(
	ctx context.Context,
	salonID uint,
) (*models.PointConfig, error) {

	var rows []models.PointConfig
	if err := s.db.WithContext(ctx).
		Where("salon_id = ? AND is_archive = false", salonID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *GormStore) ListPointExclusionMenuIDs(
	ctx context.Context,
	salonID uint,
) ([]uint, error) {

	var ids []uint
	if err := s.db.WithContext(ctx).
		Model(&models.PointExclusionMenu{}).
		Where("salon_id = ? AND is_archive = false", salonID).
		Pluck("menu_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *GormStore) ListExpiringPointConfigs(
	ctx context.Context,
) ([]models.PointConfig, error) {

	var rows []models.PointConfig
	if err := s.db.WithContext(ctx).
		Where("point_expiration_days > 0 AND is_archive = false").
		Order("salon_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Balance
// --------------------------------------------------

// GetCustomerPoints inserts a zero row when missing, then reads it FOR
// UPDATE so balance writers on the same customer queue behind each other.
func (s *GormStore) GetCustomerPoints(
	ctx context.Context,
	salonID uint,
	customerID uint,
) (*models.CustomerPoints, error) {

	seed := models.CustomerPoints{SalonID: salonID, CustomerID: customerID}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, err
	}

	var cp models.CustomerPoints
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("salon_id = ? AND customer_id = ?", salonID, customerID).
		First(&cp).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *GormStore) SaveCustomerPoints(
	ctx context.Context,
	cp *models.CustomerPoints,
) error {
	return s.db.WithContext(ctx).Save(cp).Error
}

func (s *GormStore) ListIdleBalances(
	ctx context.Context,
	salonID uint,
	idleSince time.Time,
) ([]models.CustomerPoints, error) {

	var rows []models.CustomerPoints
	if err := s.db.WithContext(ctx).
		Where(
			"salon_id = ? AND total_points > 0 AND is_archive = false AND last_transaction_date < ?",
			salonID, idleSince,
		).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Ledger
// --------------------------------------------------

func (s *GormStore) AppendTransaction(
	ctx context.Context,
	tx *models.PointTransaction,
) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

func (s *GormStore) ListReservationTransactions(
	ctx context.Context,
	reservationID uint,
) ([]models.PointTransaction, error) {

	var rows []models.PointTransaction
	if err := s.db.WithContext(ctx).
		Where("reservation_id = ? AND is_archive = false", reservationID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Credit tasks
// --------------------------------------------------

// CreateCreditTask relies on the unique reservation_id. ON CONFLICT keeps
// the surrounding transaction usable when the task already exists.
func (s *GormStore) CreateCreditTask(
	ctx context.Context,
	task *models.PointCreditTask,
) error {

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(task)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return points.ErrDuplicateTask
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return points.ErrDuplicateTask
	}
	return nil
}

func (s *GormStore) ListDueCreditTasks(
	ctx context.Context,
	now time.Time,
	afterID uint,
	limit int,
) ([]models.PointCreditTask, error) {

	var rows []models.PointCreditTask
	q := s.db.WithContext(ctx).
		Where("scheduled_for <= ? AND id > ?", now, afterID).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) LockCreditTask(
	ctx context.Context,
	id uint,
) (*models.PointCreditTask, error) {

	var rows []models.PointCreditTask
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *GormStore) DeleteCreditTask(
	ctx context.Context,
	id uint,
) error {
	return s.db.WithContext(ctx).Delete(&models.PointCreditTask{}, id).Error
}

func (s *GormStore) DeleteCreditTasksForReservation(
	ctx context.Context,
	reservationID uint,
) error {
	return s.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&models.PointCreditTask{}).Error
}

// --------------------------------------------------
// Redemption
// --------------------------------------------------

func (s *GormStore) CreateRedemptionAuth(
	ctx context.Context,
	auth *models.PointRedemptionAuth,
) error {
	return s.db.WithContext(ctx).Create(auth).Error
}

func (s *GormStore) FindRedemptionAuth(
	ctx context.Context,
	reservationID uint,
) (*models.PointRedemptionAuth, error) {

	var rows []models.PointRedemptionAuth
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reservation_id = ?", reservationID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *GormStore) FindRedemptionAuthByDigest(
	ctx context.Context,
	salonID uint,
	digest string,
) (*models.PointRedemptionAuth, error) {

	var rows []models.PointRedemptionAuth
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("salon_id = ? AND code_digest = ?", salonID, digest).
		Order("expires_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *GormStore) ActiveDigestExists(
	ctx context.Context,
	salonID uint,
	digest string,
	now time.Time,
) (bool, error) {

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.PointRedemptionAuth{}).
		Where("salon_id = ? AND code_digest = ? AND expires_at > ?", salonID, digest, now).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) SumHeldPoints(
	ctx context.Context,
	salonID uint,
	customerID uint,
	exceptReservationID uint,
	now time.Time,
) (int, error) {

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.PointRedemptionAuth{}).
		Select("COALESCE(SUM(points), 0)").
		Where(
			"salon_id = ? AND customer_id = ? AND reservation_id <> ? AND expires_at > ?",
			salonID, customerID, exceptReservationID, now,
		).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func (s *GormStore) UpdateRedemptionAuth(
	ctx context.Context,
	auth *models.PointRedemptionAuth,
) error {
	return s.db.WithContext(ctx).Save(auth).Error
}

func (s *GormStore) DeleteRedemptionAuth(
	ctx context.Context,
	id uint,
) error {
	return s.db.WithContext(ctx).Delete(&models.PointRedemptionAuth{}, id).Error
}

func (s *GormStore) DeleteRedemptionAuthsForReservation(
	ctx context.Context,
	reservationID uint,
) error {
	return s.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&models.PointRedemptionAuth{}).Error
}
