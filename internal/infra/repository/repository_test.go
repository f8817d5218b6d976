package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-reserve/internal/models"
)

// sqlRecorder is a gorm logger keeping every statement gorm built.
type sqlRecorder struct {
	mu   sync.Mutex
	stmt []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...any)     {}
func (r *sqlRecorder) Warn(context.Context, string, ...any)     {}
func (r *sqlRecorder) Error(context.Context, string, ...any)    {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmt = append(r.stmt, sql)
}

func (r *sqlRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.stmt
	r.stmt = nil
	return out
}

// dryRunStore builds statements against the Postgres dialect without a
// server; nothing is executed.
func dryRunStore(t *testing.T) (*GormStore, *sqlRecorder) {
	t.Helper()

	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return NewGormStore(db, nil), rec
}

func TestLockForBooking_LocksSalonThenStaff(t *testing.T) {
	s, rec := dryRunStore(t)

	require.NoError(t, s.LockForBooking(context.Background(), 1, 2))

	stmts := rec.take()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], `FROM "salons"`)
	assert.True(t, strings.HasSuffix(stmts[0], "FOR UPDATE"), stmts[0])
	assert.Contains(t, stmts[1], `FROM "staffs"`)
	assert.True(t, strings.HasSuffix(stmts[1], "FOR UPDATE"), stmts[1])
}

func TestLockCreditTask_SkipsLockedRows(t *testing.T) {
	s, rec := dryRunStore(t)

	_, err := s.LockCreditTask(context.Background(), 9)
	require.NoError(t, err)

	stmts := rec.take()
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], `FROM "point_credit_tasks"`)
	assert.Contains(t, stmts[0], "FOR UPDATE SKIP LOCKED")
}

func TestCreateCreditTask_IgnoresDuplicates(t *testing.T) {
	s, rec := dryRunStore(t)

	_ = s.CreateCreditTask(context.Background(), &models.PointCreditTask{
		SalonID:       1,
		ReservationID: 5,
		Points:        100,
		ScheduledFor:  time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
	})

	stmts := rec.take()
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], `INSERT INTO "point_credit_tasks"`)
	assert.Contains(t, stmts[0], "ON CONFLICT DO NOTHING")
}

func TestGetCustomerPoints_SeedsThenLocks(t *testing.T) {
	s, rec := dryRunStore(t)

	_, err := s.GetCustomerPoints(context.Background(), 1, 3)
	require.NoError(t, err)

	stmts := rec.take()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], `INSERT INTO "customer_points"`)
	assert.Contains(t, stmts[0], "ON CONFLICT DO NOTHING")
	assert.Contains(t, stmts[1], `FROM "customer_points"`)
	assert.True(t, strings.HasSuffix(stmts[1], "FOR UPDATE"), stmts[1])
}

func TestFindRedemptionAuthByDigest_LocksRow(t *testing.T) {
	s, rec := dryRunStore(t)

	_, err := s.FindRedemptionAuthByDigest(context.Background(), 1, "abc")
	require.NoError(t, err)

	stmts := rec.take()
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "code_digest = 'abc'")
	assert.True(t, strings.HasSuffix(stmts[0], "FOR UPDATE"), stmts[0])
}

func TestListStaffReservations_OnlyOccupyingStatuses(t *testing.T) {
	s, rec := dryRunStore(t)

	from := time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC)
	_, err := s.ListStaffReservations(context.Background(), 2, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)

	stmts := rec.take()
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "status IN ('pending','confirmed','completed')")
	assert.Contains(t, stmts[0], "is_archive = false")
}
