package repository

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-reserve/internal/store"
)

const (
	maxTxAttempts = 3
	baseBackoff   = 20 * time.Millisecond
)

// GormStore implements store.Database on Postgres. The same type serves
// as the transaction-scoped Store handed to WithinTx callbacks.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormStore(db *gorm.DB, log *zap.Logger) *GormStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormStore{db: db, log: log}
}

// WithinTx runs fn in one database transaction. Serialization failures
// and deadlocks are retried with jittered backoff; any other error rolls
// back and is returned as is.
func (s *GormStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, tx store.Store) error,
) error {

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, &GormStore{db: tx, log: s.log})
		})
		if err == nil || !retryable(err) || attempt == maxTxAttempts {
			return err
		}

		wait := backoff(attempt)
		s.log.Warn("retrying transaction",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure ||
		pgErr.Code == pgerrcode.DeadlockDetected
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// backoff doubles per attempt with up to 50% jitter.
func backoff(attempt int) time.Duration {
	d := baseBackoff << (attempt - 1)
	return d + time.Duration(rand.Int64N(int64(d)/2+1))
}

// notFound maps gorm's sentinel to the domain one.
func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

var _ store.Database = (*GormStore)(nil)
