// Package scheduler runs the periodic point sweeps on cron specs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-reserve/internal/usecase/ledger"
)

const jobTimeout = 5 * time.Minute

// Sweeper is implemented by *ledger.Ledger.
type Sweeper interface {
	SweepCredits(ctx context.Context) (int, error)
	ExpirePoints(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	log     *zap.Logger

	// base is replaced by Run; jobs fired before Run see Background.
	base context.Context
}

func New(sweeper Sweeper, log *zap.Logger, creditSpec, expirySpec string) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{sweeper: sweeper, log: log, base: context.Background()}

	clog := cronLogger{log: log.Sugar()}
	s.cron = cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)

	if _, err := s.cron.AddFunc(creditSpec, func() { s.run("credit", sweeper.SweepCredits) }); err != nil {
		return nil, fmt.Errorf("credit sweep spec %q: %w", creditSpec, err)
	}
	if _, err := s.cron.AddFunc(expirySpec, func() { s.run("expiry", sweeper.ExpirePoints) }); err != nil {
		return nil, fmt.Errorf("expiry sweep spec %q: %w", expirySpec, err)
	}
	return s, nil
}

// Run starts the cron loop and blocks until ctx ends, then waits for the
// running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.base = ctx
	s.cron.Start()
	s.log.Info("sweep scheduler started", zap.Int("jobs", len(s.cron.Entries())))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.log.Info("sweep scheduler stopped")
	return nil
}

func (s *Scheduler) run(name string, sweep func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(s.base, jobTimeout)
	defer cancel()

	log := s.log.With(zap.String("sweep", name), zap.String("run_id", uuid.NewString()))
	started := time.Now()

	n, err := sweep(ctx)
	switch {
	case errors.Is(err, ledger.ErrSweepInProgress):
		log.Info("sweep skipped, another run holds the lock")
	case err != nil:
		log.Error("sweep failed", zap.Error(err), zap.Int("applied", n))
	default:
		log.Info("sweep finished", zap.Int("applied", n), zap.Duration("took", time.Since(started)))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
