package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/salon-reserve/internal/audit"
	"github.com/BruksfildServices01/salon-reserve/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-reserve/internal/db"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/handlers"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/lock"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/messaging"
	"github.com/BruksfildServices01/salon-reserve/internal/infra/repository"
	"github.com/BruksfildServices01/salon-reserve/internal/logger"
	"github.com/BruksfildServices01/salon-reserve/internal/metrics"
	"github.com/BruksfildServices01/salon-reserve/internal/middleware"
	"github.com/BruksfildServices01/salon-reserve/internal/routes"
	"github.com/BruksfildServices01/salon-reserve/internal/scheduler"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/booking"
	"github.com/BruksfildServices01/salon-reserve/internal/usecase/ledger"
)

func main() {

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {

	// ======================================================
	// STORAGE
	// ======================================================
	db, err := dbpkg.NewDB(cfg, zl)
	if err != nil {
		return err
	}
	store := repository.NewGormStore(db, zl)

	// ======================================================
	// AMBIENT
	// ======================================================
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	auditLog := audit.New(db)
	dispatcher := audit.NewDispatcher(auditLog, zl)

	var notifier messaging.Notifier = messaging.NewLogNotifier(zl)
	if cfg.TwilioEnabled() {
		notifier = messaging.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}
	outbox := messaging.NewOutbox(notifier, zl, m)

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		rl, err := lock.NewRedisFromURL(cfg.RedisURL, zl)
		if err != nil {
			return err
		}
		defer rl.Close()
		locker = rl
	}

	// ======================================================
	// USECASES
	// ======================================================
	led := ledger.New(
		store,
		points.NewCodeGenerator([]byte(cfg.RedemptionCodeSecret)),
		outbox,
		zl,
		ledger.WithLocker(locker),
		ledger.WithAudit(dispatcher),
		ledger.WithMetrics(m),
	)

	opts := []booking.Option{
		booking.WithAudit(dispatcher),
		booking.WithMetrics(m),
		booking.WithLogger(zl),
	}

	h := routes.Handlers{
		Reservations: handlers.NewReservationHandler(
			booking.NewResolveSlots(store, opts...),
			booking.NewCreateReservation(store, led, opts...),
			booking.NewTransitionReservation(store, led, opts...),
			booking.NewListStaffDay(store),
			zl,
		),
		Points:        handlers.NewPointsHandler(led, zl),
		Schedule:      handlers.NewScheduleHandler(booking.NewSchedule(store, opts...), zl),
		AuditLogs:     handlers.NewAuditLogsHandler(auditLog, zl),
		RedeemLimiter: middleware.NewRateLimiter(cfg.RedeemRatePerMinute, zl),
		Gatherer:      reg,
		JWTSecret:     cfg.JWTSecret,
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger(zl, m))
	routes.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched, err := scheduler.New(led, zl, cfg.CreditSweepCron, cfg.ExpirySweepCron)
	if err != nil {
		return err
	}

	// ======================================================
	// RUN
	// ======================================================
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error { return outbox.Run(gctx) })

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if cerr := dispatcher.Close(shutdownCtx); cerr != nil {
			zl.Warn("audit queue not drained", zap.Error(cerr))
		}
		return err
	})

	return g.Wait()
}
