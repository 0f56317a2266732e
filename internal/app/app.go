// Package app assembles the booking services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/auth"
	"github.com/Freeeeeet/boat_booking/internal/cache"
	"github.com/Freeeeeet/boat_booking/internal/config"
	"github.com/Freeeeeet/boat_booking/internal/controller/api"
	"github.com/Freeeeeet/boat_booking/internal/events"
	"github.com/Freeeeeet/boat_booking/internal/notify"
	"github.com/Freeeeeet/boat_booking/internal/payment"
	"github.com/Freeeeeet/boat_booking/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	logger *zap.Logger

	DB        *Database
	Schedules *service.ScheduleService
	Bookings  *service.BookingService
	Payments  *service.PaymentService

	closers []func() error
}

// New opens the datastore and the optional side channels and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	db, err := OpenDatabase(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	opts := []service.Option{
		service.WithLocation(cfg.Location),
		service.WithMaxCodeAttempts(cfg.BookingCodeAttempts),
	}
	sideChannels, err := a.openSideChannels(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	opts = append(opts, sideChannels...)

	var ledgerOpts []service.SeatLedgerOption
	if cfg.RestoreSeatsOnCancel {
		ledgerOpts = append(ledgerOpts, service.WithRestoreOnCancel())
	}

	a.Schedules = service.NewScheduleService(db.Store, logger, opts...)
	a.Bookings = service.NewBookingService(db.Store, service.NewSeatLedger(ledgerOpts...), logger, opts...)
	a.Payments = service.NewPaymentService(db.Store, payment.NewSimulatedGateway(cfg.PaymentSuccessRate), a.Bookings, logger, opts...)
	return a, nil
}

func (a *App) openSideChannels(ctx context.Context) ([]service.Option, error) {
	var opts []service.Option

	if a.cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis %s: %w", a.cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, rdb.Close)
		opts = append(opts, service.WithScheduleCache(cache.NewScheduleCache(rdb, a.cfg.CacheTTL, a.logger)))
		a.logger.Info("Schedule cache enabled", zap.String("redis_addr", a.cfg.RedisAddr), zap.Duration("ttl", a.cfg.CacheTTL))
	}

	if a.cfg.AMQPURL != "" {
		publisher, err := events.Dial(a.cfg.AMQPURL, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close)
		opts = append(opts, service.WithPublisher(publisher))
		a.logger.Info("Booking events enabled")
	}

	if a.cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(a.cfg.TelegramToken, a.cfg.TelegramAdminChatID, a.cfg.Location, a.logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithNotifier(notifier))
		a.logger.Info("Telegram notifications enabled", zap.Int64("chat_id", a.cfg.TelegramAdminChatID))
	}

	return opts, nil
}

// Router builds the HTTP API; it needs a JWT secret.
func (a *App) Router() (*gin.Engine, error) {
	if err := a.cfg.RequireJWTSecret(); err != nil {
		return nil, err
	}
	tokens, err := auth.NewIssuer(a.cfg.JWTSecret, a.cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(a.Schedules, a.Bookings, a.Payments, a.logger)
	return api.NewRouter(api.Config{AllowedOrigins: a.cfg.CORSAllowedOrigins}, handler, tokens), nil
}

// Serve runs the HTTP API and the reconcile scheduler until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	router, err := a.Router()
	if err != nil {
		return err
	}

	scheduler := NewScheduler(a.Schedules, a.cfg.ReconcileInterval, a.logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.cfg.HTTPAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}

// Close releases everything New opened, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
