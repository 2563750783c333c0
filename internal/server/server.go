// Package server wires the storage, service, and HTTP layers together and
// owns the process lifecycle.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	apihttp "github.com/harborcrest/pms/internal/http"
	"github.com/harborcrest/pms/internal/http/handlers"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/platform/mailer"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/internal/service"
	"github.com/harborcrest/pms/pkg/clock"
	"github.com/harborcrest/pms/pkg/config"
	"github.com/harborcrest/pms/pkg/events"
	"github.com/harborcrest/pms/pkg/logger"
)

// App holds everything with a lifecycle: the pool, the bus, the sweep
// loop, and the HTTP server.
type App struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	bus        events.Publisher
	redis      *redis.Client
	sweep      *service.SweepService
	nightAudit *service.NightAuditService
	srv        *http.Server
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	var bus events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		bus, err = events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			pool.Close()
			bus.Close()
			return nil, err
		}
		redisClient = redis.NewClient(opts)
	}

	sysClock := clock.System()

	usersRepo := postgres.NewUsersRepo(pool)
	guestsRepo := postgres.NewGuestsRepo(pool)
	rbacRepo := postgres.NewRBACRepo(pool)
	refreshRepo := postgres.NewRefreshRepo(pool)
	loyaltyRepo := postgres.NewLoyaltyRepo(pool)
	roomsRepo := postgres.NewRoomsRepo(pool)
	ratesRepo := postgres.NewRatesRepo(pool)
	bookingsRepo := postgres.NewBookingsRepo(pool)
	idempotencyRepo := postgres.NewIdempotencyRepo(pool)
	paymentsRepo := postgres.NewPaymentsRepo(pool)
	ledgerRepo := postgres.NewLedgerRepo(pool)
	nightAuditRepo := postgres.NewNightAuditRepo(pool)
	settingsRepo := postgres.NewSettingsRepo(pool)
	auditRepo := postgres.NewAuditRepo(pool)
	occupancyRepo := postgres.NewOccupancyRepo(pool)

	mail := mailer.New(cfg.Email.MailerSendKey, cfg.Email.FromAddress, cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.DevMode)

	auditLogs := service.NewAuditLogService(auditRepo)
	rbac := service.NewRBACService(pool, rbacRepo, auditLogs)
	identity := service.NewIdentityService(pool, usersRepo, guestsRepo, rbacRepo, refreshRepo, loyaltyRepo, mail, auditLogs, sysClock, cfg.Auth)
	guests := service.NewGuestService(guestsRepo, loyaltyRepo, sysClock)
	rooms := service.NewRoomService(roomsRepo, sysClock)
	rateplan := service.NewRatePlanService(ratesRepo, roomsRepo, sysClock)
	reservations := service.NewReservationService(pool, bookingsRepo, guestsRepo, roomsRepo, idempotencyRepo, rateplan, auditLogs, bus, sysClock, cfg.Auth)
	billing := service.NewBillingService(pool, paymentsRepo, bookingsRepo, guestsRepo, ledgerRepo, settingsRepo, auditLogs, bus, sysClock)
	nightAudit := service.NewNightAuditService(pool, nightAuditRepo, bookingsRepo, guestsRepo, ledgerRepo, auditLogs, bus, sysClock)
	occupancy := service.NewOccupancyService(occupancyRepo, sysClock)
	settings := service.NewSettingsService(settingsRepo, auditLogs)
	sweep := service.NewSweepService(bookingsRepo, settingsRepo, reservations, sysClock)

	guard := middleware.NewGuard(cfg.Auth.JWTSecret, rbac)
	limiter := middleware.NewRateLimiter(redisClient, 20, time.Minute)

	router := apihttp.NewRouter(cfg, apihttp.Handlers{
		Auth:       handlers.NewAuthHandler(identity, guard, limiter),
		RBAC:       handlers.NewRBACHandler(rbac, guard),
		Guests:     handlers.NewGuestsHandler(guests, guard),
		Rooms:      handlers.NewRoomsHandler(rooms, guard),
		RoomTypes:  handlers.NewRoomTypesHandler(rooms, guard),
		Rates:      handlers.NewRatesHandler(rateplan, guard),
		Bookings:   handlers.NewBookingsHandler(reservations, guard),
		Portal:     handlers.NewPortalHandler(reservations, limiter),
		Occupancy:  handlers.NewOccupancyHandler(occupancy, guard),
		Billing:    handlers.NewBillingHandler(billing, guard),
		NightAudit: handlers.NewNightAuditHandler(nightAudit, guard),
		Settings:   handlers.NewSettingsHandler(settings, guard),
		AuditLogs:  handlers.NewAuditLogsHandler(auditLogs, guard),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		pool:       pool,
		bus:        bus,
		redis:      redisClient,
		sweep:      sweep,
		nightAudit: nightAudit,
		srv:        srv,
	}, nil
}

// Pool exposes the connection pool for CLI subcommands that bypass HTTP.
func (a *App) Pool() *pgxpool.Pool { return a.pool }

// NightAudit exposes the audit service for the CLI run command.
func (a *App) NightAudit() *service.NightAuditService { return a.nightAudit }

// Run serves HTTP until ctx is cancelled, then drains connections.
func (a *App) Run(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	a.sweep.Start(sweepCtx, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
		}
	}
	if err := a.bus.Close(); err != nil {
		logger.Error("event bus close failed", "error", err)
	}
	a.pool.Close()
}
