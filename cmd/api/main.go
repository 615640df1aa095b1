package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saludgo/platform/internal/accounts"
	"github.com/saludgo/platform/internal/analytics"
	"github.com/saludgo/platform/internal/api/router"
	"github.com/saludgo/platform/internal/app/bootstrap"
	"github.com/saludgo/platform/internal/appointments"
	"github.com/saludgo/platform/internal/campaigns"
	"github.com/saludgo/platform/internal/chatbot"
	"github.com/saludgo/platform/internal/community"
	appconfig "github.com/saludgo/platform/internal/config"
	"github.com/saludgo/platform/internal/events"
	"github.com/saludgo/platform/internal/facilities"
	"github.com/saludgo/platform/internal/http/handlers"
	"github.com/saludgo/platform/internal/meds"
	"github.com/saludgo/platform/internal/notify"
	"github.com/saludgo/platform/internal/observability/metrics"
	"github.com/saludgo/platform/internal/passwordreset"
	"github.com/saludgo/platform/pkg/logging"
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting saludgo API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence: Postgres when configured, in-memory otherwise.
	var pool *pgxpool.Pool
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(runCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		sqlDB, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database/sql handle", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sqlDB.Close() }()
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient := bootstrap.BuildRedisClient(runCtx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Accounts and sessions.
	var accountRepo accounts.Repository = accounts.NewInMemoryRepository()
	if pool != nil {
		accountRepo = accounts.NewPostgresRepository(pool)
	}
	accountSvc := accounts.NewService(accountRepo, cfg.SessionJWTSecret, cfg.SessionTTL, logger)

	// Notification pipeline: booking -> outbox/queue -> workers -> email.
	emailSender := bootstrap.BuildEmailSender(runCtx, cfg, logger)
	notifySvc := notify.NewService(emailSender, accountSvc, cfg.AdminEmail, logger)
	publisher, dispatcher, err := bootstrap.BuildNotifyPipeline(runCtx, cfg, notifySvc, logger)
	if err != nil {
		logger.Error("failed to build notification pipeline", "error", err)
		os.Exit(1)
	}
	go dispatcher.Start(runCtx)

	var outboxStore *events.OutboxStore
	if pool != nil {
		outboxStore = events.NewOutboxStore(pool)
		deliverer := events.NewDeliverer(outboxStore, publisher, logger)
		go deliverer.Start(runCtx)
	}
	enqueuer := notify.NewBookingEnqueuer(outboxStore, publisher)

	// Appointment admission.
	var store appointments.Store = appointments.NewMemoryStore()
	if pool != nil {
		store = appointments.NewPostgresStore(pool)
	}
	policy := appointments.NewPolicy(cfg.MaxAppointmentsPerDay)
	bookingSvc := appointments.NewService(store, policy, enqueuer, bookingMetrics, logger).
		WithLockWait(cfg.BookingLockWait)
	availability := appointments.NewAvailability(store, policy, cfg.AvailabilityHorizon, redisClient, logger)

	// Directory and campaign content.
	var facilityRepo facilities.Repository = facilities.NewInMemoryRepository()
	var campaignRepo campaigns.Repository = campaigns.NewInMemoryRepository()
	var communityRepo community.Repository = community.NewInMemoryRepository()
	var medsRepo meds.Repository = meds.NewInMemoryRepository()
	if pool != nil {
		facilityRepo = facilities.NewPostgresRepository(pool)
		campaignRepo = campaigns.NewPostgresRepository(pool)
		communityRepo = community.NewPostgresRepository(pool)
		medsRepo = meds.NewPostgresRepository(pool)
	}
	if cfg.Env == "development" {
		if err := facilities.SeedDemo(runCtx, facilityRepo); err != nil {
			logger.Warn("facility demo seed failed", "error", err)
		}
	}

	medsSvc := meds.NewService(medsRepo, emailSender, accountSvc, logger)

	var resetHandler *passwordreset.Handler
	if redisClient != nil {
		resetSvc := passwordreset.NewService(
			redisClient, accountSvc, accountSvc, emailSender,
			cfg.PublicBaseURL, cfg.ResetTokenTTL, logger,
		)
		resetHandler = passwordreset.NewHandler(resetSvc, logger)
	} else {
		logger.Warn("redis unavailable, password reset disabled")
	}

	var dashboardHandler *handlers.AdminDashboardHandler
	if sqlDB != nil {
		dashboardHandler = handlers.NewAdminDashboardHandler(sqlDB, logger)
	}

	analyticsSvc := analytics.NewService(
		analytics.FileDataset(cfg.PopulationCSVPath, cfg.PrecipitationCSVPath),
	)

	routerCfg := &router.Config{
		Logger:              logger,
		AccountsHandler:     accounts.NewHandler(accountSvc, logger),
		AppointmentsHandler: appointments.NewHandler(bookingSvc, availability, logger),
		PasswordReset:       resetHandler,
		FacilitiesHandler:   facilities.NewHandler(facilityRepo, logger),
		CampaignsHandler:    campaigns.NewHandler(campaignRepo, logger),
		CommunityHandler:    community.NewHandler(communityRepo, logger),
		ChatbotHandler:      chatbot.NewHandler(chatbot.NewResponder(redisClient, logger), logger),
		MedsHandler:         meds.NewHandler(medsSvc, logger),
		AnalyticsHandler:    analytics.NewHandler(analyticsSvc, logger),
		AdminDashboard:      dashboardHandler,
		LandingHandler:      handlers.NewLandingHandler(campaignRepo, facilityRepo, logger),
		TokenVerifier:       accountSvc,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-runCtx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
