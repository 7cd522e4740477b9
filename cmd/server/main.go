package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fleetpay/internal/app"
	"fleetpay/internal/commission"
	"fleetpay/internal/config"
	"fleetpay/internal/handler"
	"fleetpay/internal/logger"
	internalRedis "fleetpay/internal/redis"
	"fleetpay/internal/repository/postgres"
	"fleetpay/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize New Relic")
		} else {
			log.Info().Str("app", cfg.NewRelic.AppName).Msg("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	var publisher service.Publisher
	rabbit, err := app.NewEventPublisher(cfg.RabbitMQ, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to RabbitMQ, payment events are only logged")
	} else if rabbit != nil {
		defer rabbit.Close()
		publisher = rabbit
	}

	server, err := wireServer(db, redisClient, publisher, nrApp, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire server")
	}

	// Start server in goroutine.
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info().Msg("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	publisher service.Publisher,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log zerolog.Logger,
) (*http.Server, error) {
	defaultPercentage, err := commission.ParsePercentage(cfg.Payment.DefaultCommissionPercentage)
	if err != nil {
		return nil, err
	}

	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	paymentRepo := postgres.NewPaymentRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	tripRepo := postgres.NewTripRepository(db)

	// Initialize services.
	notificationService := service.NewNotificationService(publisher, log)
	settingsService := service.NewSettingsService(settingsRepo, cacheStore, defaultPercentage, log)
	checkout := service.NewHostedCheckout(cfg.Payment.CheckoutBaseURL, cfg.Payment.ReturnBaseURL)
	paymentService := service.NewPaymentService(
		paymentRepo,
		tripRepo,
		lockStore,
		checkout,
		settingsService,
		notificationService,
		service.PaymentServiceConfig{
			Currency:        cfg.Payment.Currency,
			CheckoutLockTTL: cfg.Payment.CheckoutLockTTL,
		},
		log,
	)
	receiptService := service.NewReceiptService(paymentService)
	earningsService := service.NewEarningsService(paymentRepo, log)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		PaymentHandler:  handler.NewPaymentHandler(paymentService, receiptService),
		SettingsHandler: handler.NewSettingsHandler(settingsService),
		DriverHandler:   handler.NewDriverHandler(earningsService),
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		AllowOrigins:    cfg.Server.AllowOrigins,
		Logger:          log,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
