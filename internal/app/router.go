package app

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fleetpay/internal/handler"
	"fleetpay/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler  *handler.PaymentHandler
	SettingsHandler *handler.SettingsHandler
	DriverHandler   *handler.DriverHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	AllowOrigins    []string
	Logger          zerolog.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.AllowOrigins)))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NoticeErrors())
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, middleware.DefaultIdempotencyTTL, deps.Logger))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("/preview", deps.PaymentHandler.Preview)
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.GET("", deps.PaymentHandler.ListPayments)
			payments.GET("/stats", deps.PaymentHandler.Stats)
			payments.GET("/return", deps.PaymentHandler.Return)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.POST("/:id/notifications", deps.PaymentHandler.ApplyNotification)
			payments.GET("/:id/receipt", deps.PaymentHandler.Receipt)
		}

		// Commission settings routes.
		settings := v1.Group("/commission-settings")
		{
			settings.GET("", deps.SettingsHandler.GetActive)
			settings.PUT("", deps.SettingsHandler.Update)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:name/earnings", deps.DriverHandler.GetEarnings)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", middleware.IdempotencyHeader, middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
