package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/akulkarni-dev/weather-risk-service/internal/api/http"
	"github.com/akulkarni-dev/weather-risk-service/internal/config"
	"github.com/akulkarni-dev/weather-risk-service/internal/forecast"
	"github.com/akulkarni-dev/weather-risk-service/internal/logging"
	"github.com/akulkarni-dev/weather-risk-service/internal/scheduler"
	"github.com/akulkarni-dev/weather-risk-service/internal/store"
	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
	"github.com/akulkarni-dev/weather-risk-service/internal/weather/providers"
)

func main() {
	// Load configuration; refuses to start without the provider API key.
	cfg, err := config.Load()
	if err != nil {
		logging.New("dev").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Env)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Persistent location/weather store.
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Upstream provider clients with resilience (backoff + circuit breaker
	// + rate limiting).
	owm := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey)
	openMeteo := providers.NewOpenMeteoClient(httpClient)

	var fallbackGeocoder weather.Geocoder
	if cfg.GoogleGeocoderAPIKey != "" {
		fallbackGeocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	}

	// Core service orchestrating resolution, fetching and persistence.
	service := weather.NewService(db, owm, fallbackGeocoder, log)

	// Statistical forecasting pipeline.
	engine := forecast.NewEngine(openMeteo, owm, cfg.HistoryLookbackDays, log)

	// Background refresh of stored weather for all known locations.
	sched := scheduler.New(service, cfg.CurrentRefreshInterval, cfg.ForecastRefreshInterval, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-risk-service",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-risk-service",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, engine, cfg.ResponseCacheTTL)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
