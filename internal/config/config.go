package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned when a required upstream API key is not
// configured. The process refuses to start without it rather than failing on
// the first outbound call.
var ErrMissingCredential = errors.New("missing credential")

type AppConfig struct {
	// OpenWeatherAPIKey authenticates geocoding, current weather and the
	// live forecast calls. Required.
	OpenWeatherAPIKey string

	// GoogleGeocoderAPIKey enables the fallback geocoder. Optional.
	GoogleGeocoderAPIKey string

	// Outbound HTTP client timeout for provider calls.
	HTTPTimeout time.Duration

	// Background refresh intervals.
	CurrentRefreshInterval  time.Duration
	ForecastRefreshInterval time.Duration

	// Days of history fetched for statistical forecasting.
	HistoryLookbackDays int

	// SQLite database path.
	DBPath string

	// TTL for cached forecast responses.
	ResponseCacheTTL time.Duration

	// Env selects log output format ("dev" is human-readable).
	Env string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("%w: OPENWEATHER_API_KEY is not set", ErrMissingCredential)
	}

	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	// Current weather every 30 minutes, multi-day forecasts every 12 hours.
	cfg.CurrentRefreshInterval, err = getenvDuration("CURRENT_REFRESH_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	cfg.ForecastRefreshInterval, err = getenvDuration("FORECAST_REFRESH_INTERVAL", "12h")
	if err != nil {
		return nil, err
	}

	cfg.HistoryLookbackDays = getenvInt("HISTORY_LOOKBACK_DAYS", 60)
	if cfg.HistoryLookbackDays <= 0 {
		return nil, fmt.Errorf("HISTORY_LOOKBACK_DAYS must be positive")
	}

	cfg.DBPath = getenvDefault("DB_PATH", "weather.db")

	cfg.ResponseCacheTTL, err = getenvDuration("RESPONSE_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	cfg.Env = getenvDefault("APP_ENV", "dev")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
