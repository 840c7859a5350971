package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the application logger: human-readable colored output for
// development, JSON for everything else.
func New(env string) *slog.Logger {
	if env == "dev" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", "weather-risk-service")
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(h).With("app", "weather-risk-service")
}
