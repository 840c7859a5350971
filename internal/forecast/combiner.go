package forecast

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

// ErrNoForecastAvailable is returned by the combiner when every forecast
// source failed; a single failed source only degrades the response.
var ErrNoForecastAvailable = errors.New("no forecast source available")

// HistoricalSource provides daily historical aggregates for coordinates.
type HistoricalSource interface {
	DailyHistory(ctx context.Context, lat, lon float64, lookbackDays int) (*weather.History, error)
}

// LiveSource provides the short-range provider forecast for coordinates.
type LiveSource interface {
	FiveDayForecast(ctx context.Context, lat, lon float64) ([]weather.ForecastPeriod, error)
}

// Engine runs the forecast synthesis pipeline for a resolved location.
type Engine struct {
	historical   HistoricalSource
	live         LiveSource
	lookbackDays int
	logger       *slog.Logger
	now          func() time.Time
}

func NewEngine(historical HistoricalSource, live LiveSource, lookbackDays int, logger *slog.Logger) *Engine {
	return &Engine{
		historical:   historical,
		live:         live,
		lookbackDays: lookbackDays,
		logger:       logger,
		now:          time.Now,
	}
}

// ModelForecast runs the statistical pipeline: fetch history, fit a model
// per variable, format the projections. It fails only when the historical
// source is unavailable; model failures degrade to mean fallbacks instead.
func (e *Engine) ModelForecast(ctx context.Context, loc weather.Location) (*ModelForecast, error) {
	history, err := e.historical.DailyHistory(ctx, loc.Latitude, loc.Longitude, e.lookbackDays)
	if err != nil {
		return nil, err
	}

	results := ForecastVariables(history, e.logger)
	entries, _ := FormatDaily(results, e.now())

	return &ModelForecast{
		Location:             loc.Name,
		Country:              loc.Country,
		Coordinates:          weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude},
		ForecastType:         "arima_statistical",
		HistoricalDataPoints: history.Len(),
		ModelStatus:          StatusMap(results),
		Forecast:             entries,
		GeneratedAt:          e.now().UTC(),
	}, nil
}

// LiveBlock is the live-provider half of a combined response.
type LiveBlock struct {
	Available bool                     `json:"available"`
	Days      int                      `json:"days"`
	Data      []weather.ForecastPeriod `json:"data,omitempty"`
	Note      string                   `json:"note,omitempty"`
}

// CombinedForecast merges the live and modeled forecasts for one location.
type CombinedForecast struct {
	Location        string         `json:"location"`
	Country         string         `json:"country"`
	OpenWeatherMap  LiveBlock      `json:"openweathermap_forecast"`
	ARIMAAvailable  bool           `json:"arima_forecast_available"`
	ARIMA           *ModelForecast `json:"arima_forecast,omitempty"`
	ComparisonNotes string         `json:"comparison_notes"`
}

// Combined invokes both forecast sources for the same location. Either
// source failing alone degrades the response; only both failing is an error.
func (e *Engine) Combined(ctx context.Context, loc weather.Location) (*CombinedForecast, error) {
	out := &CombinedForecast{
		Location: loc.Name,
		Country:  loc.Country,
	}

	periods, liveErr := e.live.FiveDayForecast(ctx, loc.Latitude, loc.Longitude)
	if liveErr != nil {
		e.logger.Warn("live forecast unavailable", "location", loc.Name, "error", liveErr)
		out.OpenWeatherMap = LiveBlock{
			Available: false,
			Note:      "live provider forecast is currently unavailable",
		}
	} else {
		out.OpenWeatherMap = LiveBlock{
			Available: true,
			Days:      distinctDays(periods),
			Data:      periods,
		}
	}

	modeled, modelErr := e.ModelForecast(ctx, loc)
	if modelErr != nil {
		e.logger.Warn("modeled forecast unavailable", "location", loc.Name, "error", modelErr)
	} else {
		out.ARIMAAvailable = true
		out.ARIMA = modeled
	}

	if liveErr != nil && modelErr != nil {
		return nil, ErrNoForecastAvailable
	}

	switch {
	case liveErr != nil:
		out.ComparisonNotes = "statistical forecast only; live provider forecast unavailable"
	case modelErr != nil:
		out.ComparisonNotes = "live provider forecast only; statistical forecast unavailable"
	default:
		out.ComparisonNotes = "live forecast covers 5 days at 3-hour resolution; statistical forecast covers 7 daily aggregates"
	}

	return out, nil
}

func distinctDays(periods []weather.ForecastPeriod) int {
	seen := make(map[string]struct{})
	for _, p := range periods {
		seen[p.Datetime.Format("2006-01-02")] = struct{}{}
	}
	return len(seen)
}
