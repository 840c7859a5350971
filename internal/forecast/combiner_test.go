package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

type stubHistorical struct {
	history *weather.History
	err     error
}

func (s *stubHistorical) DailyHistory(ctx context.Context, lat, lon float64, lookbackDays int) (*weather.History, error) {
	return s.history, s.err
}

type stubLive struct {
	periods []weather.ForecastPeriod
	err     error
}

func (s *stubLive) FiveDayForecast(ctx context.Context, lat, lon float64) ([]weather.ForecastPeriod, error) {
	return s.periods, s.err
}

func testHistory(n int) *weather.History {
	h := &weather.History{
		Dates:  make([]time.Time, n),
		Series: map[weather.Variable][]float64{},
	}
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		h.Dates[i] = start.AddDate(0, 0, i)
	}
	for _, v := range weather.Variables() {
		col := make([]float64, n)
		for i := range col {
			col[i] = 12 + 0.1*float64(i) + 3*math.Sin(float64(i)/4)
		}
		h.Series[v] = col
	}
	return h
}

func livePeriods(n int) []weather.ForecastPeriod {
	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	out := make([]weather.ForecastPeriod, n)
	for i := range out {
		out[i] = weather.ForecastPeriod{Datetime: base.Add(time.Duration(i*3) * time.Hour)}
	}
	return out
}

var testLocation = weather.Location{
	ID: 1, Name: "Lisbon", Country: "PT", Latitude: 38.72, Longitude: -9.14,
}

func TestModelForecastResponseShape(t *testing.T) {
	engine := NewEngine(&stubHistorical{history: testHistory(60)}, &stubLive{}, 60, discard)
	engine.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}

	out, err := engine.ModelForecast(context.Background(), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Location != "Lisbon" || out.Country != "PT" {
		t.Fatalf("unexpected location fields: %s/%s", out.Location, out.Country)
	}
	if out.ForecastType != "arima_statistical" {
		t.Fatalf("unexpected forecast type %q", out.ForecastType)
	}
	if out.HistoricalDataPoints != 60 {
		t.Fatalf("expected 60 historical points, got %d", out.HistoricalDataPoints)
	}
	if len(out.Forecast) != DefaultHorizon {
		t.Fatalf("expected %d forecast entries, got %d", DefaultHorizon, len(out.Forecast))
	}
	if out.Forecast[0].Date != "2026-08-30" {
		t.Fatalf("expected forecast to start tomorrow, got %s", out.Forecast[0].Date)
	}
	if len(out.ModelStatus) != len(weather.Variables()) {
		t.Fatalf("expected a status per variable, got %d", len(out.ModelStatus))
	}
}

func TestModelForecastHistoricalOutage(t *testing.T) {
	engine := NewEngine(&stubHistorical{err: weather.ErrUpstreamUnavailable}, &stubLive{}, 60, discard)

	_, err := engine.ModelForecast(context.Background(), testLocation)
	if !errors.Is(err, weather.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error to propagate, got %v", err)
	}
}

func TestCombinedBothSourcesHealthy(t *testing.T) {
	engine := NewEngine(
		&stubHistorical{history: testHistory(60)},
		&stubLive{periods: livePeriods(40)},
		60, discard)

	out, err := engine.Combined(context.Background(), testLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OpenWeatherMap.Available || !out.ARIMAAvailable {
		t.Fatal("expected both sources available")
	}
	if out.OpenWeatherMap.Days != 5 {
		t.Fatalf("expected 5 distinct days of live forecast, got %d", out.OpenWeatherMap.Days)
	}
}

func TestCombinedDegradesWhenHistoricalFails(t *testing.T) {
	engine := NewEngine(
		&stubHistorical{err: weather.ErrUpstreamUnavailable},
		&stubLive{periods: livePeriods(8)},
		60, discard)

	out, err := engine.Combined(context.Background(), testLocation)
	if err != nil {
		t.Fatalf("expected degraded response, got error %v", err)
	}
	if out.ARIMAAvailable || out.ARIMA != nil {
		t.Fatal("expected statistical forecast marked unavailable")
	}
	if !out.OpenWeatherMap.Available {
		t.Fatal("expected live forecast to remain available")
	}
}

func TestCombinedFailsWhenAllSourcesFail(t *testing.T) {
	engine := NewEngine(
		&stubHistorical{err: weather.ErrUpstreamUnavailable},
		&stubLive{err: weather.ErrUpstreamUnavailable},
		60, discard)

	_, err := engine.Combined(context.Background(), testLocation)
	if !errors.Is(err, ErrNoForecastAvailable) {
		t.Fatalf("expected ErrNoForecastAvailable, got %v", err)
	}
}

func TestDistinctDays(t *testing.T) {
	if got := distinctDays(livePeriods(8)); got != 1 {
		t.Fatalf("expected 1 distinct day, got %d", got)
	}
	if got := distinctDays(livePeriods(40)); got != 5 {
		t.Fatalf("expected 5 distinct days, got %d", got)
	}
}
