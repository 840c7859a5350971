package forecast

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func syntheticSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 15 + 0.05*float64(i) + 4*math.Sin(float64(i)/4)
	}
	return out
}

func TestForecastOneInsufficientData(t *testing.T) {
	// 10 valid points out of 60; the rest are gaps.
	raw := make([]float64, 60)
	for i := range raw {
		raw[i] = math.NaN()
	}
	for i := 0; i < 10; i++ {
		raw[i*6] = 20
	}

	r := forecastOne(weather.VarPrecipitation, raw, discard)
	if r.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", r.Status)
	}
	if len(r.Values) != DefaultHorizon {
		t.Fatalf("expected %d fallback values, got %d", DefaultHorizon, len(r.Values))
	}
	for _, v := range r.Values {
		if v != 20 {
			t.Fatalf("expected mean fallback of 20, got %v", v)
		}
	}
}

func TestForecastOneConstantSeriesFallsBackToMean(t *testing.T) {
	raw := make([]float64, 60)
	for i := range raw {
		raw[i] = 7.5
	}

	// A constant series defeats the model fit but the fallback is exact.
	r := forecastOne(weather.VarWindSpeed, raw, discard)
	if r.Status != StatusFailed {
		t.Fatalf("expected failed status for constant series, got %s", r.Status)
	}
	for _, v := range r.Values {
		if v != 7.5 {
			t.Fatalf("expected fallback of 7.5, got %v", v)
		}
	}
}

func TestForecastOneTrained(t *testing.T) {
	r := forecastOne(weather.VarTemperatureMax, syntheticSeries(90), discard)
	if r.Status != StatusTrained {
		t.Fatalf("expected trained status, got %s", r.Status)
	}
	if len(r.Values) != DefaultHorizon {
		t.Fatalf("expected %d values, got %d", DefaultHorizon, len(r.Values))
	}
}

func TestForecastVariablesIsolatesFailures(t *testing.T) {
	n := 90
	hist := &weather.History{
		Dates:  make([]time.Time, n),
		Series: map[weather.Variable][]float64{},
	}
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		hist.Dates[i] = start.AddDate(0, 0, i)
	}
	for _, v := range weather.Variables() {
		hist.Series[v] = syntheticSeries(n)
	}

	// Starve one variable of data.
	sparse := make([]float64, n)
	for i := range sparse {
		sparse[i] = math.NaN()
	}
	sparse[0] = 3
	hist.Series[weather.VarPrecipitation] = sparse

	results := ForecastVariables(hist, discard)
	if len(results) != len(weather.Variables()) {
		t.Fatalf("expected a result per variable, got %d", len(results))
	}
	if results[weather.VarPrecipitation].Status != StatusFailed {
		t.Fatal("expected the starved variable to fail")
	}
	for _, v := range weather.Variables() {
		if v == weather.VarPrecipitation {
			continue
		}
		if results[v].Status != StatusTrained {
			t.Fatalf("expected %s to train despite sibling failure, got %s", v, results[v].Status)
		}
	}
}

func TestFillGaps(t *testing.T) {
	nan := math.NaN()

	got := fillGaps([]float64{nan, nan, 3, nan, 5, nan})
	want := []float64{3, 3, 3, 3, 5, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d: expected %v, got %v (full: %v)", i, want[i], got[i], got)
		}
	}
}

func TestFillGapsAllNaN(t *testing.T) {
	got := fillGaps([]float64{math.NaN(), math.NaN(), math.NaN()})
	for i, v := range got {
		if v != 0 {
			t.Fatalf("at %d: expected 0, got %v", i, v)
		}
	}
}

func TestFillGapsDoesNotMutateInput(t *testing.T) {
	raw := []float64{1, math.NaN(), 3}
	fillGaps(raw)
	if !math.IsNaN(raw[1]) {
		t.Fatal("fillGaps mutated its input")
	}
}
