// Package forecast implements the statistical forecasting pipeline: fitting
// an independent ARIMA model per weather variable over historical daily
// aggregates, formatting the projections into dated daily summaries, and
// combining them with the live provider forecast.
package forecast

import (
	"log/slog"
	"math"
	"sync"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

// ModelStatus tags how a variable's projection was produced.
type ModelStatus string

const (
	StatusTrained ModelStatus = "trained"
	StatusFailed  ModelStatus = "failed"
)

// DefaultHorizon is the number of days projected ahead.
const DefaultHorizon = 7

// minObservations is the fewest valid data points a variable needs before a
// model fit is attempted.
const minObservations = 30

// variableOrders fixes the ARIMA order per weather variable.
var variableOrders = map[weather.Variable]Order{
	weather.VarTemperatureMax: {P: 3, D: 1, Q: 2},
	weather.VarTemperatureMin: {P: 3, D: 1, Q: 2},
	weather.VarPrecipitation:  {P: 1, D: 1, Q: 1},
	weather.VarWindSpeed:      {P: 2, D: 1, Q: 1},
	weather.VarHumidity:       {P: 2, D: 1, Q: 1},
}

// VariableForecast is one variable's projection plus how it was obtained.
type VariableForecast struct {
	Variable weather.Variable
	Values   []float64 // length == horizon
	Status   ModelStatus
}

// ForecastVariables fits each variable's model independently and projects
// DefaultHorizon days ahead. A failure in one variable never aborts the
// others: the failed variable falls back to repeating its series mean and is
// tagged StatusFailed.
//
// The fits are CPU-bound and fully independent, so they run one goroutine
// per variable, each writing only its own result slot.
func ForecastVariables(history *weather.History, logger *slog.Logger) map[weather.Variable]VariableForecast {
	vars := weather.Variables()
	results := make([]VariableForecast, len(vars))

	var wg sync.WaitGroup
	for i, name := range vars {
		wg.Add(1)
		go func(i int, name weather.Variable) {
			defer wg.Done()
			results[i] = forecastOne(name, history.Series[name], logger)
		}(i, name)
	}
	wg.Wait()

	out := make(map[weather.Variable]VariableForecast, len(results))
	for _, r := range results {
		out[r.Variable] = r
	}
	return out
}

func forecastOne(name weather.Variable, raw []float64, logger *slog.Logger) VariableForecast {
	valid := 0
	var sum float64
	for _, v := range raw {
		if !math.IsNaN(v) {
			valid++
			sum += v
		}
	}

	mean := 0.0
	if valid > 0 {
		mean = sum / float64(valid)
	}

	if valid < minObservations {
		logger.Warn("insufficient history for variable, using mean fallback",
			"variable", name, "valid_points", valid, "required", minObservations)
		return VariableForecast{Variable: name, Values: repeat(mean, DefaultHorizon), Status: StatusFailed}
	}

	filled := fillGaps(raw)

	values, err := fitARIMAForecast(filled, variableOrders[name], DefaultHorizon)
	if err != nil {
		logger.Warn("model fit failed for variable, using mean fallback",
			"variable", name, "order", variableOrders[name].String(), "error", err)
		return VariableForecast{Variable: name, Values: repeat(mean, DefaultHorizon), Status: StatusFailed}
	}

	return VariableForecast{Variable: name, Values: values, Status: StatusTrained}
}

// fillGaps propagates the last valid value forward over gaps, then the first
// valid value backward over any leading gap. A series with no valid values
// at all comes back as zeros, but callers reject those before fitting.
func fillGaps(raw []float64) []float64 {
	out := append([]float64(nil), raw...)

	last := math.NaN()
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}

	// Leading gap: backfill from the first valid value.
	first := math.NaN()
	for _, v := range out {
		if !math.IsNaN(v) {
			first = v
			break
		}
	}
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = first
		} else {
			break
		}
	}

	if math.IsNaN(first) {
		for i := range out {
			out[i] = 0
		}
	}

	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
