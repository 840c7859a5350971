package forecast

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akulkarni-dev/weather-risk-service/internal/common"
	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

// Confidence labels for a modeled forecast response.
const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// DailyEntry is one formatted day of the modeled forecast.
type DailyEntry struct {
	Date          string             `json:"date"`
	Day           string             `json:"day"`
	Temperature   TemperatureSummary `json:"temperature"`
	Precipitation float64            `json:"precipitation"`
	WindSpeed     float64            `json:"wind_speed"`
	Humidity      float64            `json:"humidity"`
	Confidence    string             `json:"confidence"`
	ModelNotes    string             `json:"model_notes"`
}

// TemperatureSummary groups a day's projected temperatures.
type TemperatureSummary struct {
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Average float64 `json:"average"`
}

// ModelForecast is the full modeled-forecast response for one location.
type ModelForecast struct {
	Location             string              `json:"location"`
	Country              string              `json:"country"`
	Coordinates          weather.Coordinates `json:"coordinates"`
	ForecastType         string              `json:"forecast_type"`
	HistoricalDataPoints int                 `json:"historical_data_points"`
	ModelStatus          map[string]string   `json:"model_status"`
	Forecast             []DailyEntry        `json:"forecast"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// FormatDaily turns the per-variable projections into horizon dated entries
// starting tomorrow. Values are clamped to their physical ranges and rounded
// for presentation. Confidence is binary across the whole response: low if
// any variable's model failed, high only when all trained.
func FormatDaily(results map[weather.Variable]VariableForecast, now time.Time) ([]DailyEntry, string) {
	confidence := ConfidenceHigh
	var failed []string
	for _, name := range weather.Variables() {
		if results[name].Status == StatusFailed {
			confidence = ConfidenceLow
			failed = append(failed, string(name))
		}
	}
	sort.Strings(failed)

	notes := "all models trained"
	if len(failed) > 0 {
		notes = fmt.Sprintf("mean fallback for: %s", strings.Join(failed, ", "))
	}

	horizon := DefaultHorizon
	entries := make([]DailyEntry, 0, horizon)
	base := now.UTC()
	for i := 0; i < horizon; i++ {
		date := base.AddDate(0, 0, i+1)

		tmax := common.Round(value(results, weather.VarTemperatureMax, i), 1)
		tmin := common.Round(value(results, weather.VarTemperatureMin, i), 1)

		entries = append(entries, DailyEntry{
			Date: date.Format("2006-01-02"),
			Day:  date.Weekday().String(),
			Temperature: TemperatureSummary{
				Max:     tmax,
				Min:     tmin,
				Average: common.Round((tmax+tmin)/2, 1),
			},
			Precipitation: common.Round(common.ClampMin(value(results, weather.VarPrecipitation, i), 0), 2),
			WindSpeed:     common.Round(common.ClampMin(value(results, weather.VarWindSpeed, i), 0), 1),
			Humidity:      common.Round(common.Clamp(value(results, weather.VarHumidity, i), 0, 100), 1),
			Confidence:    confidence,
			ModelNotes:    notes,
		})
	}

	return entries, confidence
}

func value(results map[weather.Variable]VariableForecast, name weather.Variable, i int) float64 {
	r, ok := results[name]
	if !ok || i >= len(r.Values) {
		return 0
	}
	return r.Values[i]
}

// StatusMap flattens per-variable statuses for the response body.
func StatusMap(results map[weather.Variable]VariableForecast) map[string]string {
	out := make(map[string]string, len(results))
	for name, r := range results {
		out[string(name)] = string(r.Status)
	}
	return out
}
