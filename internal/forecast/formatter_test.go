package forecast

import (
	"strings"
	"testing"
	"time"

	"github.com/akulkarni-dev/weather-risk-service/internal/common"
	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

func trainedResults() map[weather.Variable]VariableForecast {
	out := make(map[weather.Variable]VariableForecast)
	for _, v := range weather.Variables() {
		out[v] = VariableForecast{
			Variable: v,
			Values:   []float64{10.04, 11, 12, 13, 14, 15, 16},
			Status:   StatusTrained,
		}
	}
	return out
}

func TestFormatDailyDatesStartTomorrow(t *testing.T) {
	now := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

	entries, confidence := FormatDaily(trainedResults(), now)
	if len(entries) != DefaultHorizon {
		t.Fatalf("expected %d entries, got %d", DefaultHorizon, len(entries))
	}
	if confidence != ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", confidence)
	}

	if entries[0].Date != "2026-08-30" {
		t.Fatalf("expected first entry dated tomorrow, got %s", entries[0].Date)
	}
	if entries[0].Day != "Sunday" {
		t.Fatalf("expected Sunday, got %s", entries[0].Day)
	}
	if entries[6].Date != "2026-09-05" {
		t.Fatalf("expected last entry dated 2026-09-05, got %s", entries[6].Date)
	}
}

func TestFormatDailyAverageOfPresentedValues(t *testing.T) {
	results := trainedResults()
	results[weather.VarTemperatureMax] = VariableForecast{
		Variable: weather.VarTemperatureMax,
		Values:   []float64{20.06, 21, 22, 23, 24, 25, 26},
		Status:   StatusTrained,
	}
	results[weather.VarTemperatureMin] = VariableForecast{
		Variable: weather.VarTemperatureMin,
		Values:   []float64{10.04, 11, 12, 13, 14, 15, 16},
		Status:   StatusTrained,
	}

	entries, _ := FormatDaily(results, time.Now())
	temp := entries[0].Temperature
	if temp.Max != 20.1 || temp.Min != 10 {
		t.Fatalf("expected rounded max/min 20.1/10, got %v/%v", temp.Max, temp.Min)
	}
	// Average is computed over the values as presented, not the raw ones.
	if want := common.Round((temp.Max+temp.Min)/2, 1); temp.Average != want {
		t.Fatalf("expected average %v, got %v", want, temp.Average)
	}
}

func TestFormatDailyClampsPhysicalRanges(t *testing.T) {
	results := trainedResults()
	results[weather.VarPrecipitation] = VariableForecast{
		Variable: weather.VarPrecipitation,
		Values:   []float64{-2.4, 0, 0, 0, 0, 0, 0},
		Status:   StatusTrained,
	}
	results[weather.VarHumidity] = VariableForecast{
		Variable: weather.VarHumidity,
		Values:   []float64{112.7, 50, 50, 50, 50, 50, -3},
		Status:   StatusTrained,
	}

	entries, _ := FormatDaily(results, time.Now())
	if entries[0].Precipitation != 0 {
		t.Fatalf("expected negative precipitation clamped to 0, got %v", entries[0].Precipitation)
	}
	if entries[0].Humidity != 100 {
		t.Fatalf("expected humidity clamped to 100, got %v", entries[0].Humidity)
	}
	if entries[6].Humidity != 0 {
		t.Fatalf("expected humidity clamped to 0, got %v", entries[6].Humidity)
	}
}

func TestFormatDailyLowConfidenceOnAnyFailure(t *testing.T) {
	results := trainedResults()
	results[weather.VarWindSpeed] = VariableForecast{
		Variable: weather.VarWindSpeed,
		Values:   []float64{12, 12, 12, 12, 12, 12, 12},
		Status:   StatusFailed,
	}
	results[weather.VarPrecipitation] = VariableForecast{
		Variable: weather.VarPrecipitation,
		Values:   []float64{1, 1, 1, 1, 1, 1, 1},
		Status:   StatusFailed,
	}

	entries, confidence := FormatDaily(results, time.Now())
	if confidence != ConfidenceLow {
		t.Fatalf("expected low confidence, got %s", confidence)
	}
	for _, e := range entries {
		if e.Confidence != ConfidenceLow {
			t.Fatalf("expected every entry marked low, got %s", e.Confidence)
		}
		if !strings.Contains(e.ModelNotes, "precipitation, wind_speed") {
			t.Fatalf("expected failed variables listed in order, got %q", e.ModelNotes)
		}
	}
}

func TestStatusMap(t *testing.T) {
	results := trainedResults()
	results[weather.VarHumidity] = VariableForecast{
		Variable: weather.VarHumidity,
		Status:   StatusFailed,
	}

	m := StatusMap(results)
	if m["humidity"] != "failed" {
		t.Fatalf("expected humidity failed, got %s", m["humidity"])
	}
	if m["temperature_max"] != "trained" {
		t.Fatalf("expected temperature_max trained, got %s", m["temperature_max"])
	}
}
