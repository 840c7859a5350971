package risk

import (
	"math"
	"testing"
)

func TestFloodRisk(t *testing.T) {
	// At or below the 30mm threshold the risk stays zero.
	for _, p := range []float64{0, 10, 29.9, 30} {
		if got := Score(DayMetrics{Precipitation: p}).Flood; got != 0 {
			t.Errorf("flood risk for %vmm = %v, want 0", p, got)
		}
	}

	// Above the threshold it scales at 1.5x, clamped to 100.
	cases := []struct {
		precip float64
		want   float64
	}{
		{40, 60},
		{60, 90},
		{66.7, 100}, // 100.05 clamps
		{200, 100},
	}
	for _, c := range cases {
		if got := Score(DayMetrics{Precipitation: c.precip}).Flood; got != c.want {
			t.Errorf("flood risk for %vmm = %v, want %v", c.precip, got, c.want)
		}
	}
}

func TestFloodRiskMonotonic(t *testing.T) {
	prev := 0.0
	for p := 0.0; p <= 120; p += 0.5 {
		got := Score(DayMetrics{Precipitation: p}).Flood
		if got < prev {
			t.Fatalf("flood risk decreased at %vmm: %v < %v", p, got, prev)
		}
		prev = got
	}
}

func TestStormRisk(t *testing.T) {
	for _, w := range []float64{0, 24, 25} {
		if got := Score(DayMetrics{WindSpeed: w}).Storm; got != 0 {
			t.Errorf("storm risk for %v km/h = %v, want 0", w, got)
		}
	}

	cases := []struct {
		wind float64
		want float64
	}{
		{30, 15},
		{45, 60},
		{58.4, 100}, // (58.4-25)*3 = 100.2 clamps
		{90, 100},
	}
	for _, c := range cases {
		got := Score(DayMetrics{WindSpeed: c.wind}).Storm
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("storm risk for %v km/h = %v, want %v", c.wind, got, c.want)
		}
	}
}

func TestWildfireRisk(t *testing.T) {
	// Needs both heat and low humidity; either alone keeps the risk at zero.
	if got := Score(DayMetrics{TemperatureMax: 40, Humidity: 50}).Wildfire; got != 0 {
		t.Errorf("humid day should have zero wildfire risk, got %v", got)
	}
	if got := Score(DayMetrics{TemperatureMax: 25, Humidity: 10}).Wildfire; got != 0 {
		t.Errorf("cool day should have zero wildfire risk, got %v", got)
	}

	// (35-30)*2 + (30-20) = 20
	if got := Score(DayMetrics{TemperatureMax: 35, Humidity: 20}).Wildfire; got != 20 {
		t.Errorf("wildfire risk = %v, want 20", got)
	}

	// Extreme heat clamps at 100.
	if got := Score(DayMetrics{TemperatureMax: 80, Humidity: 5}).Wildfire; got != 100 {
		t.Errorf("wildfire risk = %v, want 100", got)
	}
}

func TestScoresBounded(t *testing.T) {
	extremes := []DayMetrics{
		{TemperatureMax: 500, Precipitation: 10000, WindSpeed: 1000, Humidity: -50},
		{TemperatureMax: -100, Precipitation: -5, WindSpeed: -10, Humidity: 200},
	}
	for _, m := range extremes {
		s := Score(m)
		for name, v := range map[string]float64{"flood": s.Flood, "storm": s.Storm, "wildfire": s.Wildfire} {
			if v < 0 || v > 100 {
				t.Errorf("%s risk out of range for %+v: %v", name, m, v)
			}
		}
	}
}
