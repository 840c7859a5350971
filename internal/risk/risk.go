// Package risk derives short-term environmental risk scores from a single
// day's weather metrics. Scoring is pure and total: every input produces
// three scores clamped to [0,100].
package risk

import "github.com/akulkarni-dev/weather-risk-service/internal/common"

// DayMetrics is one day's raw inputs to the scorer.
type DayMetrics struct {
	TemperatureMax float64 // Celsius
	Precipitation  float64 // mm
	WindSpeed      float64 // km/h
	Humidity       float64 // percent
}

// Scores holds the three derived risk scores, each in [0,100].
type Scores struct {
	Flood    float64 `json:"flood_risk"`
	Storm    float64 `json:"storm_risk"`
	Wildfire float64 `json:"wildfire_risk"`
}

// Thresholds below which a risk stays at zero.
const (
	floodPrecipThreshold    = 30.0 // mm
	stormWindThreshold      = 25.0 // km/h
	wildfireTempThreshold   = 30.0 // Celsius
	wildfireHumidityCeiling = 30.0 // percent
)

// Score maps a day's metrics to flood, storm and wildfire risk.
//
// Wildfire risk is gated on hot and dry air (temperature above 30 with
// humidity below 30 percent) and carries a dryness bonus proportional to the
// humidity deficit.
func Score(m DayMetrics) Scores {
	var s Scores

	if m.Precipitation > floodPrecipThreshold {
		s.Flood = common.Clamp(m.Precipitation*1.5, 0, 100)
	}

	if m.WindSpeed > stormWindThreshold {
		s.Storm = common.Clamp((m.WindSpeed-stormWindThreshold)*3, 0, 100)
	}

	if m.TemperatureMax > wildfireTempThreshold && m.Humidity < wildfireHumidityCeiling {
		s.Wildfire = common.Clamp((m.TemperatureMax-wildfireTempThreshold)*2+(wildfireHumidityCeiling-m.Humidity), 0, 100)
	}

	return s
}
