package weather

import (
	"time"
)

// Condition is the normalized weather condition taxonomy. Every provider
// code maps into exactly one of these values.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionCloudy       Condition = "Cloudy"
	ConditionRain         Condition = "Rain"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionFog          Condition = "Fog"
)

// NormalizeConditionCode maps an OpenWeatherMap numeric condition id into the
// closed taxonomy using the provider's documented range buckets. Total
// function: every integer maps somewhere, unknown ranges land on Cloudy.
func NormalizeConditionCode(code int) Condition {
	switch {
	case code >= 200 && code < 300:
		return ConditionThunderstorm
	case code >= 300 && code < 600:
		return ConditionRain
	case code >= 600 && code < 700:
		return ConditionSnow
	case code >= 700 && code < 800:
		return ConditionFog
	case code == 800:
		return ConditionClear
	default:
		return ConditionCloudy
	}
}

// Location is a named place we track weather for. Identity is the
// case-insensitive name plus country; coordinates are bounded to valid
// geographic ranges by the store schema.
type Location struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// Record is a single stored observation or forecast row for a location.
// ForecastDay is set only when IsForecast is true.
type Record struct {
	Timestamp     time.Time `json:"timestamp"` // always UTC
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"` // km/h
	Precipitation float64   `json:"precipitation"`
	Condition     Condition `json:"weather_type"`
	IsForecast    bool      `json:"is_forecast"`
	ForecastDay   *int      `json:"forecast_day,omitempty"` // 0-14, forecasts only
	FloodRisk     float64   `json:"flood_risk"`
	StormRisk     float64   `json:"storm_risk"`
	WildfireRisk  float64   `json:"wildfire_risk"`
}

// CurrentConditions is the live current-weather view returned by the
// current-weather endpoint, assembled from the provider payload.
type CurrentConditions struct {
	City        string           `json:"city"`
	Country     string           `json:"country"`
	Coordinates Coordinates      `json:"coordinates"`
	Weather     ConditionSummary `json:"weather"`
	Temperature TemperatureBlock `json:"temperature"`
	Humidity    float64          `json:"humidity"`
	Wind        WindBlock        `json:"wind"`
	Visibility  int              `json:"visibility"`
	Clouds      int              `json:"clouds"`
	Sunrise     string           `json:"sunrise"` // HH:MM UTC
	Sunset      string           `json:"sunset"`  // HH:MM UTC
	LastUpdated time.Time        `json:"last_updated"`
}

// Coordinates pairs latitude and longitude for API responses.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ConditionSummary carries the provider's human-readable condition fields.
type ConditionSummary struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// TemperatureBlock groups the current temperature readings.
type TemperatureBlock struct {
	Current   float64 `json:"current"`
	FeelsLike float64 `json:"feels_like"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// WindBlock groups wind speed and direction.
type WindBlock struct {
	Speed     float64 `json:"speed"`
	Direction int     `json:"direction"`
}

// ForecastPeriod is one 3-hourly entry of the live 5-day forecast.
type ForecastPeriod struct {
	Datetime      time.Time        `json:"datetime"`
	Temperature   float64          `json:"temperature"`
	FeelsLike     float64          `json:"feels_like"`
	Weather       ConditionSummary `json:"weather"`
	Humidity      float64          `json:"humidity"`
	WindSpeed     float64          `json:"wind_speed"`
	Precipitation float64          `json:"precipitation"`
}

// DailyForecast is one day of the provider's multi-day daily forecast used by
// the background refresh, already converted to storage units.
type DailyForecast struct {
	Timestamp      time.Time
	Temperature    float64 // midpoint of the day's max/min
	TemperatureMax float64
	TemperatureMin float64
	Humidity       float64
	WindSpeed      float64 // km/h
	Precipitation  float64
	Condition      Condition
}
