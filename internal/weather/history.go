package weather

import "time"

// Variable names one of the daily weather series we model independently.
type Variable string

const (
	VarTemperatureMax Variable = "temperature_max"
	VarTemperatureMin Variable = "temperature_min"
	VarPrecipitation  Variable = "precipitation"
	VarWindSpeed      Variable = "wind_speed"
	VarHumidity       Variable = "humidity"
)

// Variables returns the modeled variables in canonical order.
func Variables() []Variable {
	return []Variable{
		VarTemperatureMax,
		VarTemperatureMin,
		VarPrecipitation,
		VarWindSpeed,
		VarHumidity,
	}
}

// History is a transient daily time series fetched for one coordinate pair.
// Each column has exactly one value per date; gaps in the provider data are
// marked NaN and filled later by the forecaster, not here.
type History struct {
	Dates  []time.Time
	Series map[Variable][]float64
}

// Len returns the number of days in the series.
func (h *History) Len() int {
	return len(h.Dates)
}
