package weather

import (
	"context"
)

// GeoResult is a geocoding match for a city name.
type GeoResult struct {
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (GeoResult, error)
}

// Provider abstracts the live weather upstream (OpenWeatherMap).
type Provider interface {
	Geocoder
	CurrentWeather(ctx context.Context, lat, lon float64) (CurrentConditions, Record, error)
	FiveDayForecast(ctx context.Context, lat, lon float64) ([]ForecastPeriod, error)
	DailyForecast(ctx context.Context, lat, lon float64, days int) ([]DailyForecast, error)
}

// Store is the contract the persistent store must satisfy for the service
// and the background refresh.
type Store interface {
	FindByNameCI(name string) (Location, error)
	Create(name, country string, lat, lon float64) (Location, error)
	UpdateCoordinates(id int64, lat, lon float64) error
	ListLocations() ([]Location, error)
	UpsertRecord(locationID int64, rec Record) error
	Records(locationID int64, forecastsOnly bool) ([]Record, error)
}
