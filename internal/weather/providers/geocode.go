package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

// GoogleGeocoder is a fallback geocoder backed by the Google Geocoding API.
// It is consulted only when the primary provider's geocoding is unavailable.
type GoogleGeocoder struct {
	forward func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder configures the underlying library with the API key.
// The library keeps the key in package state, so construct this once.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		forward: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleGeocoder) Geocode(_ context.Context, city string) (weather.GeoResult, error) {
	loc, err := g.forward(geocoder.Address{City: city})
	if err != nil {
		return weather.GeoResult{}, fmt.Errorf("%w: google geocoding: %v", weather.ErrUpstreamUnavailable, err)
	}

	result := weather.GeoResult{
		Name:      city,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}

	// The forward call yields coordinates only; the country comes from a
	// reverse lookup. Best effort: a failed reverse lookup leaves the
	// country empty rather than failing the whole fallback path.
	if addresses, err := g.reverse(loc); err == nil && len(addresses) > 0 {
		result.Country = addresses[0].Country
	}

	return result, nil
}
