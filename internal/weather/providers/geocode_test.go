package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/kelvins/geocoder"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

func TestGoogleGeocoderPopulatesCountry(t *testing.T) {
	g := &GoogleGeocoder{
		forward: func(addr geocoder.Address) (geocoder.Location, error) {
			if addr.City != "Lisbon" {
				t.Errorf("expected city Lisbon, got %q", addr.City)
			}
			return geocoder.Location{Latitude: 38.72, Longitude: -9.14}, nil
		},
		reverse: func(loc geocoder.Location) ([]geocoder.Address, error) {
			return []geocoder.Address{{City: "Lisbon", Country: "Portugal"}}, nil
		},
	}

	geo, err := g.Geocode(context.Background(), "Lisbon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if geo.Country != "Portugal" {
		t.Fatalf("expected country from reverse lookup, got %q", geo.Country)
	}
	if geo.Latitude != 38.72 || geo.Longitude != -9.14 {
		t.Fatalf("unexpected coordinates: %+v", geo)
	}
}

func TestGoogleGeocoderReverseFailureIsBestEffort(t *testing.T) {
	g := &GoogleGeocoder{
		forward: func(geocoder.Address) (geocoder.Location, error) {
			return geocoder.Location{Latitude: 38.72, Longitude: -9.14}, nil
		},
		reverse: func(geocoder.Location) ([]geocoder.Address, error) {
			return nil, errors.New("quota exceeded")
		},
	}

	geo, err := g.Geocode(context.Background(), "Lisbon")
	if err != nil {
		t.Fatalf("reverse lookup failure must not fail geocoding, got %v", err)
	}
	if geo.Country != "" {
		t.Fatalf("expected empty country when reverse lookup fails, got %q", geo.Country)
	}
	if geo.Latitude != 38.72 {
		t.Fatalf("expected coordinates preserved, got %+v", geo)
	}
}

func TestGoogleGeocoderForwardFailure(t *testing.T) {
	g := &GoogleGeocoder{
		forward: func(geocoder.Address) (geocoder.Location, error) {
			return geocoder.Location{}, errors.New("service unavailable")
		},
		reverse: func(geocoder.Location) ([]geocoder.Address, error) {
			t.Error("reverse lookup must not run after a forward failure")
			return nil, nil
		},
	}

	_, err := g.Geocode(context.Background(), "Lisbon")
	if !errors.Is(err, weather.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
