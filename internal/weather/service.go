package weather

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/akulkarni-dev/weather-risk-service/internal/risk"
)

// coordTolerance is the coordinate drift (degrees) beyond which a stored
// location's coordinates are corrected in place.
const coordTolerance = 0.001

// dailyForecastDays is how many days of provider daily forecast the
// background refresh keeps current, including today.
const dailyForecastDays = 16

// Service orchestrates location resolution, live weather fetches and
// persistence. The statistical pipeline lives in the forecast package and
// consumes locations resolved here.
type Service struct {
	store    Store
	provider Provider
	fallback Geocoder // optional, consulted when provider geocoding is down
	logger   *slog.Logger
}

func NewService(store Store, provider Provider, fallback Geocoder, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		provider: provider,
		fallback: fallback,
		logger:   logger,
	}
}

// ResolveLocation turns a city name into a stored Location. Unknown cities
// are created on first lookup; known ones get their coordinates corrected
// when a fresh geocode disagrees by more than the tolerance. When geocoding
// is unavailable a previously stored location is still usable.
func (s *Service) ResolveLocation(ctx context.Context, city string) (Location, error) {
	geo, geoErr := s.geocode(ctx, city)
	if geoErr != nil {
		if errors.Is(geoErr, ErrLocationNotFound) {
			return Location{}, geoErr
		}
		// Geocoding outage: fall back to what we already know.
		if loc, err := s.store.FindByNameCI(city); err == nil {
			s.logger.Warn("geocoding unavailable, using stored coordinates",
				"city", city, "error", geoErr)
			return loc, nil
		}
		return Location{}, geoErr
	}

	loc, err := s.store.FindByNameCI(city)
	if err != nil {
		created, createErr := s.store.Create(city, geo.Country, geo.Latitude, geo.Longitude)
		if createErr != nil {
			return Location{}, createErr
		}
		s.logger.Info("created location", "name", created.Name, "country", created.Country)
		return created, nil
	}

	if math.Abs(loc.Latitude-geo.Latitude) > coordTolerance ||
		math.Abs(loc.Longitude-geo.Longitude) > coordTolerance {
		if err := s.store.UpdateCoordinates(loc.ID, geo.Latitude, geo.Longitude); err != nil {
			return Location{}, err
		}
		s.logger.Info("corrected location coordinates", "name", loc.Name,
			"latitude", geo.Latitude, "longitude", geo.Longitude)
		loc.Latitude = geo.Latitude
		loc.Longitude = geo.Longitude
	}

	return loc, nil
}

func (s *Service) geocode(ctx context.Context, city string) (GeoResult, error) {
	geo, err := s.provider.Geocode(ctx, city)
	if err == nil || errors.Is(err, ErrLocationNotFound) || s.fallback == nil {
		return geo, err
	}

	s.logger.Warn("primary geocoder unavailable, trying fallback", "city", city, "error", err)
	return s.fallback.Geocode(ctx, city)
}

// CurrentWeather resolves the city, fetches live conditions and persists
// them as an observation row.
func (s *Service) CurrentWeather(ctx context.Context, city string) (CurrentConditions, error) {
	loc, err := s.ResolveLocation(ctx, city)
	if err != nil {
		return CurrentConditions{}, err
	}

	cc, obs, err := s.provider.CurrentWeather(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return CurrentConditions{}, err
	}
	cc.City = loc.Name
	cc.Country = loc.Country

	if err := s.store.UpsertRecord(loc.ID, obs); err != nil {
		// The caller still gets their weather; persistence is best effort
		// here because the background refresh will converge the row.
		s.logger.Error("failed to persist observation", "location", loc.Name, "error", err)
	}

	return cc, nil
}

// LiveForecast resolves the city and fetches the provider's 5-day 3-hourly
// forecast.
func (s *Service) LiveForecast(ctx context.Context, city string) (Location, []ForecastPeriod, error) {
	loc, err := s.ResolveLocation(ctx, city)
	if err != nil {
		return Location{}, nil, err
	}

	periods, err := s.provider.FiveDayForecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return Location{}, nil, err
	}
	return loc, periods, nil
}

// RiskOutlook aggregates the stored forecast rows for a city into a per-day
// risk summary. The rows are maintained by the background forecast refresh;
// a location refreshed at least once yields a populated outlook.
func (s *Service) RiskOutlook(ctx context.Context, city string) (RiskOutlook, error) {
	loc, err := s.ResolveLocation(ctx, city)
	if err != nil {
		return RiskOutlook{}, err
	}

	records, err := s.store.Records(loc.ID, true)
	if err != nil {
		return RiskOutlook{}, err
	}

	return AggregateRiskOutlook(loc, records), nil
}

// ListLocations returns every stored location.
func (s *Service) ListLocations() ([]Location, error) {
	return s.store.ListLocations()
}

// RefreshAllCurrent fetches and upserts current weather for every stored
// location. Per-location failures are logged and skipped; the batch always
// runs to completion.
func (s *Service) RefreshAllCurrent(ctx context.Context) {
	locations, err := s.store.ListLocations()
	if err != nil {
		s.logger.Error("current refresh: listing locations failed", "error", err)
		return
	}

	for _, loc := range locations {
		_, obs, err := s.provider.CurrentWeather(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			s.logger.Error("current refresh failed", "location", loc.Name, "error", err)
			continue
		}
		if err := s.store.UpsertRecord(loc.ID, obs); err != nil {
			s.logger.Error("current refresh upsert failed", "location", loc.Name, "error", err)
		}
	}
}

// RefreshAllDailyForecasts fetches the provider's multi-day daily forecast
// for every stored location, derives risk scores per day, and upserts the
// forecast rows. Per-location failures are logged and skipped.
func (s *Service) RefreshAllDailyForecasts(ctx context.Context) {
	locations, err := s.store.ListLocations()
	if err != nil {
		s.logger.Error("forecast refresh: listing locations failed", "error", err)
		return
	}

	for _, loc := range locations {
		days, err := s.provider.DailyForecast(ctx, loc.Latitude, loc.Longitude, dailyForecastDays)
		if err != nil {
			s.logger.Error("forecast refresh failed", "location", loc.Name, "error", err)
			continue
		}

		for i, day := range days {
			if i > 14 {
				break
			}
			scores := risk.Score(risk.DayMetrics{
				TemperatureMax: day.TemperatureMax,
				Precipitation:  day.Precipitation,
				WindSpeed:      day.WindSpeed,
				Humidity:       day.Humidity,
			})

			forecastDay := i
			rec := Record{
				Timestamp:     day.Timestamp,
				Temperature:   day.Temperature,
				Humidity:      day.Humidity,
				WindSpeed:     day.WindSpeed,
				Precipitation: day.Precipitation,
				Condition:     day.Condition,
				IsForecast:    true,
				ForecastDay:   &forecastDay,
				FloodRisk:     scores.Flood,
				StormRisk:     scores.Storm,
				WildfireRisk:  scores.Wildfire,
			}
			if err := s.store.UpsertRecord(loc.ID, rec); err != nil {
				s.logger.Error("forecast refresh upsert failed",
					"location", loc.Name, "day", i, "error", err)
			}
		}
	}
}
