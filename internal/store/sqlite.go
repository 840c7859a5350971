// Package store persists locations and their weather rows in SQLite.
// Weather writes are idempotent upserts keyed by (location, timestamp,
// is_forecast), so the interactive path and the background refresh can write
// concurrently without coordination.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

// ErrNotFound is returned when no location matches a lookup.
var ErrNotFound = errors.New("location not found")

const schema = `
CREATE TABLE IF NOT EXISTS locations (
  id        INTEGER PRIMARY KEY AUTOINCREMENT,
  name      TEXT NOT NULL,
  country   TEXT NOT NULL DEFAULT '',
  latitude  REAL NOT NULL CHECK (latitude BETWEEN -90 AND 90),
  longitude REAL NOT NULL CHECK (longitude BETWEEN -180 AND 180),
  elevation REAL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_locations_name ON locations(name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS weather_data (
  location_id   INTEGER NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
  timestamp     TEXT NOT NULL,
  temperature   REAL NOT NULL,
  humidity      REAL NOT NULL CHECK (humidity BETWEEN 0 AND 100),
  wind_speed    REAL NOT NULL,
  precipitation REAL NOT NULL DEFAULT 0 CHECK (precipitation >= 0),
  weather_type  TEXT NOT NULL,
  is_forecast   INTEGER NOT NULL DEFAULT 0,
  forecast_day  INTEGER CHECK (forecast_day BETWEEN 0 AND 14),
  flood_risk    REAL NOT NULL DEFAULT 0,
  storm_risk    REAL NOT NULL DEFAULT 0,
  wildfire_risk REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (location_id, timestamp, is_forecast),
  CHECK (is_forecast = 1 OR forecast_day IS NULL)
);
CREATE INDEX IF NOT EXISTS idx_weather_data_ts ON weather_data(timestamp);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// FindByNameCI looks a location up by case-insensitive name.
func (s *Store) FindByNameCI(name string) (weather.Location, error) {
	row := s.db.QueryRow(
		`SELECT id, name, country, latitude, longitude, elevation
		 FROM locations WHERE name = ? COLLATE NOCASE`, name)
	return scanLocation(row)
}

// Create inserts a new location. The name is stored title-cased so repeated
// lookups with different casing converge on one row.
func (s *Store) Create(name, country string, lat, lon float64) (weather.Location, error) {
	name = titleCase(name)
	res, err := s.db.Exec(
		`INSERT INTO locations (name, country, latitude, longitude) VALUES (?, ?, ?, ?)`,
		name, country, lat, lon)
	if err != nil {
		return weather.Location{}, fmt.Errorf("create location: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return weather.Location{}, fmt.Errorf("create location: %w", err)
	}
	return weather.Location{ID: id, Name: name, Country: country, Latitude: lat, Longitude: lon}, nil
}

// UpdateCoordinates corrects a stored location's coordinates in place.
func (s *Store) UpdateCoordinates(id int64, lat, lon float64) error {
	_, err := s.db.Exec(`UPDATE locations SET latitude = ?, longitude = ? WHERE id = ?`, lat, lon, id)
	if err != nil {
		return fmt.Errorf("update coordinates: %w", err)
	}
	return nil
}

// ListLocations returns every stored location ordered by name.
func (s *Store) ListLocations() ([]weather.Location, error) {
	rows, err := s.db.Query(
		`SELECT id, name, country, latitude, longitude, elevation FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []weather.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// UpsertRecord inserts or replaces the weather row keyed by
// (location, timestamp, is_forecast). Last writer wins.
func (s *Store) UpsertRecord(locationID int64, rec weather.Record) error {
	var day interface{}
	if rec.IsForecast && rec.ForecastDay != nil {
		day = *rec.ForecastDay
	}

	_, err := s.db.Exec(`
		INSERT INTO weather_data
		  (location_id, timestamp, temperature, humidity, wind_speed, precipitation,
		   weather_type, is_forecast, forecast_day, flood_risk, storm_risk, wildfire_risk)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (location_id, timestamp, is_forecast) DO UPDATE SET
		  temperature = excluded.temperature,
		  humidity = excluded.humidity,
		  wind_speed = excluded.wind_speed,
		  precipitation = excluded.precipitation,
		  weather_type = excluded.weather_type,
		  forecast_day = excluded.forecast_day,
		  flood_risk = excluded.flood_risk,
		  storm_risk = excluded.storm_risk,
		  wildfire_risk = excluded.wildfire_risk`,
		locationID,
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Temperature,
		rec.Humidity,
		rec.WindSpeed,
		rec.Precipitation,
		string(rec.Condition),
		rec.IsForecast,
		day,
		rec.FloodRisk,
		rec.StormRisk,
		rec.WildfireRisk,
	)
	if err != nil {
		return fmt.Errorf("upsert weather record: %w", err)
	}
	return nil
}

// Records returns a location's rows in timestamp order.
func (s *Store) Records(locationID int64, forecastsOnly bool) ([]weather.Record, error) {
	query := `
		SELECT timestamp, temperature, humidity, wind_speed, precipitation,
		       weather_type, is_forecast, forecast_day, flood_risk, storm_risk, wildfire_risk
		FROM weather_data WHERE location_id = ?`
	if forecastsOnly {
		query += ` AND is_forecast = 1`
	}
	query += ` ORDER BY timestamp`

	rows, err := s.db.Query(query, locationID)
	if err != nil {
		return nil, fmt.Errorf("query weather records: %w", err)
	}
	defer rows.Close()

	var out []weather.Record
	for rows.Next() {
		var (
			rec  weather.Record
			ts   string
			cond string
			day  sql.NullInt64
		)
		if err := rows.Scan(&ts, &rec.Temperature, &rec.Humidity, &rec.WindSpeed,
			&rec.Precipitation, &cond, &rec.IsForecast, &day,
			&rec.FloodRisk, &rec.StormRisk, &rec.WildfireRisk); err != nil {
			return nil, fmt.Errorf("scan weather record: %w", err)
		}
		rec.Condition = weather.Condition(cond)
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse stored timestamp %q: %w", ts, err)
		}
		rec.Timestamp = parsed.UTC()
		if day.Valid {
			d := int(day.Int64)
			rec.ForecastDay = &d
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(row rowScanner) (weather.Location, error) {
	var (
		loc       weather.Location
		elevation sql.NullFloat64
	)
	err := row.Scan(&loc.ID, &loc.Name, &loc.Country, &loc.Latitude, &loc.Longitude, &elevation)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Location{}, ErrNotFound
	}
	if err != nil {
		return weather.Location{}, fmt.Errorf("scan location: %w", err)
	}
	if elevation.Valid {
		loc.Elevation = &elevation.Float64
	}
	return loc, nil
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
