package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

const owmIconURL = "https://openweathermap.org/img/wn/%s@2x.png"

// maxForecastPeriods caps the 3-hourly forecast at 5 days.
const maxForecastPeriods = 40

// OpenWeatherClient talks to the OpenWeatherMap geocoding, current weather
// and forecast endpoints. All methods are safe for concurrent use.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	geoURL  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewOpenWeatherClient builds a client. The API key is required by every
// endpoint and is injected here rather than read from the environment.
func NewOpenWeatherClient(client *http.Client, apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		geoURL:  "https://api.openweathermap.org/geo/1.0/direct",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newCircuitBreaker("openweather"),
		// Free tier allows 60 calls/minute; stay safely under it.
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// Geocode resolves a city name to coordinates. weather.ErrLocationNotFound means the
// provider answered but knows no such city; weather.ErrUpstreamUnavailable covers
// transport and payload failures.
func (c *OpenWeatherClient) Geocode(ctx context.Context, city string) (weather.GeoResult, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("limit", "1")
		values.Set("appid", c.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", c.geoURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.limiter, c.circuit, buildRequest)
	if err != nil {
		return weather.GeoResult{}, fmt.Errorf("%w: geocoding: %v", weather.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var payload []struct {
		Name    string  `json:"name"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.GeoResult{}, fmt.Errorf("%w: geocoding payload: %v", weather.ErrUpstreamUnavailable, err)
	}

	if len(payload) == 0 {
		return weather.GeoResult{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, city)
	}

	return weather.GeoResult{
		Name:      payload[0].Name,
		Country:   payload[0].Country,
		Latitude:  payload[0].Lat,
		Longitude: payload[0].Lon,
	}, nil
}

// CurrentWeather fetches live conditions for a coordinate pair. Alongside
// the presentation view it returns the same reading as a storable
// observation record, with wind converted from m/s to km/h.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, lat, lon float64) (weather.CurrentConditions, weather.Record, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("appid", c.apiKey)
		values.Set("units", "metric")
		values.Set("lang", "en")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/weather?%s", c.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.limiter, c.circuit, buildRequest)
	if err != nil {
		return weather.CurrentConditions{}, weather.Record{}, fmt.Errorf("%w: current weather: %v", weather.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Weather []struct {
			ID          int    `json:"id"`
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   int     `json:"deg"`
		} `json:"wind"`
		Rain struct {
			OneH float64 `json:"1h"`
		} `json:"rain"`
		Visibility int `json:"visibility"`
		Clouds     struct {
			All int `json:"all"`
		} `json:"clouds"`
		Sys struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Dt int64 `json:"dt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.CurrentConditions{}, weather.Record{}, fmt.Errorf("%w: current weather payload: %v", weather.ErrUpstreamUnavailable, err)
	}
	if len(payload.Weather) == 0 {
		return weather.CurrentConditions{}, weather.Record{}, fmt.Errorf("%w: current weather payload missing weather block", weather.ErrUpstreamUnavailable)
	}

	cond := payload.Weather[0]
	cc := weather.CurrentConditions{
		Coordinates: weather.Coordinates{Latitude: lat, Longitude: lon},
		Weather: weather.ConditionSummary{
			Main:        cond.Main,
			Description: cond.Description,
			Icon:        fmt.Sprintf(owmIconURL, cond.Icon),
		},
		Temperature: weather.TemperatureBlock{
			Current:   payload.Main.Temp,
			FeelsLike: payload.Main.FeelsLike,
			Min:       payload.Main.TempMin,
			Max:       payload.Main.TempMax,
		},
		Humidity:    payload.Main.Humidity,
		Wind:        weather.WindBlock{Speed: payload.Wind.Speed, Direction: payload.Wind.Deg},
		Visibility:  payload.Visibility,
		Clouds:      payload.Clouds.All,
		Sunrise:     time.Unix(payload.Sys.Sunrise, 0).UTC().Format("15:04"),
		Sunset:      time.Unix(payload.Sys.Sunset, 0).UTC().Format("15:04"),
		LastUpdated: time.Unix(payload.Dt, 0).UTC(),
	}

	obs := weather.Record{
		Timestamp:     cc.LastUpdated,
		Temperature:   cc.Temperature.Current,
		Humidity:      cc.Humidity,
		WindSpeed:     cc.Wind.Speed * 3.6,
		Precipitation: payload.Rain.OneH,
		Condition:     weather.NormalizeConditionCode(cond.ID),
	}

	return cc, obs, nil
}

// FiveDayForecast fetches the 3-hourly forecast and returns at most 40
// periods (5 days). Any transport or payload failure is a request-level
// failure; there is no partial result.
func (c *OpenWeatherClient) FiveDayForecast(ctx context.Context, lat, lon float64) ([]weather.ForecastPeriod, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("appid", c.apiKey)
		values.Set("units", "metric")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/forecast?%s", c.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.limiter, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: live forecast: %v", weather.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
				Humidity  float64 `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
				Icon        string `json:"icon"`
			} `json:"weather"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Rain struct {
				ThreeH float64 `json:"3h"`
			} `json:"rain"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: live forecast payload: %v", weather.ErrUpstreamUnavailable, err)
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("%w: live forecast payload has no periods", weather.ErrUpstreamUnavailable)
	}

	periods := make([]weather.ForecastPeriod, 0, maxForecastPeriods)
	for _, entry := range payload.List {
		if len(periods) >= maxForecastPeriods {
			break
		}
		p := weather.ForecastPeriod{
			Datetime:      time.Unix(entry.Dt, 0).UTC(),
			Temperature:   entry.Main.Temp,
			FeelsLike:     entry.Main.FeelsLike,
			Humidity:      entry.Main.Humidity,
			WindSpeed:     entry.Wind.Speed,
			Precipitation: entry.Rain.ThreeH, // zero when absent
		}
		if len(entry.Weather) > 0 {
			p.Weather = weather.ConditionSummary{
				Main:        entry.Weather[0].Main,
				Description: entry.Weather[0].Description,
				Icon:        fmt.Sprintf(owmIconURL, entry.Weather[0].Icon),
			}
		}
		periods = append(periods, p)
	}

	return periods, nil
}

// DailyForecast fetches the provider's daily forecast for up to 16 days
// (including today), converting wind to km/h. Used by the background refresh
// to keep multi-day forecast rows current.
func (c *OpenWeatherClient) DailyForecast(ctx context.Context, lat, lon float64, days int) ([]weather.DailyForecast, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("cnt", fmt.Sprintf("%d", days))
		values.Set("appid", c.apiKey)
		values.Set("units", "metric")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s/forecast/daily?%s", c.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.limiter, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: daily forecast: %v", weather.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Temp struct {
				Max float64 `json:"max"`
				Min float64 `json:"min"`
			} `json:"temp"`
			Humidity float64 `json:"humidity"`
			Speed    float64 `json:"speed"`
			Rain     float64 `json:"rain"`
			Weather  []struct {
				ID int `json:"id"`
			} `json:"weather"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: daily forecast payload: %v", weather.ErrUpstreamUnavailable, err)
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("%w: daily forecast payload has no days", weather.ErrUpstreamUnavailable)
	}

	forecasts := make([]weather.DailyForecast, 0, len(payload.List))
	for _, day := range payload.List {
		cond := weather.ConditionCloudy
		if len(day.Weather) > 0 {
			cond = weather.NormalizeConditionCode(day.Weather[0].ID)
		}
		forecasts = append(forecasts, weather.DailyForecast{
			Timestamp:      time.Unix(day.Dt, 0).UTC(),
			Temperature:    (day.Temp.Max + day.Temp.Min) / 2,
			TemperatureMax: day.Temp.Max,
			TemperatureMin: day.Temp.Min,
			Humidity:       day.Humidity,
			WindSpeed:      day.Speed * 3.6,
			Precipitation:  day.Rain,
			Condition:      cond,
		})
	}

	return forecasts, nil
}
