package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

// OpenMeteoClient fetches daily historical aggregates from the Open-Meteo
// archive API. No API key is required.
type OpenMeteoClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newCircuitBreaker("openmeteo"),
		limiter: rate.NewLimiter(rate.Limit(2), 5),
	}
}

// archive API column names, in the same order as weather.Variables().
var openMeteoDailyFields = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"windspeed_10m_max",
	"relative_humidity_2m_mean",
}

// DailyHistory requests daily aggregates for the half-open range
// [today-lookbackDays, today-1]. A missing `daily` object, a non-success
// status or zero rows all surface as weather.ErrUpstreamUnavailable; this boundary
// never returns partial columns.
func (c *OpenMeteoClient) DailyHistory(ctx context.Context, lat, lon float64, lookbackDays int) (*weather.History, error) {
	end := time.Now().UTC().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(lookbackDays - 1))

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("start_date", start.Format("2006-01-02"))
		values.Set("end_date", end.Format("2006-01-02"))
		values.Set("daily", strings.Join(openMeteoDailyFields, ","))
		values.Set("timezone", "auto")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.limiter, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: historical archive: %v", weather.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Daily *struct {
			Time                   []string   `json:"time"`
			Temperature2mMax       []*float64 `json:"temperature_2m_max"`
			Temperature2mMin       []*float64 `json:"temperature_2m_min"`
			PrecipitationSum       []*float64 `json:"precipitation_sum"`
			Windspeed10mMax        []*float64 `json:"windspeed_10m_max"`
			RelativeHumidity2mMean []*float64 `json:"relative_humidity_2m_mean"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: historical payload: %v", weather.ErrUpstreamUnavailable, err)
	}

	if payload.Daily == nil || len(payload.Daily.Time) == 0 {
		return nil, fmt.Errorf("%w: historical payload has no daily data", weather.ErrUpstreamUnavailable)
	}

	n := len(payload.Daily.Time)
	dates := make([]time.Time, n)
	for i, s := range payload.Daily.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q in historical payload", weather.ErrUpstreamUnavailable, s)
		}
		dates[i] = d.UTC()
	}

	columns := map[weather.Variable][]*float64{
		weather.VarTemperatureMax: payload.Daily.Temperature2mMax,
		weather.VarTemperatureMin: payload.Daily.Temperature2mMin,
		weather.VarPrecipitation:  payload.Daily.PrecipitationSum,
		weather.VarWindSpeed:      payload.Daily.Windspeed10mMax,
		weather.VarHumidity:       payload.Daily.RelativeHumidity2mMean,
	}

	series := make(map[weather.Variable][]float64, len(columns))
	for name, col := range columns {
		vals := make([]float64, n)
		for i := range vals {
			if i < len(col) && col[i] != nil {
				vals[i] = *col[i]
			} else {
				vals[i] = math.NaN() // gap, filled by the forecaster
			}
		}
		series[name] = vals
	}

	return &weather.History{Dates: dates, Series: series}, nil
}
