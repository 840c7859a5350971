package httpapi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/akulkarni-dev/weather-risk-service/internal/forecast"
	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

var validate = validator.New()

// Handlers carries the collaborators the HTTP layer needs.
type Handlers struct {
	service *weather.Service
	engine  *forecast.Engine
	cache   *gocache.Cache
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Assembled
// forecast responses are cached per city for cacheTTL so repeated
// interactive hits do not re-fit models.
func RegisterRoutes(app *fiber.App, service *weather.Service, engine *forecast.Engine, cacheTTL time.Duration) {
	h := &Handlers{
		service: service,
		engine:  engine,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
	}

	v1 := app.Group("/api/v1")

	v1.Get("/locations", h.listLocations)
	v1.Get("/weather/current/:city", h.currentWeather)
	v1.Get("/forecast/live/:city", h.liveForecast)
	v1.Get("/forecast/arima/:city", h.arimaForecast)
	v1.Get("/forecast/combined/:city", h.combinedForecast)
	v1.Get("/risk/:city", h.riskOutlook)
}

func (h *Handlers) listLocations(c *fiber.Ctx) error {
	locations, err := h.service.ListLocations()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list locations")
	}
	if locations == nil {
		locations = []weather.Location{}
	}
	return c.JSON(locations)
}

func (h *Handlers) currentWeather(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}

	cc, err := h.service.CurrentWeather(c.Context(), city)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(cc)
}

func (h *Handlers) liveForecast(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}

	loc, periods, err := h.service.LiveForecast(c.Context(), city)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"location":  loc.Name,
		"country":   loc.Country,
		"forecasts": periods,
	})
}

func (h *Handlers) arimaForecast(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}

	cacheKey := "arima:" + strings.ToLower(city)
	if cached, found := h.cache.Get(cacheKey); found {
		return c.JSON(cached.(*forecast.ModelForecast))
	}

	loc, err := h.service.ResolveLocation(c.Context(), city)
	if err != nil {
		return mapServiceError(err)
	}

	result, err := h.engine.ModelForecast(c.Context(), loc)
	if err != nil {
		return mapServiceError(err)
	}

	h.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	return c.JSON(result)
}

func (h *Handlers) combinedForecast(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}

	cacheKey := "combined:" + strings.ToLower(city)
	if cached, found := h.cache.Get(cacheKey); found {
		return c.JSON(cached.(*forecast.CombinedForecast))
	}

	loc, err := h.service.ResolveLocation(c.Context(), city)
	if err != nil {
		return mapServiceError(err)
	}

	result, err := h.engine.Combined(c.Context(), loc)
	if err != nil {
		return mapServiceError(err)
	}

	h.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	return c.JSON(result)
}

func (h *Handlers) riskOutlook(c *fiber.Ctx) error {
	city, err := cityParam(c)
	if err != nil {
		return err
	}

	outlook, err := h.service.RiskOutlook(c.Context(), city)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(outlook)
}

// cityRequest validates the city path parameter.
type cityRequest struct {
	City string `validate:"required,min=1,max=100"`
}

func cityParam(c *fiber.Ctx) (string, error) {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil {
		city = c.Params("city")
	}
	if err := validate.Struct(cityRequest{City: city}); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "city parameter is required")
	}
	return city, nil
}

// mapServiceError translates the error taxonomy into HTTP statuses.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("could not resolve city: %v", err))
	case errors.Is(err, forecast.ErrNoForecastAvailable):
		return fiber.NewError(fiber.StatusBadGateway, "no forecast source is currently available")
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, "weather provider is currently unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
