package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/akulkarni-dev/weather-risk-service/internal/weather"
)

// jobTimeout bounds one full refresh pass over all locations.
const jobTimeout = 5 * time.Minute

// Scheduler periodically refreshes stored weather rows for all known
// locations: current conditions on a short interval, multi-day forecasts on
// a long one. Refresh runs never block interactive requests; they share only
// the store, whose writes are idempotent upserts.
type Scheduler struct {
	scheduler        *gocron.Scheduler
	service          *weather.Service
	currentInterval  time.Duration
	forecastInterval time.Duration
	logger           *slog.Logger
}

// New creates a new Scheduler.
func New(service *weather.Service, currentInterval, forecastInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:        gocron.NewScheduler(time.UTC),
		service:          service,
		currentInterval:  currentInterval,
		forecastInterval: forecastInterval,
		logger:           logger,
	}
}

// Start schedules both refresh jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.currentInterval).Do(func() {
		s.logger.Info("scheduler: running current weather refresh")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.service.RefreshAllCurrent(ctx)
		s.logger.Info("scheduler: completed current weather refresh")
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Every(s.forecastInterval).Do(func() {
		s.logger.Info("scheduler: running daily forecast refresh")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.service.RefreshAllDailyForecasts(ctx)
		s.logger.Info("scheduler: completed daily forecast refresh")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
