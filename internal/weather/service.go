package weather

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/elcamino/weather-report/pkg/errors"
)

// Service runs the fetch/decode/build/reconcile pipeline and keeps the
// latest reports for the configured location.
type Service struct {
	cfg     Config
	fetcher Fetcher
	store   Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new Service. store may be nil when only GetWeather
// is used.
func NewService(cfg Config, fetcher Fetcher, store Store, logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		logger:  logger.With("component", "weather.service"),
		now:     time.Now,
	}
}

// Config returns the settings the service refreshes with.
func (s *Service) Config() Config {
	return s.cfg
}

// GetWeather fetches one response for cfg and turns it into a report.
func (s *Service) GetWeather(ctx context.Context, cfg Config) (WeatherReport, error) {
	responses, err := s.fetcher.Fetch(ctx, cfg.OpenMeteoURL, RequestParams(cfg))
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			err = TransportError(err)
		}
		return WeatherReport{}, err
	}

	table, err := Decode(responses)
	if err != nil {
		return WeatherReport{}, err
	}
	s.echo(responses[0])

	forecast, err := BuildForecast(table)
	if err != nil {
		return WeatherReport{}, err
	}
	current, err := Reconcile(table.Current, forecast, s.now())
	if err != nil {
		return WeatherReport{}, err
	}
	return Assemble(current, forecast), nil
}

// Refresh builds a report for the configured location and saves it. A failed
// refresh leaves the last good report in place.
func (s *Service) Refresh(ctx context.Context) (WeatherReport, error) {
	loc := s.cfg.Location()
	log := s.logger.With("refresh_id", uuid.NewString(), "location", loc.Key())

	start := time.Now()
	report, err := s.GetWeather(ctx, s.cfg)
	if err != nil {
		log.Error("weather refresh failed", "code", apperrors.CodeOf(err), "error", err)
		return WeatherReport{}, err
	}

	if s.store != nil {
		s.store.SaveReport(loc, report)
	}
	log.Info("weather refreshed",
		"forecast_days", len(report.Forecast),
		"temperature", report.Current.Temperature,
		"duration", time.Since(start),
	)
	return report, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (WeatherReport, error) {
	if s.store == nil {
		return WeatherReport{}, ErrNoStore
	}
	return s.store.GetLatest(s.cfg.Location())
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]WeatherReport, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.GetRange(s.cfg.Location(), from, to)
}

func (s *Service) echo(resp Response) {
	s.logger.Debug("forecast response",
		"latitude", resp.Latitude,
		"longitude", resp.Longitude,
		"elevation_m", resp.Elevation,
		"timezone", resp.Timezone,
		"timezone_abbreviation", resp.TimezoneAbbreviation,
		"utc_offset_s", resp.UTCOffsetSeconds,
	)
}
