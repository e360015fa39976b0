package advisory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// AirQualitySource fetches measurements for a city.
type AirQualitySource interface {
	ByCity(ctx context.Context, city, country string) ([]airquality.Measurement, error)
}

// WeatherSource fetches the current weather for a city.
type WeatherSource interface {
	ByCity(ctx context.Context, city, country string) (weather.Record, error)
}

// Recorder counts generated advisories.
type Recorder interface {
	RecordAdvisory(level string, elapsed time.Duration)
}

// Service builds advisories from the air quality and weather providers.
type Service struct {
	air      AirQualitySource
	weather  WeatherSource
	recorder Recorder
	logger   zerolog.Logger
}

// NewService creates a new Service. recorder may be nil.
func NewService(air AirQualitySource, wx WeatherSource, recorder Recorder, logger zerolog.Logger) *Service {
	return &Service{
		air:      air,
		weather:  wx,
		recorder: recorder,
		logger:   logger,
	}
}

// Recommendations returns the health guidance for a city.
func (s *Service) Recommendations(ctx context.Context, city, country string) (Advisory, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Advisory{}, fmt.Errorf("%w: city is required", common.ErrInvalidInput)
	}
	country = common.CountryOrDefault(country)
	start := time.Now()

	ms, err := s.air.ByCity(ctx, city, country)
	if err != nil {
		return Advisory{}, fmt.Errorf("fetch air quality: %w", err)
	}
	rec, err := s.weather.ByCity(ctx, city, country)
	if err != nil {
		return Advisory{}, fmt.Errorf("fetch weather: %w", err)
	}

	adv := Generate(ms, rec)
	if s.recorder != nil {
		s.recorder.RecordAdvisory(string(adv.AlertLevel), time.Since(start))
	}

	s.logger.Info().
		Str("city", city).
		Str("alert_level", string(adv.AlertLevel)).
		Dur("elapsed", time.Since(start)).
		Msg("advisory generated")
	return adv, nil
}

// AlertStatus returns only the alert level for a city.
func (s *Service) AlertStatus(ctx context.Context, city, country string) (AlertStatus, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return AlertStatus{}, fmt.Errorf("%w: city is required", common.ErrInvalidInput)
	}
	country = common.CountryOrDefault(country)

	ms, err := s.air.ByCity(ctx, city, country)
	if err != nil {
		return AlertStatus{}, fmt.Errorf("fetch air quality: %w", err)
	}

	aqi := MeanAQI(ms)
	return AlertStatus{
		City:       city,
		Country:    country,
		AlertLevel: LevelFor(aqi),
		AQI:        common.Round1(aqi),
	}, nil
}
