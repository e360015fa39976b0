package weather

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/geo"
)

const (
	DefaultForecastDays = 5
	MaxForecastDays     = 7

	// nearestCityKm bounds the fallback lookup of a city name for a coordinate.
	nearestCityKm = 50
)

// Source produces weather records (synthetic generator or a live provider).
type Source interface {
	Current(ctx context.Context, city, country string) (Record, error)
	CurrentAt(ctx context.Context, lat, lon float64) (Record, error)
	Forecast(ctx context.Context, city, country string, days int) (Forecast, error)
}

// Geocoder names the place at a coordinate.
type Geocoder interface {
	CityAt(ctx context.Context, lat, lon float64) (city, country string, err error)
}

// Service serves current weather and forecasts from a Source.
type Service struct {
	source   Source
	geocoder Geocoder
	cities   *geo.Table
	logger   zerolog.Logger
}

// NewService creates a new Service. geocoder may be nil.
func NewService(source Source, geocoder Geocoder, cities *geo.Table, logger zerolog.Logger) *Service {
	return &Service{
		source:   source,
		geocoder: geocoder,
		cities:   cities,
		logger:   logger,
	}
}

// ByCity returns the current weather for a city.
func (s *Service) ByCity(ctx context.Context, city, country string) (Record, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Record{}, fmt.Errorf("%w: city is required", common.ErrInvalidInput)
	}

	rec, err := s.source.Current(ctx, city, common.CountryOrDefault(country))
	if err != nil {
		return Record{}, fmt.Errorf("weather for %s: %w", city, err)
	}
	return rec, nil
}

// ByCoordinates returns the current weather at a point. The city name is
// filled in by the source, the geocoder or the nearest known city, in that
// order; it stays empty when none of them knows the place.
func (s *Service) ByCoordinates(ctx context.Context, lat, lon float64) (Record, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Record{}, fmt.Errorf("%w: coordinates out of range", common.ErrInvalidInput)
	}

	rec, err := s.source.CurrentAt(ctx, lat, lon)
	if err != nil {
		return Record{}, fmt.Errorf("weather for %.4f,%.4f: %w", lat, lon, err)
	}

	if rec.City == "" {
		if city, country, ok := s.nameAt(ctx, lat, lon); ok {
			rec.City = city
			if country != "" {
				rec.Country = country
			}
		}
	}
	return rec, nil
}

func (s *Service) nameAt(ctx context.Context, lat, lon float64) (string, string, bool) {
	if s.geocoder != nil {
		city, country, err := s.geocoder.CityAt(ctx, lat, lon)
		if err == nil && city != "" {
			return city, country, true
		}
		if err != nil {
			s.logger.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocoding failed")
		}
	}

	if c, ok := s.cities.Nearest(lat, lon, nearestCityKm); ok {
		return c.Name, c.Country, true
	}
	return "", "", false
}

// Forecast returns a days*8 point forecast for a city.
func (s *Service) Forecast(ctx context.Context, city, country string, days int) (Forecast, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Forecast{}, fmt.Errorf("%w: city is required", common.ErrInvalidInput)
	}
	if days < 1 || days > MaxForecastDays {
		return Forecast{}, fmt.Errorf("%w: days must be between 1 and %d", common.ErrInvalidInput, MaxForecastDays)
	}

	fc, err := s.source.Forecast(ctx, city, common.CountryOrDefault(country), days)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast for %s: %w", city, err)
	}
	return fc, nil
}
