package airquality

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/geo"
)

const (
	// MaxRadius is the largest search radius in meters the upstream accepts.
	MaxRadius = 25000
	// MaxMeasurements caps the number of measurements returned per query.
	MaxMeasurements = 10
)

// Upstream is a source of raw station readings around a point.
type Upstream interface {
	Nearby(ctx context.Context, lat, lon float64, radius, limit int) ([]Reading, error)
}

// Service serves scored measurements for a city or a coordinate.
type Service struct {
	upstream Upstream
	cities   *geo.Table
	logger   zerolog.Logger
}

// NewService creates a new Service.
func NewService(upstream Upstream, cities *geo.Table, logger zerolog.Logger) *Service {
	return &Service{
		upstream: upstream,
		cities:   cities,
		logger:   logger,
	}
}

// ByCity returns the latest measurements around a city. Unknown cities are
// searched around the default city.
func (s *Service) ByCity(ctx context.Context, city, country string) ([]Measurement, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", common.ErrInvalidInput)
	}
	country = common.CountryOrDefault(country)

	loc, known := s.cities.Resolve(city)
	if !known {
		s.logger.Debug().Str("city", city).Str("fallback", loc.Name).Msg("unknown city, using fallback coordinates")
	}

	readings, err := s.upstream.Nearby(ctx, loc.Lat, loc.Lon, MaxRadius, MaxMeasurements)
	if err != nil {
		return nil, fmt.Errorf("air quality for %s: %w", city, err)
	}

	ms := score(readings, city, country)
	if len(ms) == 0 {
		s.logger.Warn().Str("city", city).Msg("no air quality data found")
	}
	return ms, nil
}

// ByCoordinates returns the latest measurements within radius meters of a point.
// A non-positive radius means the maximum.
func (s *Service) ByCoordinates(ctx context.Context, lat, lon float64, radius int) ([]Measurement, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", common.ErrInvalidInput)
	}
	if radius <= 0 || radius > MaxRadius {
		radius = MaxRadius
	}

	readings, err := s.upstream.Nearby(ctx, lat, lon, radius, MaxMeasurements)
	if err != nil {
		return nil, fmt.Errorf("air quality for %.4f,%.4f: %w", lat, lon, err)
	}

	ms := score(readings, "Unknown", common.DefaultCountry)
	if len(ms) == 0 {
		s.logger.Warn().Float64("lat", lat).Float64("lon", lon).Msg("no air quality data found")
	}
	return ms, nil
}

func score(readings []Reading, city, country string) []Measurement {
	if len(readings) > MaxMeasurements {
		readings = readings[:MaxMeasurements]
	}

	ms := make([]Measurement, 0, len(readings))
	for _, r := range readings {
		m := Measurement{
			City:        city,
			Country:     country,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Parameter:   NormalizeParameter(r.Parameter),
			Value:       r.Value,
			Unit:        r.Unit,
			LastUpdated: r.Timestamp,
		}
		if r.Station != "" {
			m.City = r.Station
		}
		if r.Country != "" {
			m.Country = r.Country
		}
		m.AQI = IndexFor(m.Parameter, m.Value)
		m.QualityLevel = Classify(float64(m.AQI))
		ms = append(ms, m)
	}
	return ms
}
