package dashboard

import (
	"context"
	"errors"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// ErrAggregationFailed is the only error an aggregation reports to its caller.
var ErrAggregationFailed = errors.New("failed to load environmental data")

// AirQualityProvider fetches raw measurements.
type AirQualityProvider interface {
	ByCity(ctx context.Context, city, country string) ([]airquality.Measurement, error)
	ByCoordinates(ctx context.Context, lat, lon float64, radius int) ([]airquality.Measurement, error)
}

// WeatherProvider fetches current weather.
type WeatherProvider interface {
	ByCity(ctx context.Context, city, country string) (weather.Record, error)
	ByCoordinates(ctx context.Context, lat, lon float64) (weather.Record, error)
}

// AdvisoryProvider fetches health guidance.
type AdvisoryProvider interface {
	Recommendations(ctx context.Context, city, country string) (advisory.Advisory, error)
}

// Recorder counts aggregation outcomes.
type Recorder interface {
	RecordAggregation(mode, outcome string)
}

// AirQualityView is what the air quality panel shows. A nil Report means
// the provider answered but had no measurement to summarize.
type AirQualityView struct {
	Report       *airquality.Report `json:"report,omitempty"`
	Measurements int                `json:"measurements"`
}

// Location is a point to center the map on.
type Location struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
}

type AirQualitySink interface {
	UpdateAirQuality(view AirQualityView)
}

type WeatherSink interface {
	UpdateWeather(rec weather.Record)
}

type AdvisorySink interface {
	UpdateAdvisory(adv advisory.Advisory)
}

type MapSink interface {
	UpdateLocation(loc Location)
}

type ErrorSink interface {
	NotifyError(err error)
}

// Update is the group of panel changes produced by one aggregation. Nil
// fields leave their panel unchanged.
type Update struct {
	AirQuality *AirQualityView
	Weather    *weather.Record
	Advisory   *advisory.Advisory
	Location   *Location
	Err        error
}

// BatchSink applies a whole Update at once, so readers never observe panels
// from two different aggregations.
type BatchSink interface {
	Apply(u Update)
}

// Sinks are the display targets of an aggregation. Nil sinks are skipped.
// When Batch is set, successful results go through it instead of the
// individual sinks.
type Sinks struct {
	AirQuality AirQualitySink
	Weather    WeatherSink
	Advisory   AdvisorySink
	Map        MapSink
	Errors     ErrorSink
	Batch      BatchSink
}

// Options tune the aggregation policy.
type Options struct {
	// FailFast fails the whole operation when any branch fails. When false
	// the succeeding branches are still applied.
	FailFast bool

	// Radius in meters of the air quality search around coordinates.
	Radius int
}

// DefaultOptions returns the all-or-nothing policy with a 25 km radius.
func DefaultOptions() Options {
	return Options{FailFast: true, Radius: airquality.MaxRadius}
}

// Result describes one aggregation. Applied is false when a newer
// aggregation was issued before this one finished.
type Result struct {
	Token      uint64             `json:"token"`
	Applied    bool               `json:"applied"`
	AirQuality *AirQualityView    `json:"airQuality,omitempty"`
	Weather    *weather.Record    `json:"weather,omitempty"`
	Advisory   *advisory.Advisory `json:"advisory,omitempty"`
	Location   *Location          `json:"location,omitempty"`
	Failed     []string           `json:"failed,omitempty"`
}
