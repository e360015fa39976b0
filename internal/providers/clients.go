package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// serviceClient is the shared plumbing of the clients for our own providers.
type serviceClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func newServiceClient(name, baseURL string, httpCfg HTTPClientConfig) serviceClient {
	return serviceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpCfg,
		circuit: newCircuitBreaker(name, httpCfg.Breaker),
	}
}

func (c serviceClient) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return getJSON(ctx, c.httpCfg, c.circuit, endpoint, u, nil, out)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cityQuery(city, country string) url.Values {
	q := url.Values{}
	q.Set("city", city)
	if country != "" {
		q.Set("country", country)
	}
	return q
}

// AirQualityClient calls the air quality provider.
type AirQualityClient struct {
	serviceClient
}

func NewAirQualityClient(baseURL string, httpCfg HTTPClientConfig) *AirQualityClient {
	return &AirQualityClient{serviceClient: newServiceClient("air-quality", baseURL, httpCfg)}
}

func (c *AirQualityClient) ByCity(ctx context.Context, city, country string) ([]airquality.Measurement, error) {
	var ms []airquality.Measurement
	if err := c.get(ctx, "city", "/api/air-quality/city", cityQuery(city, country), &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (c *AirQualityClient) ByCoordinates(ctx context.Context, lat, lon float64, radius int) ([]airquality.Measurement, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	if radius > 0 {
		q.Set("radius", strconv.Itoa(radius))
	}

	var ms []airquality.Measurement
	if err := c.get(ctx, "coordinates", "/api/air-quality/coordinates", q, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// WeatherClient calls the weather provider.
type WeatherClient struct {
	serviceClient
}

func NewWeatherClient(baseURL string, httpCfg HTTPClientConfig) *WeatherClient {
	return &WeatherClient{serviceClient: newServiceClient("weather", baseURL, httpCfg)}
}

func (c *WeatherClient) ByCity(ctx context.Context, city, country string) (weather.Record, error) {
	var rec weather.Record
	err := c.get(ctx, "city", "/api/weather/city", cityQuery(city, country), &rec)
	return rec, err
}

func (c *WeatherClient) ByCoordinates(ctx context.Context, lat, lon float64) (weather.Record, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))

	var rec weather.Record
	err := c.get(ctx, "coordinates", "/api/weather/coordinates", q, &rec)
	return rec, err
}

func (c *WeatherClient) Forecast(ctx context.Context, city, country string, days int) (weather.Forecast, error) {
	q := cityQuery(city, country)
	q.Set("days", strconv.Itoa(days))

	var fc weather.Forecast
	err := c.get(ctx, "forecast", "/api/weather/forecast", q, &fc)
	return fc, err
}

// AdvisoryClient calls the health advisory provider.
type AdvisoryClient struct {
	serviceClient
}

func NewAdvisoryClient(baseURL string, httpCfg HTTPClientConfig) *AdvisoryClient {
	return &AdvisoryClient{serviceClient: newServiceClient("health", baseURL, httpCfg)}
}

func (c *AdvisoryClient) Recommendations(ctx context.Context, city, country string) (advisory.Advisory, error) {
	var adv advisory.Advisory
	err := c.get(ctx, "recommendations", "/api/health/recommendations", cityQuery(city, country), &adv)
	return adv, err
}

func (c *AdvisoryClient) AlertStatus(ctx context.Context, city, country string) (advisory.AlertStatus, error) {
	var status advisory.AlertStatus
	err := c.get(ctx, "alert-status", "/api/health/alert-status", cityQuery(city, country), &status)
	return status, err
}
