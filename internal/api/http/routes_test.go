package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/config"
	"github.com/i474232898/environment-aggregation/internal/geo"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
}

func newWeatherApp() *fiber.App {
	app := NewApp("test", config.Server{}, nil)
	gen := weather.NewGenerator(rand.New(rand.NewSource(1)), geo.NewTable())
	RegisterWeatherRoutes(app, weather.NewService(gen.Source(), nil, geo.NewTable(), zerolog.Nop()))
	return app
}

// TestForecastDaysValidation verifies that the forecast endpoint enforces the
// expected 1-7 range for the `days` query parameter.
func TestForecastDaysValidation(t *testing.T) {
	app := newWeatherApp()

	// Missing days parameter falls back to five days.
	req := httptest.NewRequest(http.MethodGet, "/api/weather/forecast?city=Paris&country=FR", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fc weather.Forecast
	decode(t, resp, &fc)
	assert.Len(t, fc.Forecast, 5*weather.PointsPerDay)

	// Out-of-range and malformed days values return 400.
	for _, days := range []string{"0", "8", "abc"} {
		req = httptest.NewRequest(http.MethodGet, "/api/weather/forecast?city=Paris&country=FR&days="+days, nil)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "days=%s", days)
	}

	// Missing city returns 400 in the shared error shape.
	req = httptest.NewRequest(http.MethodGet, "/api/weather/forecast?days=2", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "city parameter is required", body["message"])
}

func TestWeatherRoutes(t *testing.T) {
	app := newWeatherApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/city?city=Zzyzx", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec weather.Record
	decode(t, resp, &rec)
	assert.Equal(t, "FR", rec.Country)
	assert.Equal(t, 48.8566, rec.Latitude)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/coordinates?latitude=45.764&longitude=4.8357", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &rec)
	assert.Equal(t, "Lyon", rec.City)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/coordinates?latitude=45.7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	var health map[string]string
	decode(t, resp, &health)
	assert.Equal(t, map[string]string{"status": "OK", "service": "weather-service"}, health)
}

type MockAirQualityService struct {
	mock.Mock
}

func (m *MockAirQualityService) ByCity(ctx context.Context, city, country string) ([]airquality.Measurement, error) {
	args := m.Called(ctx, city, country)
	ms, _ := args.Get(0).([]airquality.Measurement)
	return ms, args.Error(1)
}

func (m *MockAirQualityService) ByCoordinates(ctx context.Context, lat, lon float64, radius int) ([]airquality.Measurement, error) {
	args := m.Called(ctx, lat, lon, radius)
	ms, _ := args.Get(0).([]airquality.Measurement)
	return ms, args.Error(1)
}

func TestAirQualityRoutes(t *testing.T) {
	svc := new(MockAirQualityService)
	svc.On("ByCity", mock.Anything, "Paris", "").
		Return([]airquality.Measurement{{Parameter: "pm25", Value: 12.3, AQI: 51}}, nil)
	svc.On("ByCity", mock.Anything, "Lyon", "FR").Return(nil, nil)
	svc.On("ByCity", mock.Anything, "Nice", "FR").
		Return(nil, fmt.Errorf("air quality for Nice: %w", common.ErrProviderMisconfigured))
	svc.On("ByCoordinates", mock.Anything, 48.85, 2.35, 5000).Return(nil, common.ErrUpstreamUnavailable)

	app := NewApp("test", config.Server{}, nil)
	RegisterAirQualityRoutes(app, svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/air-quality/city?city=Paris", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ms []airquality.Measurement
	decode(t, resp, &ms)
	require.Len(t, ms, 1)
	assert.Equal(t, 51, ms[0].AQI)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/air-quality/city?city=Lyon&country=FR", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/air-quality/city?city=Nice&country=FR", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/air-quality/coordinates?latitude=48.85&longitude=2.35&radius=5000", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/air-quality/coordinates?latitude=120&longitude=2.35", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/air-quality/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type fakeAdvisoryService struct {
	err error
}

func (f fakeAdvisoryService) Recommendations(_ context.Context, city, country string) (advisory.Advisory, error) {
	if f.err != nil {
		return advisory.Advisory{}, f.err
	}
	return advisory.Advisory{AlertLevel: advisory.AlertModerate, AQI: 62, Recommendations: []string{"ok"}}, nil
}

func (f fakeAdvisoryService) AlertStatus(_ context.Context, city, country string) (advisory.AlertStatus, error) {
	if f.err != nil {
		return advisory.AlertStatus{}, f.err
	}
	return advisory.AlertStatus{City: city, Country: country, AlertLevel: advisory.AlertModerate, AQI: 62}, nil
}

func TestAdvisoryRoutes(t *testing.T) {
	app := NewApp("test", config.Server{}, nil)
	RegisterAdvisoryRoutes(app, fakeAdvisoryService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health/recommendations?city=Paris&country=FR", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "moderate", body["alert_level"])
	assert.Contains(t, body, "at_risk_groups")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/health/alert-status?city=Paris&country=FR", nil))
	require.NoError(t, err)
	var status advisory.AlertStatus
	decode(t, resp, &status)
	assert.Equal(t, advisory.AlertStatus{City: "Paris", Country: "FR", AlertLevel: advisory.AlertModerate, AQI: 62}, status)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/health/recommendations", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	var health map[string]string
	decode(t, resp, &health)
	assert.Equal(t, "health-service", health["service"])

	failing := NewApp("test", config.Server{}, nil)
	RegisterAdvisoryRoutes(failing, fakeAdvisoryService{err: common.ErrUpstreamUnavailable})
	resp, err = failing.Test(httptest.NewRequest(http.MethodGet, "/api/health/recommendations?city=Paris", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	code, msg := statusFor(fmt.Errorf("boom: %w", common.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "boom: invalid input", msg)

	code, msg = statusFor(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", msg)
}
