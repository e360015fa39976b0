package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestAirQualityClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/air-quality/city":
			assert.Equal(t, "Lyon", r.URL.Query().Get("city"))
			assert.Equal(t, "FR", r.URL.Query().Get("country"))
			writeJSON(w, []airquality.Measurement{{City: "Lyon", Parameter: "pm25", Value: 12, AQI: 51}})
		case "/api/air-quality/coordinates":
			assert.Equal(t, "45.76", r.URL.Query().Get("latitude"))
			assert.Equal(t, "4.84", r.URL.Query().Get("longitude"))
			assert.Equal(t, "10000", r.URL.Query().Get("radius"))
			writeJSON(w, []airquality.Measurement{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewAirQualityClient(srv.URL+"/", testHTTPConfig(0))

	ms, err := c.ByCity(context.Background(), "Lyon", "FR")
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, 51, ms[0].AQI)

	ms, err = c.ByCoordinates(context.Background(), 45.76, 4.84, 10000)
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestWeatherClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/weather/city":
			writeJSON(w, weather.Record{City: r.URL.Query().Get("city"), Temperature: 18.5})
		case "/api/weather/coordinates":
			writeJSON(w, weather.Record{City: "Nice", Latitude: 43.7, Longitude: 7.26})
		case "/api/weather/forecast":
			assert.Equal(t, "2", r.URL.Query().Get("days"))
			writeJSON(w, weather.Forecast{City: "Paris", Forecast: make([]weather.ForecastPoint, 16)})
		}
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, testHTTPConfig(0))
	ctx := context.Background()

	rec, err := c.ByCity(ctx, "Paris", "FR")
	require.NoError(t, err)
	assert.Equal(t, "Paris", rec.City)
	assert.Equal(t, 18.5, rec.Temperature)

	rec, err = c.ByCoordinates(ctx, 43.7, 7.26)
	require.NoError(t, err)
	assert.Equal(t, "Nice", rec.City)

	fc, err := c.Forecast(ctx, "Paris", "FR", 2)
	require.NoError(t, err)
	assert.Len(t, fc.Forecast, 16)
}

func TestAdvisoryClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health/recommendations":
			writeJSON(w, advisory.Advisory{AlertLevel: advisory.AlertModerate, AQI: 62})
		case "/api/health/alert-status":
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := NewAdvisoryClient(srv.URL, testHTTPConfig(0))

	adv, err := c.Recommendations(context.Background(), "Paris", "FR")
	require.NoError(t, err)
	assert.Equal(t, advisory.AlertModerate, adv.AlertLevel)

	_, err = c.AlertStatus(context.Background(), "Paris", "FR")
	assert.ErrorIs(t, err, common.ErrProviderMisconfigured)
}
