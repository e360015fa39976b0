package advisory

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

type MockAir struct {
	mock.Mock
}

func (m *MockAir) ByCity(ctx context.Context, city, country string) ([]airquality.Measurement, error) {
	args := m.Called(ctx, city, country)
	ms, _ := args.Get(0).([]airquality.Measurement)
	return ms, args.Error(1)
}

type MockWeather struct {
	mock.Mock
}

func (m *MockWeather) ByCity(ctx context.Context, city, country string) (weather.Record, error) {
	args := m.Called(ctx, city, country)
	return args.Get(0).(weather.Record), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordAdvisory(level string, elapsed time.Duration) {
	m.Called(level, elapsed)
}

func TestServiceRecommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("combines both providers", func(t *testing.T) {
		air := new(MockAir)
		air.On("ByCity", ctx, "Lyon", "FR").Return([]airquality.Measurement{{Parameter: "pm10", Value: 80, AQI: 100}}, nil).Once()
		wx := new(MockWeather)
		wx.On("ByCity", ctx, "Lyon", "FR").Return(weather.Record{Temperature: 8, Humidity: 60}, nil).Once()
		rec := new(MockRecorder)
		rec.On("RecordAdvisory", "moderate", mock.AnythingOfType("time.Duration")).Once()

		svc := NewService(air, wx, rec, zerolog.Nop())
		adv, err := svc.Recommendations(ctx, "Lyon", "")
		require.NoError(t, err)
		assert.Equal(t, AlertModerate, adv.AlertLevel)
		assert.Equal(t, 8.0, adv.Temperature)

		air.AssertExpectations(t)
		wx.AssertExpectations(t)
		rec.AssertExpectations(t)
	})

	t.Run("air quality failure stops before weather", func(t *testing.T) {
		air := new(MockAir)
		air.On("ByCity", ctx, "Lyon", "FR").Return(nil, common.ErrUpstreamUnavailable).Once()
		wx := new(MockWeather)

		svc := NewService(air, wx, nil, zerolog.Nop())
		_, err := svc.Recommendations(ctx, "Lyon", "FR")
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
		wx.AssertNotCalled(t, "ByCity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("weather failure", func(t *testing.T) {
		air := new(MockAir)
		air.On("ByCity", ctx, "Lyon", "FR").Return([]airquality.Measurement{}, nil).Once()
		wx := new(MockWeather)
		wx.On("ByCity", ctx, "Lyon", "FR").Return(weather.Record{}, common.ErrProviderMisconfigured).Once()

		svc := NewService(air, wx, nil, zerolog.Nop())
		_, err := svc.Recommendations(ctx, "Lyon", "FR")
		assert.ErrorIs(t, err, common.ErrProviderMisconfigured)
	})

	t.Run("missing city", func(t *testing.T) {
		svc := NewService(new(MockAir), new(MockWeather), nil, zerolog.Nop())
		_, err := svc.Recommendations(ctx, "", "FR")
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestServiceAlertStatus(t *testing.T) {
	ctx := context.Background()

	air := new(MockAir)
	air.On("ByCity", ctx, "Nice", "FR").Return([]airquality.Measurement{
		{AQI: 200}, {AQI: 250},
	}, nil).Once()

	svc := NewService(air, new(MockWeather), nil, zerolog.Nop())
	status, err := svc.AlertStatus(ctx, "Nice", "fr")
	require.NoError(t, err)
	assert.Equal(t, AlertStatus{City: "Nice", Country: "FR", AlertLevel: AlertExtreme, AQI: 225}, status)
}
