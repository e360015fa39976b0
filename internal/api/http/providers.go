package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// AirQualityService serves measurements.
type AirQualityService interface {
	ByCity(ctx context.Context, city, country string) ([]airquality.Measurement, error)
	ByCoordinates(ctx context.Context, lat, lon float64, radius int) ([]airquality.Measurement, error)
}

// WeatherService serves current weather and forecasts.
type WeatherService interface {
	ByCity(ctx context.Context, city, country string) (weather.Record, error)
	ByCoordinates(ctx context.Context, lat, lon float64) (weather.Record, error)
	Forecast(ctx context.Context, city, country string, days int) (weather.Forecast, error)
}

// AdvisoryService serves health guidance.
type AdvisoryService interface {
	Recommendations(ctx context.Context, city, country string) (advisory.Advisory, error)
	AlertStatus(ctx context.Context, city, country string) (advisory.AlertStatus, error)
}

// RegisterAirQualityRoutes wires the air quality provider handlers.
func RegisterAirQualityRoutes(app *fiber.App, svc AirQualityService) {
	api := app.Group("/api/air-quality")

	api.Get("/city", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return badRequest(err)
		}

		ms, err := svc.ByCity(c.UserContext(), q.City, q.Country)
		if err != nil {
			return err
		}
		return c.JSON(nonNil(ms))
	})

	api.Get("/coordinates", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return badRequest(err)
		}

		ms, err := svc.ByCoordinates(c.UserContext(), q.Latitude, q.Longitude, q.Radius)
		if err != nil {
			return err
		}
		return c.JSON(nonNil(ms))
	})

	api.Get("/health", healthHandler("air-quality-service"))
}

// RegisterWeatherRoutes wires the weather provider handlers.
func RegisterWeatherRoutes(app *fiber.App, svc WeatherService) {
	api := app.Group("/api/weather")

	api.Get("/city", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return badRequest(err)
		}

		rec, err := svc.ByCity(c.UserContext(), q.City, q.Country)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	})

	api.Get("/coordinates", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return badRequest(err)
		}

		rec, err := svc.ByCoordinates(c.UserContext(), q.Latitude, q.Longitude)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	})

	api.Get("/forecast", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c, weather.DefaultForecastDays); err != nil {
			return badRequest(err)
		}

		fc, err := svc.Forecast(c.UserContext(), q.Location.City, q.Location.Country, q.Days)
		if err != nil {
			return err
		}
		return c.JSON(fc)
	})

	app.Get("/health", healthHandler("weather-service"))
}

// RegisterAdvisoryRoutes wires the health advisory provider handlers.
func RegisterAdvisoryRoutes(app *fiber.App, svc AdvisoryService) {
	api := app.Group("/api/health")

	api.Get("/recommendations", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return badRequest(err)
		}

		adv, err := svc.Recommendations(c.UserContext(), q.City, q.Country)
		if err != nil {
			return err
		}
		return c.JSON(adv)
	})

	api.Get("/alert-status", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return badRequest(err)
		}

		status, err := svc.AlertStatus(c.UserContext(), q.City, q.Country)
		if err != nil {
			return err
		}
		return c.JSON(status)
	})

	app.Get("/health", healthHandler("health-service"))
}

func nonNil(ms []airquality.Measurement) []airquality.Measurement {
	if ms == nil {
		return []airquality.Measurement{}
	}
	return ms
}
