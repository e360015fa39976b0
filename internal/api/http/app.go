package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/config"
	"github.com/i474232898/environment-aggregation/internal/dashboard"
	"github.com/i474232898/environment-aggregation/internal/metrics"
)

// NewApp builds a fiber app with the shared middleware stack. m may be nil.
func NewApp(name string, srv config.Server, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ReadTimeout:           srv.ReadTimeout,
		WriteTimeout:          srv.WriteTimeout,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}
	return app
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, message := statusFor(err)
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, dashboard.ErrAggregationFailed):
		return fiber.StatusBadGateway, dashboard.ErrAggregationFailed.Error()
	case errors.Is(err, common.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrProviderMisconfigured):
		return fiber.StatusServiceUnavailable, err.Error()
	case errors.Is(err, common.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func healthHandler(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "OK",
			"service": service,
		})
	}
}
