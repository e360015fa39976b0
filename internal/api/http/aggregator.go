package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/environment-aggregation/internal/dashboard"
	"github.com/i474232898/environment-aggregation/internal/monitor"
	"github.com/i474232898/environment-aggregation/internal/store"
)

// EventDispatcher routes display events.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev dashboard.Event) (dashboard.Result, error)
}

// BoardReader exposes what the display currently shows.
type BoardReader interface {
	Snapshot() store.Snapshot
}

// StatusReader exposes the provider liveness.
type StatusReader interface {
	Statuses() []monitor.Status
}

// Aggregator bundles the dependencies of the aggregator routes.
type Aggregator struct {
	Conditions dashboard.Aggregator
	Events     EventDispatcher
	Board      BoardReader
	Services   StatusReader
}

// eventRequest is the body of POST /api/v1/events.
type eventRequest struct {
	Event   string   `json:"event" validate:"required"`
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

// RegisterAggregatorRoutes wires the aggregator handlers into the Fiber app.
func RegisterAggregatorRoutes(app *fiber.App, agg Aggregator) {
	v1 := app.Group("/api/v1")

	v1.Get("/conditions/city", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return badRequest(err)
		}

		res, err := agg.Conditions.ByName(c.UserContext(), q.City, q.Country)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Get("/conditions/coordinates", func(c *fiber.Ctx) error {
		q, err := parseCoordinatesQuery(c)
		if err != nil {
			return badRequest(err)
		}

		res, err := agg.Conditions.ByCoordinates(c.UserContext(), q.Latitude, q.Longitude)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Post("/events", func(c *fiber.Ctx) error {
		var req eventRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid event body")
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(err)
		}

		res, err := agg.Events.Dispatch(c.UserContext(), dashboard.Event{
			Name:    req.Event,
			City:    req.City,
			Country: req.Country,
			Lat:     req.Lat,
			Lng:     req.Lng,
		})
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Get("/board", func(c *fiber.Ctx) error {
		return c.JSON(agg.Board.Snapshot())
	})

	v1.Get("/services", func(c *fiber.Ctx) error {
		return c.JSON(agg.Services.Statuses())
	})

	app.Get("/health", healthHandler("aggregator"))
}
