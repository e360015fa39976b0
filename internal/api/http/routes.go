package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// cityQuery holds query parameters for identifying a city.
type cityQuery struct {
	City    string `validate:"required"`
	Country string `validate:"omitempty,max=64"`
}

func parseCityQuery(c *fiber.Ctx) (cityQuery, error) {
	var q cityQuery

	q.City = strings.TrimSpace(c.Query("city"))
	q.Country = strings.TrimSpace(c.Query("country"))

	if err := validate.Struct(q); err != nil {
		return q, errors.New("city parameter is required")
	}

	return q, nil
}

// coordinatesQuery holds query parameters for identifying a point.
type coordinatesQuery struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	Radius    int     `validate:"gte=0"`
}

func parseCoordinatesQuery(c *fiber.Ctx) (coordinatesQuery, error) {
	var q coordinatesQuery

	latStr := c.Query("latitude")
	lonStr := c.Query("longitude")
	if latStr == "" || lonStr == "" {
		return q, errors.New("latitude and longitude parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("invalid latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("invalid longitude")
	}
	q.Latitude = lat
	q.Longitude = lon

	if r := c.Query("radius"); r != "" {
		radius, err := strconv.Atoi(r)
		if err != nil {
			return q, errors.New("invalid radius")
		}
		q.Radius = radius
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Location cityQuery
	Days     int `validate:"gte=1,lte=7"`
}

func (f *forecastQuery) bind(c *fiber.Ctx, defaultDays int) error {
	loc, err := parseCityQuery(c)
	if err != nil {
		return err
	}
	f.Location = loc

	f.Days = defaultDays
	if d := c.Query("days"); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil {
			return errors.New("days must be an integer")
		}
		f.Days = days
	}

	if err := validate.Struct(f); err != nil {
		return errors.New("days must be between 1 and 7")
	}
	return nil
}

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
