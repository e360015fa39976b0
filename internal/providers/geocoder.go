package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/environment-aggregation/internal/common"
)

// countryCodes maps the long country names returned by Google to ISO 3166-1
// alpha-2 codes.
var countryCodes = map[string]string{
	"andorra":        "AD",
	"austria":        "AT",
	"belgium":        "BE",
	"france":         "FR",
	"germany":        "DE",
	"italy":          "IT",
	"luxembourg":     "LU",
	"monaco":         "MC",
	"netherlands":    "NL",
	"portugal":       "PT",
	"spain":          "ES",
	"switzerland":    "CH",
	"united kingdom": "GB",
}

// countryCode returns the ISO code for a country name, or "" when unknown.
func countryCode(name string) string {
	name = strings.TrimSpace(name)
	if len(name) == 2 {
		return strings.ToUpper(name)
	}
	return countryCodes[strings.ToLower(name)]
}

// GoogleGeocoder names coordinates through the Google reverse geocoding API.
type GoogleGeocoder struct {
	// The library keeps its key in a package variable.
	mu     sync.Mutex
	apiKey string
	lookup func(geocoder.Location) ([]geocoder.Address, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey: apiKey,
		lookup: geocoder.GeocodingReverse,
	}
}

// CityAt returns the city and ISO country code of the first address found at
// the point. The country is empty when its name has no known code.
func (g *GoogleGeocoder) CityAt(ctx context.Context, lat, lon float64) (string, string, error) {
	if g.apiKey == "" {
		return "", "", fmt.Errorf("%w: geocoder api key is not configured", common.ErrProviderMisconfigured)
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	g.mu.Lock()
	geocoder.ApiKey = g.apiKey
	addresses, err := g.lookup(geocoder.Location{Latitude: lat, Longitude: lon})
	g.mu.Unlock()

	if err != nil {
		return "", "", fmt.Errorf("%w: reverse geocoding: %v", common.ErrUpstreamUnavailable, err)
	}
	for _, a := range addresses {
		if a.City != "" {
			return a.City, countryCode(a.Country), nil
		}
	}
	return "", "", nil
}
