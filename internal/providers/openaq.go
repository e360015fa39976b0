package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/common"
)

// locationsLimit bounds how many stations are inspected per query.
const locationsLimit = 20

// OpenAQProvider implements the airquality.Upstream interface for OpenAQ v3.
type OpenAQProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

func NewOpenAQProvider(baseURL, apiKey string, httpCfg HTTPClientConfig, logger zerolog.Logger) *OpenAQProvider {
	return &OpenAQProvider{
		name:    "openaq",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openaq", httpCfg.Breaker),
		logger:  logger,
	}
}

func (p *OpenAQProvider) Name() string {
	return p.name
}

type openAQParameter struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Units       string `json:"units"`
	DisplayName string `json:"displayName"`
}

func (p openAQParameter) label() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.DisplayName != "":
		return p.DisplayName
	case p.ID > 0:
		return strconv.Itoa(p.ID)
	default:
		return "unknown"
	}
}

type openAQLocation struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"country"`
	Coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Sensors []struct {
		ID        int             `json:"id"`
		Parameter openAQParameter `json:"parameter"`
	} `json:"sensors"`
}

// Nearby returns up to limit readings from the stations within radius meters.
func (p *OpenAQProvider) Nearby(ctx context.Context, lat, lon float64, radius, limit int) ([]airquality.Reading, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openaq api key is not configured", common.ErrProviderMisconfigured)
	}

	values := url.Values{}
	values.Set("coordinates", formatCoord(lat)+","+formatCoord(lon))
	values.Set("radius", strconv.Itoa(radius))
	values.Set("limit", strconv.Itoa(locationsLimit))

	var payload struct {
		Results []openAQLocation `json:"results"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, "locations", p.baseURL+"/locations?"+values.Encode(), p.header(), &payload); err != nil {
		return nil, err
	}

	readings := make([]airquality.Reading, 0, limit)
	for _, loc := range payload.Results {
		if loc.ID <= 0 {
			continue
		}

		latest, err := p.latest(ctx, loc)
		if err != nil {
			// One broken station should not hide the others.
			p.logger.Warn().Err(err).Int("location", loc.ID).Msg("openaq latest fetch failed")
			continue
		}

		for _, r := range latest {
			readings = append(readings, r)
			if len(readings) >= limit {
				return readings, nil
			}
		}
	}
	return readings, nil
}

func (p *OpenAQProvider) latest(ctx context.Context, loc openAQLocation) ([]airquality.Reading, error) {
	sensors := make(map[int]openAQParameter, len(loc.Sensors))
	for _, s := range loc.Sensors {
		if s.ID > 0 {
			sensors[s.ID] = s.Parameter
		}
	}

	var payload struct {
		Results []struct {
			SensorsID int     `json:"sensorsId"`
			Value     float64 `json:"value"`
			Datetime  struct {
				UTC string `json:"utc"`
			} `json:"datetime"`
		} `json:"results"`
	}
	u := fmt.Sprintf("%s/locations/%d/latest", p.baseURL, loc.ID)
	if err := getJSON(ctx, p.httpCfg, p.circuit, "latest", u, p.header(), &payload); err != nil {
		return nil, err
	}

	country := loc.Country.Code
	if country == "" {
		country = loc.Country.Name
	}

	readings := make([]airquality.Reading, 0, len(payload.Results))
	for _, m := range payload.Results {
		param, ok := sensors[m.SensorsID]
		r := airquality.Reading{
			Station:   loc.Name,
			Country:   country,
			Latitude:  loc.Coordinates.Latitude,
			Longitude: loc.Coordinates.Longitude,
			Parameter: "unknown",
			Value:     m.Value,
			Timestamp: m.Datetime.UTC,
		}
		if ok {
			r.Parameter = param.label()
			r.Unit = param.Units
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func (p *OpenAQProvider) header() http.Header {
	h := http.Header{}
	h.Set("X-API-Key", p.apiKey)
	return h
}
