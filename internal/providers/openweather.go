package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// OpenWeatherProvider implements weather.Source on top of OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(baseURL, apiKey string, httpCfg HTTPClientConfig) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("openweather", httpCfg.Breaker),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrent struct {
	Name  string `json:"name"`
	Dt    int64  `json:"dt"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int            `json:"visibility"`
	Weather    []owmCondition `json:"weather"`
}

func (p *OpenWeatherProvider) Current(ctx context.Context, city, country string) (weather.Record, error) {
	q := city
	if country != "" {
		q = fmt.Sprintf("%s,%s", city, country)
	}
	values := url.Values{}
	values.Set("q", q)
	return p.current(ctx, values)
}

func (p *OpenWeatherProvider) CurrentAt(ctx context.Context, lat, lon float64) (weather.Record, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))
	return p.current(ctx, values)
}

func (p *OpenWeatherProvider) current(ctx context.Context, values url.Values) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, fmt.Errorf("%w: openweather api key is not configured", common.ErrProviderMisconfigured)
	}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload owmCurrent
	if err := getJSON(ctx, p.httpCfg, p.circuit, "current", p.baseURL+"/weather?"+values.Encode(), nil, &payload); err != nil {
		return weather.Record{}, err
	}

	cond := firstCondition(payload.Weather)
	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	return weather.Record{
		City:          payload.Name,
		Country:       payload.Sys.Country,
		Latitude:      payload.Coord.Lat,
		Longitude:     payload.Coord.Lon,
		Temperature:   payload.Main.Temp,
		FeelsLike:     payload.Main.FeelsLike,
		Humidity:      payload.Main.Humidity,
		Pressure:      payload.Main.Pressure,
		Description:   cond.Description,
		Icon:          cond.Icon,
		Condition:     mapOpenWeatherCondition(cond),
		WindSpeed:     payload.Wind.Speed,
		WindDirection: payload.Wind.Deg,
		Clouds:        payload.Clouds.All,
		Visibility:    payload.Visibility,
		Timestamp:     ts,
	}, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, city, country string, days int) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, fmt.Errorf("%w: openweather api key is not configured", common.ErrProviderMisconfigured)
	}

	q := city
	if country != "" {
		q = fmt.Sprintf("%s,%s", city, country)
	}
	values := url.Values{}
	values.Set("q", q)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload struct {
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity int     `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, "forecast", p.baseURL+"/forecast?"+values.Encode(), nil, &payload); err != nil {
		return weather.Forecast{}, err
	}

	items := payload.List
	if n := days * weather.PointsPerDay; len(items) > n {
		items = items[:n]
	}

	fc := weather.Forecast{
		City:     payload.City.Name,
		Country:  payload.City.Country,
		Forecast: make([]weather.ForecastPoint, 0, len(items)),
	}
	for i, item := range items {
		cond := firstCondition(item.Weather)
		fc.Forecast = append(fc.Forecast, weather.ForecastPoint{
			HourOffset:  3 * i,
			Timestamp:   time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Description: cond.Description,
			Icon:        cond.Icon,
			Condition:   mapOpenWeatherCondition(cond),
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
		})
	}
	return fc, nil
}

func firstCondition(items []owmCondition) owmCondition {
	if len(items) == 0 {
		return owmCondition{}
	}
	return items[0]
}

func mapOpenWeatherCondition(c owmCondition) weather.Condition {
	switch c.Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionFromText(c.Description)
	}
}
