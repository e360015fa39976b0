package weather

import (
	"strings"
	"time"

	"github.com/i474232898/environment-aggregation/internal/common"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Record is the current weather for a place.
type Record struct {
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Temperature   float64   `json:"temperature"` // °C
	FeelsLike     float64   `json:"feelsLike"`   // °C
	Humidity      int       `json:"humidity"`    // %
	Pressure      int       `json:"pressure"`    // hPa
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Condition     Condition `json:"condition"`
	WindSpeed     float64   `json:"windSpeed"`     // m/s
	WindDirection int       `json:"windDirection"` // degrees, 0-359
	Clouds        int       `json:"clouds"`        // %
	Visibility    int       `json:"visibility"`    // m
	Timestamp     time.Time `json:"timestamp"`     // always UTC
}

// ForecastPoint is one entry of a forecast series, three hours apart.
type ForecastPoint struct {
	HourOffset  int       `json:"hourOffset"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Condition   Condition `json:"condition"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
}

// Forecast is a multi-day series of 3-hourly points ordered by HourOffset.
type Forecast struct {
	City     string          `json:"city"`
	Country  string          `json:"country"`
	Forecast []ForecastPoint `json:"forecast"`
}

// PointsPerDay is the number of 3-hourly forecast points in a day.
const PointsPerDay = 8

// ConditionFromText maps a free-form description to a Condition.
func ConditionFromText(text string) Condition {
	text = strings.ToLower(text)

	switch {
	case text == "":
		return ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return ConditionStorm
	case common.HasAny(text, "snow", "sleet"):
		return ConditionSnow
	case common.HasAny(text, "rain", "drizzle", "shower"):
		return ConditionRain
	case common.HasAny(text, "mist", "fog", "haze"):
		return ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return ConditionCloudy
	case common.HasAny(text, "clear", "sun"):
		return ConditionClear
	default:
		return ConditionUnknown
	}
}
