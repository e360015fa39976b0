package weather

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/geo"
)

// RandomSource yields uniform values in [0, 1). *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type conditionSpec struct {
	description string
	icon        string
	condition   Condition
	clouds      float64
}

// Winter conditions for current readings.
var currentConditions = []conditionSpec{
	{"clear sky", "01d", ConditionClear, 5},
	{"few clouds", "02d", ConditionCloudy, 20},
	{"broken clouds", "04d", ConditionCloudy, 70},
	{"overcast clouds", "04d", ConditionCloudy, 95},
	{"light rain", "10d", ConditionRain, 85},
	{"light snow", "13d", ConditionSnow, 90},
	{"mist", "50d", ConditionMist, 80},
}

var forecastConditions = []conditionSpec{
	{"clear sky", "01d", ConditionClear, 5},
	{"scattered clouds", "03d", ConditionCloudy, 40},
	{"overcast clouds", "04d", ConditionCloudy, 95},
	{"light rain", "10d", ConditionRain, 85},
	{"light snow", "13d", ConditionSnow, 90},
}

// Generator produces plausible winter weather without any network access.
type Generator struct {
	mu     sync.Mutex
	rnd    RandomSource
	cities *geo.Table
	now    func() time.Time
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator drawing from rnd.
func NewGenerator(rnd RandomSource, cities *geo.Table, opts ...GeneratorOption) *Generator {
	g := &Generator{
		rnd:    rnd,
		cities: cities,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// uniform draws from U(a, b). Callers must hold g.mu.
func (g *Generator) uniform(a, b float64) float64 {
	return a + (b-a)*g.rnd.Float64()
}

func (g *Generator) pick(table []conditionSpec) conditionSpec {
	i := int(math.Floor(g.uniform(0, float64(len(table)))))
	if i >= len(table) {
		i = len(table) - 1
	}
	return table[i]
}

func (g *Generator) humidity() int {
	return 60 + int(math.Floor(g.uniform(0, 30)))
}

// Current returns a reading for a city. Unknown cities get the default city's coordinates.
func (g *Generator) Current(city, country string) Record {
	loc, _ := g.cities.Resolve(city)
	return g.current(strings.TrimSpace(city), common.CountryOrDefault(country), loc.Lat, loc.Lon)
}

// CurrentAt returns a reading for a point. The city is left empty.
func (g *Generator) CurrentAt(lat, lon float64) Record {
	return g.current("", common.DefaultCountry, lat, lon)
}

func (g *Generator) current(city, country string, lat, lon float64) Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	baseline := 5 + g.uniform(0, 5)
	temperature := common.Round1(baseline + g.uniform(-2, 2))
	feelsLike := temperature - g.uniform(1, 3)
	humidity := g.humidity()
	pressure := 1010 + int(math.Floor(g.uniform(0, 20)))

	cond := g.pick(currentConditions)
	clouds := math.Max(0, math.Min(100, cond.clouds+g.uniform(-10, 10)))
	windSpeed := g.uniform(2, 10)
	windDirection := int(math.Floor(g.uniform(0, 360)))
	visibility := 5000 + int(math.Floor(g.uniform(0, 5000)))

	return Record{
		City:          city,
		Country:       country,
		Latitude:      lat,
		Longitude:     lon,
		Temperature:   temperature,
		FeelsLike:     feelsLike,
		Humidity:      humidity,
		Pressure:      pressure,
		Description:   cond.description,
		Icon:          cond.icon,
		Condition:     cond.condition,
		Clouds:        int(clouds),
		WindSpeed:     windSpeed,
		WindDirection: windDirection,
		Visibility:    visibility,
		Timestamp:     g.now().UTC(),
	}
}

// Forecast returns days*8 points spaced three hours apart.
//
// The temperature follows baseline + 3*sin(hourOffset/12), which repeats
// roughly every 75 hours. Consumers rely on this exact shape.
func (g *Generator) Forecast(city, country string, days int) Forecast {
	g.mu.Lock()
	defer g.mu.Unlock()

	fc := Forecast{
		City:     strings.TrimSpace(city),
		Country:  common.CountryOrDefault(country),
		Forecast: []ForecastPoint{},
	}
	if days <= 0 {
		return fc
	}

	start := g.now().UTC()
	baseline := 5 + g.uniform(0, 5)

	n := days * PointsPerDay
	fc.Forecast = make([]ForecastPoint, 0, n)
	for i := 0; i < n; i++ {
		hourOffset := 3 * i
		temp := common.Round1(baseline + 3*math.Sin(float64(hourOffset)/12) + g.uniform(-1, 1))
		cond := g.pick(forecastConditions)
		humidity := g.humidity()
		windSpeed := g.uniform(2, 10)

		fc.Forecast = append(fc.Forecast, ForecastPoint{
			HourOffset:  hourOffset,
			Timestamp:   start.Add(time.Duration(hourOffset) * time.Hour),
			Temperature: temp,
			Description: cond.description,
			Icon:        cond.icon,
			Condition:   cond.condition,
			Humidity:    humidity,
			WindSpeed:   windSpeed,
		})
	}
	return fc
}

// Source exposes the generator as a weather Source.
func (g *Generator) Source() Source {
	return synthetic{g: g}
}

type synthetic struct {
	g *Generator
}

func (s synthetic) Current(_ context.Context, city, country string) (Record, error) {
	return s.g.Current(city, country), nil
}

func (s synthetic) CurrentAt(_ context.Context, lat, lon float64) (Record, error) {
	return s.g.CurrentAt(lat, lon), nil
}

func (s synthetic) Forecast(_ context.Context, city, country string, days int) (Forecast, error) {
	return s.g.Forecast(city, country, days), nil
}
