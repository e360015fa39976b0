package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Ports of the three providers and the aggregator.
type Ports struct {
	AirQuality int `envconfig:"AIR_QUALITY_PORT" default:"8080"`
	Weather    int `envconfig:"WEATHER_PORT" default:"8081"`
	Advisory   int `envconfig:"HEALTH_PORT" default:"8082"`
	Aggregator int `envconfig:"AGGREGATOR_PORT" default:"8090"`
}

// Services holds the base URLs of the providers. Empty URLs are derived
// from Host and the matching port.
type Services struct {
	Host          string `envconfig:"PROVIDER_HOST" default:"http://localhost"`
	AirQualityURL string `envconfig:"AIR_QUALITY_URL"`
	WeatherURL    string `envconfig:"WEATHER_URL"`
	AdvisoryURL   string `envconfig:"HEALTH_URL"`
}

// Server configures the fiber apps.
type Server struct {
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// Upstream configures outbound HTTP calls.
type Upstream struct {
	Timeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"UPSTREAM_MAX_RETRIES" default:"0"`
	BackoffInitial time.Duration `envconfig:"UPSTREAM_BACKOFF_INITIAL" default:"500ms"`
	BackoffMax     time.Duration `envconfig:"UPSTREAM_BACKOFF_MAX" default:"5s"`
}

// Breaker configures the circuit breakers around upstream calls.
type Breaker struct {
	MaxRequests      uint32        `envconfig:"BREAKER_MAX_REQUESTS" default:"5"`
	Interval         time.Duration `envconfig:"BREAKER_INTERVAL" default:"1m"`
	Timeout          time.Duration `envconfig:"BREAKER_TIMEOUT" default:"2m"`
	FailureThreshold uint32        `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
}

// Monitor configures the liveness monitor.
type Monitor struct {
	Interval     time.Duration `envconfig:"MONITOR_INTERVAL" default:"30s"`
	ProbeTimeout time.Duration `envconfig:"MONITOR_PROBE_TIMEOUT" default:"5s"`
}

// Dashboard configures the orchestrator and its display board.
type Dashboard struct {
	FailFast       bool          `envconfig:"FAIL_FAST" default:"true"`
	Radius         int           `envconfig:"SEARCH_RADIUS" default:"25000"`
	NotifyMaxCount int           `envconfig:"NOTIFY_MAX_HISTORY" default:"50"`
	NotifyMaxAge   time.Duration `envconfig:"NOTIFY_MAX_AGE" default:"1h"`
}

// Providers holds credentials and endpoints of third-party data sources.
type Providers struct {
	OpenAQAPIKey      string `envconfig:"OPENAQ_API_KEY"`
	OpenAQURL         string `envconfig:"OPENAQ_URL" default:"https://api.openaq.org/v3"`
	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY"`
	OpenWeatherURL    string `envconfig:"OPENWEATHER_URL" default:"https://api.openweathermap.org/data/2.5"`
	GeocoderAPIKey    string `envconfig:"GEOCODER_API_KEY"`
	WeatherSeed       int64  `envconfig:"WEATHER_SEED" default:"0"`
}

// Config is the full application configuration.
type Config struct {
	Ports     Ports
	Services  Services
	Server    Server
	Upstream  Upstream
	Breaker   Breaker
	Monitor   Monitor
	Dashboard Dashboard
	Providers Providers

	CitiesFile string `envconfig:"CITIES_FILE"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogsPath   string `envconfig:"LOGS_PATH"`
}

// Load reads an optional .env file and the environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("invalid MONITOR_INTERVAL: %s", c.Monitor.Interval)
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.BackoffInitial <= 0 {
		return fmt.Errorf("invalid UPSTREAM_BACKOFF_INITIAL: %s", c.Upstream.BackoffInitial)
	}
	if c.Dashboard.Radius <= 0 {
		return fmt.Errorf("invalid SEARCH_RADIUS: %d", c.Dashboard.Radius)
	}
	return nil
}

// AirQualityURL is the base URL of the air quality provider.
func (c *Config) AirQualityURL() string {
	return c.serviceURL(c.Services.AirQualityURL, c.Ports.AirQuality)
}

// WeatherURL is the base URL of the weather provider.
func (c *Config) WeatherURL() string {
	return c.serviceURL(c.Services.WeatherURL, c.Ports.Weather)
}

// AdvisoryURL is the base URL of the health advisory provider.
func (c *Config) AdvisoryURL() string {
	return c.serviceURL(c.Services.AdvisoryURL, c.Ports.Advisory)
}

func (c *Config) serviceURL(override string, port int) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	return strings.TrimRight(c.Services.Host, "/") + ":" + strconv.Itoa(port)
}
