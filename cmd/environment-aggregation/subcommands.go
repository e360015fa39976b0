package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/airquality"
	httpapi "github.com/i474232898/environment-aggregation/internal/api/http"
	"github.com/i474232898/environment-aggregation/internal/config"
	"github.com/i474232898/environment-aggregation/internal/dashboard"
	"github.com/i474232898/environment-aggregation/internal/geo"
	"github.com/i474232898/environment-aggregation/internal/logger"
	"github.com/i474232898/environment-aggregation/internal/metrics"
	"github.com/i474232898/environment-aggregation/internal/monitor"
	"github.com/i474232898/environment-aggregation/internal/providers"
	"github.com/i474232898/environment-aggregation/internal/scheduler"
	"github.com/i474232898/environment-aggregation/internal/store"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// env is what every subcommand needs before wiring its own parts.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Load configuration, logger and metrics for a service
func setup(cmd *cobra.Command, service string) (*env, error) {
	var envFiles []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		envFiles = append(envFiles, f)
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if l, _ := cmd.Flags().GetString("log"); l != "" {
		level = l
	}
	log, err := logger.NewLogger(cfg.LogsPath, service, level)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, log: log, metrics: metrics.NewMetrics(service)}, nil
}

// Outbound HTTP settings with resilience (backoff + circuit breaker)
func (r *env) httpConfig() providers.HTTPClientConfig {
	up, br := r.cfg.Upstream, r.cfg.Breaker
	return providers.HTTPClientConfig{
		Client: &http.Client{Timeout: up.Timeout},
		Backoff: providers.BackoffConfig{
			MaxRetries:      up.MaxRetries,
			InitialInterval: up.BackoffInitial,
			MaxInterval:     up.BackoffMax,
		},
		Breaker: providers.BreakerConfig{
			MaxRequests:      br.MaxRequests,
			Interval:         br.Interval,
			Timeout:          br.Timeout,
			FailureThreshold: br.FailureThreshold,
		},
		Recorder: r.metrics,
	}
}

// Outbound HTTP settings of the aggregator. Queries are never cut short:
// no client timeout, no retries and a breaker that never opens.
func (r *env) fanOutHTTPConfig() providers.HTTPClientConfig {
	cfg := r.httpConfig()
	cfg.Client = &http.Client{}
	cfg.Backoff.MaxRetries = 0
	cfg.Breaker = providers.BreakerConfig{Disabled: true}
	return cfg
}

// Built-in cities plus the optional cities file
func (r *env) cities() (*geo.Table, error) {
	table := geo.NewTable()
	if r.cfg.CitiesFile == "" {
		return table, nil
	}

	extra, err := geo.LoadFile(r.cfg.CitiesFile)
	if err != nil {
		return nil, err
	}
	for _, c := range extra {
		table.Add(c)
	}
	r.log.Info().Int("count", len(extra)).Str("file", r.cfg.CitiesFile).Msg("loaded extra cities")
	return table, nil
}

func (r *env) port(cmd *cobra.Command, configured int) int {
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		return p
	}
	return configured
}

// Start server with graceful shutdown
func (r *env) serve(ctx context.Context, app *fiber.App, port int) error {
	errCh := make(chan error, 1)
	go func() {
		r.log.Info().Int("port", port).Msg("listening")
		errCh <- app.Listen(fmt.Sprintf(":%d", port))
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		r.log.Error().Err(err).Msg("error during shutdown")
		return err
	}
	r.log.Info().Msg("server stopped")
	return nil
}

// Run the air quality provider
func newAirQualityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "airquality",
		Short: "Serve air quality measurements backed by OpenAQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, "air-quality-service")
			if err != nil {
				return err
			}
			cities, err := rt.cities()
			if err != nil {
				return err
			}

			if rt.cfg.Providers.OpenAQAPIKey == "" {
				rt.log.Warn().Msg("OPENAQ_API_KEY is not set, data requests will answer 503")
			}
			upstream := providers.NewOpenAQProvider(rt.cfg.Providers.OpenAQURL, rt.cfg.Providers.OpenAQAPIKey, rt.httpConfig(), rt.log)
			svc := airquality.NewService(upstream, cities, rt.log)

			app := httpapi.NewApp("air-quality-service", rt.cfg.Server, rt.metrics)
			httpapi.RegisterAirQualityRoutes(app, svc)
			return rt.serve(cmd.Context(), app, rt.port(cmd, rt.cfg.Ports.AirQuality))
		},
	}
}

// Run the weather provider
func newWeatherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Serve current weather and forecasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, "weather-service")
			if err != nil {
				return err
			}
			cities, err := rt.cities()
			if err != nil {
				return err
			}

			synthetic, _ := cmd.Flags().GetBool("synthetic")
			var source weather.Source
			if synthetic || rt.cfg.Providers.OpenWeatherAPIKey == "" {
				seed := rt.cfg.Providers.WeatherSeed
				if seed == 0 {
					seed = time.Now().UnixNano()
				}
				source = weather.NewGenerator(rand.New(rand.NewSource(seed)), cities).Source()
				rt.log.Info().Int64("seed", seed).Msg("using synthetic weather")
			} else {
				source = providers.NewOpenWeatherProvider(rt.cfg.Providers.OpenWeatherURL, rt.cfg.Providers.OpenWeatherAPIKey, rt.httpConfig())
				rt.log.Info().Msg("using OpenWeatherMap")
			}

			var geocoder weather.Geocoder
			if rt.cfg.Providers.GeocoderAPIKey != "" {
				geocoder = providers.NewGoogleGeocoder(rt.cfg.Providers.GeocoderAPIKey)
			}

			svc := weather.NewService(source, geocoder, cities, rt.log)

			app := httpapi.NewApp("weather-service", rt.cfg.Server, rt.metrics)
			httpapi.RegisterWeatherRoutes(app, svc)
			return rt.serve(cmd.Context(), app, rt.port(cmd, rt.cfg.Ports.Weather))
		},
	}
	cmd.Flags().Bool("synthetic", false, "Generate weather locally even when an OpenWeatherMap key is set")
	return cmd
}

// Run the health advisory provider
func newAdvisoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advisory",
		Short: "Serve health recommendations from air quality and weather",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, "health-service")
			if err != nil {
				return err
			}

			httpCfg := rt.httpConfig()
			svc := advisory.NewService(
				providers.NewAirQualityClient(rt.cfg.AirQualityURL(), httpCfg),
				providers.NewWeatherClient(rt.cfg.WeatherURL(), httpCfg),
				rt.metrics,
				rt.log,
			)

			app := httpapi.NewApp("health-service", rt.cfg.Server, rt.metrics)
			httpapi.RegisterAdvisoryRoutes(app, svc)
			return rt.serve(cmd.Context(), app, rt.port(cmd, rt.cfg.Ports.Advisory))
		},
	}
}

// Run the aggregator with its display board and liveness monitor
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve combined conditions and provider liveness",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, "aggregator")
			if err != nil {
				return err
			}

			opts := dashboard.Options{
				FailFast: rt.cfg.Dashboard.FailFast,
				Radius:   rt.cfg.Dashboard.Radius,
			}
			if partial, _ := cmd.Flags().GetBool("partial"); partial {
				opts.FailFast = false
			}

			httpCfg := rt.fanOutHTTPConfig()
			board := store.NewBoard(rt.cfg.Dashboard.NotifyMaxCount, rt.cfg.Dashboard.NotifyMaxAge)
			orch := dashboard.NewOrchestrator(
				providers.NewAirQualityClient(rt.cfg.AirQualityURL(), httpCfg),
				providers.NewWeatherClient(rt.cfg.WeatherURL(), httpCfg),
				providers.NewAdvisoryClient(rt.cfg.AdvisoryURL(), httpCfg),
				board.Sinks(),
				opts,
				rt.metrics,
				rt.log,
			)

			targets := monitor.DefaultTargets(rt.cfg.AirQualityURL(), rt.cfg.WeatherURL(), rt.cfg.AdvisoryURL())
			mon := monitor.New(&http.Client{}, targets, rt.cfg.Monitor.ProbeTimeout, rt.metrics, rt.log)

			// Scheduler that periodically probes the providers.
			sched := scheduler.New(mon, rt.cfg.Monitor.Interval, rt.log)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			app := httpapi.NewApp("aggregator", rt.cfg.Server, rt.metrics)
			httpapi.RegisterAggregatorRoutes(app, httpapi.Aggregator{
				Conditions: orch,
				Events:     dashboard.NewDispatcher(orch),
				Board:      board,
				Services:   mon,
			})
			return rt.serve(cmd.Context(), app, rt.port(cmd, rt.cfg.Ports.Aggregator))
		},
	}
	cmd.Flags().Bool("partial", false, "Apply the succeeding providers when another one fails")
	return cmd
}
