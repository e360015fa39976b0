package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{0.1, 0.3, 0.5, 0.7, 1, 2, 5}

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	UpstreamCalls       *prometheus.CounterVec
	UpstreamLatency     *prometheus.HistogramVec
	Recommendations     *prometheus.CounterVec
	RecommendationTime  prometheus.Histogram
	Aggregations        *prometheus.CounterVec
	ServiceUp           *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors, labelled with serviceName.
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{registry: reg}

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	m.UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "upstream_calls_total",
			Help:        "Total number of calls to upstream providers",
			ConstLabels: constLabels,
		},
		[]string{"upstream", "endpoint", "status"},
	)

	m.UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "upstream_latency_seconds",
			Help:        "Latency of calls to upstream providers",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets,
		},
		[]string{"upstream", "endpoint"},
	)

	m.Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "health_recommendations_total",
			Help:        "Total number of health recommendations generated",
			ConstLabels: constLabels,
		},
		[]string{"alert_level"},
	)

	m.RecommendationTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "health_recommendation_latency_seconds",
			Help:        "Latency of recommendation generation",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets,
		},
	)

	m.Aggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "aggregations_total",
			Help:        "Total number of orchestrated queries by mode and outcome",
			ConstLabels: constLabels,
		},
		[]string{"mode", "outcome"},
	)

	m.ServiceUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "service_up",
			Help:        "Last liveness probe result per provider (1 ok, 0 error)",
			ConstLabels: constLabels,
		},
		[]string{"target"},
	)

	reg.MustRegister(
		m.HTTPRequestDuration,
		m.UpstreamCalls,
		m.UpstreamLatency,
		m.Recommendations,
		m.RecommendationTime,
		m.Aggregations,
		m.ServiceUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records the duration of every request by route template.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Render errors here so the recorded status is the one sent.
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.HTTPRequestDuration.
			WithLabelValues(c.Method(), route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return nil
	}
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(upstream, endpoint, status string, elapsed time.Duration) {
	m.UpstreamCalls.WithLabelValues(upstream, endpoint, status).Inc()
	m.UpstreamLatency.WithLabelValues(upstream, endpoint).Observe(elapsed.Seconds())
}

// RecordAdvisory counts a generated advisory.
func (m *Metrics) RecordAdvisory(level string, elapsed time.Duration) {
	m.Recommendations.WithLabelValues(level).Inc()
	m.RecommendationTime.Observe(elapsed.Seconds())
}

// RecordAggregation counts an orchestrated query.
func (m *Metrics) RecordAggregation(mode, outcome string) {
	m.Aggregations.WithLabelValues(mode, outcome).Inc()
}

// SetServiceUp stores the last probe result of a provider.
func (m *Metrics) SetServiceUp(target string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.ServiceUp.WithLabelValues(target).Set(v)
}
