package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the outcome of the last probe of a service.
type State string

const (
	StateUnknown State = "unknown"
	StateOK      State = "ok"
	StateError   State = "error"
)

// DefaultProbeTimeout bounds a single liveness probe.
const DefaultProbeTimeout = 5 * time.Second

// Status is the last known liveness of one service.
type Status struct {
	Service   string    `json:"service"`
	State     State     `json:"state"`
	CheckedAt time.Time `json:"checkedAt"`
	LatencyMs int64     `json:"latencyMs"`
	Error     string    `json:"error,omitempty"`
}

// Target is a service and the URL of its liveness endpoint.
type Target struct {
	Name string
	URL  string
}

// DefaultTargets returns the liveness endpoints of the three providers.
func DefaultTargets(airQualityURL, weatherURL, advisoryURL string) []Target {
	return []Target{
		{Name: "air-quality", URL: strings.TrimRight(airQualityURL, "/") + "/api/air-quality/health"},
		{Name: "weather", URL: strings.TrimRight(weatherURL, "/") + "/health"},
		{Name: "health", URL: strings.TrimRight(advisoryURL, "/") + "/health"},
	}
}

// Recorder exports liveness.
type Recorder interface {
	SetServiceUp(target string, up bool)
}

// Monitor probes a fixed set of services and keeps one status per service.
type Monitor struct {
	client   *http.Client
	targets  []Target
	timeout  time.Duration
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	statuses map[string]Status
}

func New(client *http.Client, targets []Target, timeout time.Duration, recorder Recorder, logger zerolog.Logger) *Monitor {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	statuses := make(map[string]Status, len(targets))
	for _, t := range targets {
		statuses[t.Name] = Status{Service: t.Name, State: StateUnknown}
	}

	return &Monitor{
		client:   client,
		targets:  targets,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger.With().Str("component", "monitor").Logger(),
		now:      time.Now,
		statuses: statuses,
	}
}

// RunCycle probes every target one after the other. A failing probe only
// affects its own status.
func (m *Monitor) RunCycle(ctx context.Context) {
	for _, t := range m.targets {
		st := m.probe(ctx, t)

		m.mu.Lock()
		m.statuses[t.Name] = st
		m.mu.Unlock()

		if m.recorder != nil {
			m.recorder.SetServiceUp(t.Name, st.State == StateOK)
		}
		if st.State != StateOK {
			m.logger.Warn().Str("service", t.Name).Str("error", st.Error).Msg("service is down")
		}
	}
}

func (m *Monitor) probe(ctx context.Context, t Target) Status {
	start := time.Now()
	state, err := m.check(ctx, t.URL)

	st := Status{
		Service:   t.Name,
		State:     state,
		CheckedAt: m.now().UTC(),
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		st.Error = err.Error()
	}
	return st
}

func (m *Monitor) check(ctx context.Context, url string) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StateError, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return StateError, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StateError, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return StateOK, nil
}

// Statuses returns the current statuses in target order.
func (m *Monitor) Statuses() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Status, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, m.statuses[t.Name])
	}
	return out
}
