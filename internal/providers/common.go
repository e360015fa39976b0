package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/environment-aggregation/internal/common"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// BreakerConfig controls the circuit breaker wrapped around an upstream.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32

	// Disabled keeps the breaker closed whatever the failures.
	Disabled bool
}

// Recorder observes every upstream attempt.
type Recorder interface {
	ObserveUpstream(upstream, endpoint, status string, elapsed time.Duration)
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client   *http.Client
	Backoff  BackoffConfig
	Breaker  BreakerConfig
	Recorder Recorder
}

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// StatusError is a non-2xx answer from an upstream.
type StatusError struct {
	Upstream string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Upstream, e.Code)
}

// Unwrap classifies the status: rejected credentials and 503 mean the
// provider is misconfigured, anything else means it is unavailable.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusServiceUnavailable:
		return common.ErrProviderMisconfigured
	default:
		return common.ErrUpstreamUnavailable
	}
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests ||
		(e.Code >= 500 && e.Code != http.StatusServiceUnavailable)
}

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
	}
	switch {
	case cfg.Disabled:
		settings.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	case cfg.FailureThreshold > 0:
		threshold := cfg.FailureThreshold
		settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		}
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	endpoint string,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		start := time.Now()
		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, &StatusError{Upstream: cb.Name(), Code: resp.StatusCode}
			}

			return resp, nil
		})
		observe(cfg, cb.Name(), endpoint, err, time.Since(start))

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", common.ErrUpstreamUnavailable, errCircuitOpen, err)
		}

		var statusErr *StatusError
		isStatus := errors.As(err, &statusErr)
		if isStatus && !statusErr.retryable() {
			return nil, err
		}

		if attempt >= cfg.Backoff.MaxRetries {
			if isStatus {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", common.ErrUpstreamUnavailable, err)
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

func observe(cfg HTTPClientConfig, upstream, endpoint string, err error, elapsed time.Duration) {
	if cfg.Recorder == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	cfg.Recorder.ObserveUpstream(upstream, endpoint, status, elapsed)
}

// getJSON issues a GET through the resilience helper and decodes the body into out.
func getJSON(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	endpoint, rawURL string,
	header http.Header,
	out interface{},
) error {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, cfg, cb, endpoint, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", common.ErrUpstreamUnavailable, cb.Name(), err)
	}
	return nil
}
