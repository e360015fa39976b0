package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environment-aggregation/internal/common"
)

type recordedCall struct {
	upstream, endpoint, status string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) ObserveUpstream(upstream, endpoint, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{upstream, endpoint, status})
}

func testHTTPConfig(retries int) HTTPClientConfig {
	return HTTPClientConfig{
		Client: &http.Client{Timeout: 2 * time.Second},
		Backoff: BackoffConfig{
			MaxRetries:      retries,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
		Breaker: BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 3},
	}
}

func TestStatusErrorClassification(t *testing.T) {
	tests := []struct {
		code      int
		want      error
		retryable bool
	}{
		{http.StatusUnauthorized, common.ErrProviderMisconfigured, false},
		{http.StatusForbidden, common.ErrProviderMisconfigured, false},
		{http.StatusServiceUnavailable, common.ErrProviderMisconfigured, false},
		{http.StatusNotFound, common.ErrUpstreamUnavailable, false},
		{http.StatusTooManyRequests, common.ErrUpstreamUnavailable, true},
		{http.StatusBadGateway, common.ErrUpstreamUnavailable, true},
	}
	for _, tt := range tests {
		err := &StatusError{Upstream: "x", Code: tt.code}
		assert.ErrorIs(t, err, tt.want, "code %d", tt.code)
		assert.Equal(t, tt.retryable, err.retryable(), "code %d", tt.code)
	}
}

func TestGetJSONRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	cfg := testHTTPConfig(2)
	cfg.Recorder = rec
	cb := newCircuitBreaker("test", cfg.Breaker)

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, getJSON(context.Background(), cfg, cb, "value", srv.URL, nil, &out))
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, int32(3), hits.Load())

	require.Len(t, rec.calls, 3)
	assert.Equal(t, recordedCall{"test", "value", "error"}, rec.calls[0])
	assert.Equal(t, recordedCall{"test", "value", "success"}, rec.calls[2])
}

func TestGetJSONDoesNotRetryRejectedCredentials(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testHTTPConfig(3)
	cb := newCircuitBreaker("test", cfg.Breaker)

	var out map[string]interface{}
	err := getJSON(context.Background(), cfg, cb, "value", srv.URL, nil, &out)
	assert.ErrorIs(t, err, common.ErrProviderMisconfigured)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetJSONBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testHTTPConfig(0)
	cb := newCircuitBreaker("test", cfg.Breaker)

	var out map[string]interface{}
	for i := 0; i < 3; i++ {
		err := getJSON(context.Background(), cfg, cb, "value", srv.URL, nil, &out)
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	}

	err := getJSON(context.Background(), cfg, cb, "value", srv.URL, nil, &out)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetJSONDisabledBreakerStaysClosed(t *testing.T) {
	var (
		hits    atomic.Int32
		healthy atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	cfg := testHTTPConfig(0)
	cfg.Breaker = BreakerConfig{Disabled: true}
	cb := newCircuitBreaker("test", cfg.Breaker)

	var out map[string]interface{}
	for i := 0; i < 10; i++ {
		err := getJSON(context.Background(), cfg, cb, "value", srv.URL, nil, &out)
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
		assert.NotErrorIs(t, err, errCircuitOpen)
	}

	// A recovered upstream answers on the very next call.
	healthy.Store(true)
	require.NoError(t, getJSON(context.Background(), cfg, cb, "value", srv.URL, nil, &out))
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, int32(11), hits.Load())
}

func TestGetJSONTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := testHTTPConfig(0)
	cb := newCircuitBreaker("test", cfg.Breaker)

	var out map[string]interface{}
	err := getJSON(context.Background(), cfg, cb, "value", url, nil, &out)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestGetJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	cfg := testHTTPConfig(0)
	cb := newCircuitBreaker("test", cfg.Breaker)

	var out map[string]interface{}
	err := getJSON(context.Background(), cfg, cb, "value", srv.URL, nil, &out)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestGetJSONRejectsBadConfig(t *testing.T) {
	cb := newCircuitBreaker("test", BreakerConfig{})
	var out map[string]interface{}

	err := getJSON(context.Background(), HTTPClientConfig{}, cb, "value", "http://localhost", nil, &out)
	assert.ErrorIs(t, err, errNoHTTPClient)

	cfg := testHTTPConfig(0)
	cfg.Backoff.InitialInterval = 0
	err = getJSON(context.Background(), cfg, cb, "value", "http://localhost", nil, &out)
	assert.ErrorIs(t, err, errInvalidConfig)
}
