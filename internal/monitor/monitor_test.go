package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu sync.Mutex
	up map[string]bool
}

func (f *fakeRecorder) SetServiceUp(target string, up bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.up == nil {
		f.up = make(map[string]bool)
	}
	f.up[target] = up
}

func TestDefaultTargets(t *testing.T) {
	targets := DefaultTargets("http://aq:8080/", "http://wx:8081", "http://hs:8082")
	assert.Equal(t, []Target{
		{Name: "air-quality", URL: "http://aq:8080/api/air-quality/health"},
		{Name: "weather", URL: "http://wx:8081/health"},
		{Name: "health", URL: "http://hs:8082/health"},
	}, targets)
}

func TestStatusesBeforeFirstCycle(t *testing.T) {
	m := New(nil, DefaultTargets("a", "b", "c"), 0, nil, zerolog.Nop())
	for _, st := range m.Statuses() {
		assert.Equal(t, StateUnknown, st.State)
	}
}

func TestRunCycleFailingServiceDoesNotBlockOthers(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/api/air-quality/health":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/slow/health":
			time.Sleep(200 * time.Millisecond)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	targets := []Target{
		{Name: "air-quality", URL: srv.URL + "/api/air-quality/health"},
		{Name: "weather", URL: srv.URL + "/slow/health"},
		{Name: "health", URL: srv.URL + "/health"},
	}
	rec := &fakeRecorder{}
	m := New(srv.Client(), targets, 50*time.Millisecond, rec, zerolog.Nop())

	m.RunCycle(context.Background())

	statuses := m.Statuses()
	require.Len(t, statuses, 3)

	assert.Equal(t, StateError, statuses[0].State)
	assert.Contains(t, statuses[0].Error, "503")

	assert.Equal(t, StateError, statuses[1].State, "probe must time out")
	assert.NotEmpty(t, statuses[1].Error)

	assert.Equal(t, StateOK, statuses[2].State)
	assert.Empty(t, statuses[2].Error)
	assert.False(t, statuses[2].CheckedAt.IsZero())

	assert.Equal(t, []string{"/api/air-quality/health", "/slow/health", "/health"}, order)
	assert.Equal(t, map[string]bool{"air-quality": false, "weather": false, "health": true}, rec.up)
}

func TestRunCycleUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := New(nil, []Target{{Name: "weather", URL: url + "/health"}}, time.Second, nil, zerolog.Nop())
	m.RunCycle(context.Background())

	st := m.Statuses()[0]
	assert.Equal(t, StateError, st.State)
	assert.NotEmpty(t, st.Error)
}

func TestRunCycleOverwritesStatus(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	m := New(srv.Client(), []Target{{Name: "health", URL: srv.URL}}, time.Second, nil, zerolog.Nop())

	m.RunCycle(context.Background())
	assert.Equal(t, StateError, m.Statuses()[0].State)

	healthy.Store(true)
	m.RunCycle(context.Background())
	assert.Equal(t, StateOK, m.Statuses()[0].State)
	assert.Empty(t, m.Statuses()[0].Error)
}
