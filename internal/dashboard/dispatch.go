package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/i474232898/environment-aggregation/internal/common"
)

const (
	EventSearch    = "search"
	EventQuickCity = "quick-city"
	EventMapClick  = "map-click"
)

// Event is an input from the display: a search form submit, a quick city
// shortcut or a click on the map.
type Event struct {
	Name    string   `json:"event"`
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Aggregator is the pair of entry points events are routed to.
type Aggregator interface {
	ByName(ctx context.Context, city, country string) (Result, error)
	ByCoordinates(ctx context.Context, lat, lng float64) (Result, error)
}

// HandlerFunc handles one kind of event.
type HandlerFunc func(ctx context.Context, ev Event) (Result, error)

// Dispatcher maps event names to handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewDispatcher registers the search, quick-city and map-click events.
func NewDispatcher(agg Aggregator) *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]HandlerFunc)}

	d.Register(EventSearch, func(ctx context.Context, ev Event) (Result, error) {
		return agg.ByName(ctx, ev.City, ev.Country)
	})
	d.Register(EventQuickCity, func(ctx context.Context, ev Event) (Result, error) {
		return agg.ByName(ctx, ev.City, common.DefaultCountry)
	})
	d.Register(EventMapClick, func(ctx context.Context, ev Event) (Result, error) {
		if ev.Lat == nil || ev.Lng == nil {
			return Result{}, fmt.Errorf("%w: lat and lng are required", common.ErrInvalidInput)
		}
		return agg.ByCoordinates(ctx, *ev.Lat, *ev.Lng)
	})
	return d
}

// Register adds or replaces the handler of an event.
func (d *Dispatcher) Register(name string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = h
}

// Dispatch routes ev to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Result, error) {
	d.mu.RLock()
	h, ok := d.handlers[ev.Name]
	d.mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("%w: unknown event %q", common.ErrInvalidInput, ev.Name)
	}
	return h(ctx, ev)
}

// Events lists the registered event names.
func (d *Dispatcher) Events() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
