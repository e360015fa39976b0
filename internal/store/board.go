package store

import (
	"sync"
	"time"

	"github.com/i474232898/environment-aggregation/internal/advisory"
	"github.com/i474232898/environment-aggregation/internal/dashboard"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// Notification is an error message shown to the user.
type Notification struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a copy of everything the board currently shows. Nil panels
// have never been updated.
type Snapshot struct {
	AirQuality    *dashboard.AirQualityView `json:"airQuality"`
	Weather       *weather.Record           `json:"weather"`
	Advisory      *advisory.Advisory        `json:"advisory"`
	Location      *dashboard.Location       `json:"location"`
	Notifications []Notification            `json:"notifications"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// Board is a concurrency-safe in-memory implementation of every dashboard sink.
type Board struct {
	mu sync.RWMutex

	air           *dashboard.AirQualityView
	weather       *weather.Record
	advisory      *advisory.Advisory
	location      *dashboard.Location
	notifications []Notification
	updatedAt     time.Time

	// retention configuration
	maxHistory int           // max number of notifications kept
	maxAge     time.Duration // optional max age for notifications

	now func() time.Time
}

// NewBoard creates a new Board with optional notification limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewBoard(maxHistory int, maxAge time.Duration) *Board {
	return &Board{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Sinks returns the board as the sinks of an orchestrator.
func (b *Board) Sinks() dashboard.Sinks {
	return dashboard.Sinks{
		AirQuality: b,
		Weather:    b,
		Advisory:   b,
		Map:        b,
		Errors:     b,
		Batch:      b,
	}
}

// Apply sets every panel of the update and its notification under one lock.
func (b *Board) Apply(u dashboard.Update) {
	now := b.now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()

	if u.AirQuality != nil {
		air := *u.AirQuality
		b.air = &air
	}
	if u.Weather != nil {
		rec := *u.Weather
		b.weather = &rec
	}
	if u.Advisory != nil {
		adv := *u.Advisory
		b.advisory = &adv
	}
	if u.Location != nil {
		loc := *u.Location
		b.location = &loc
	}
	b.updatedAt = now
	if u.Err != nil {
		b.notifyLocked(u.Err, now)
	}
}

func (b *Board) UpdateAirQuality(view dashboard.AirQualityView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.air = &view
	b.updatedAt = b.now().UTC()
}

func (b *Board) UpdateWeather(rec weather.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.weather = &rec
	b.updatedAt = b.now().UTC()
}

func (b *Board) UpdateAdvisory(adv advisory.Advisory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advisory = &adv
	b.updatedAt = b.now().UTC()
}

func (b *Board) UpdateLocation(loc dashboard.Location) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.location = &loc
	b.updatedAt = b.now().UTC()
}

// NotifyError appends a notification and enforces retention.
func (b *Board) NotifyError(err error) {
	if err == nil {
		return
	}
	now := b.now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifyLocked(err, now)
}

func (b *Board) notifyLocked(err error, now time.Time) {
	b.notifications = append(b.notifications, Notification{Message: err.Error(), Timestamp: now})

	// Enforce retention by count.
	if b.maxHistory > 0 && len(b.notifications) > b.maxHistory {
		over := len(b.notifications) - b.maxHistory
		b.notifications = b.notifications[over:]
	}

	// Enforce retention by age.
	if b.maxAge > 0 {
		cutoff := now.Add(-b.maxAge)
		i := 0
		for ; i < len(b.notifications); i++ {
			if !b.notifications[i].Timestamp.Before(cutoff) {
				break
			}
		}
		b.notifications = b.notifications[i:]
	}
}

// Snapshot returns a copy of the board.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := Snapshot{
		Notifications: make([]Notification, len(b.notifications)),
		UpdatedAt:     b.updatedAt,
	}
	copy(snap.Notifications, b.notifications)

	if b.air != nil {
		air := *b.air
		snap.AirQuality = &air
	}
	if b.weather != nil {
		rec := *b.weather
		snap.Weather = &rec
	}
	if b.advisory != nil {
		adv := *b.advisory
		snap.Advisory = &adv
	}
	if b.location != nil {
		loc := *b.location
		snap.Location = &loc
	}
	return snap
}
