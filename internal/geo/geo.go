package geo

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultCity is returned for any city name missing from the table.
const DefaultCity = "Paris"

// City is a named point on the map.
type City struct {
	Name    string  `yaml:"name" json:"name"`
	Country string  `yaml:"country" json:"country"`
	Lat     float64 `yaml:"lat" json:"latitude"`
	Lon     float64 `yaml:"lon" json:"longitude"`
}

// Table resolves city names to coordinates. Lookups are case-insensitive.
type Table struct {
	mu       sync.RWMutex
	cities   map[string]City
	fallback City
}

// NewTable builds a table from the built-in French cities plus any extras.
func NewTable(extra ...City) *Table {
	t := &Table{cities: make(map[string]City, len(knownCities)+len(extra))}
	for _, c := range knownCities {
		t.add(c)
	}
	for _, c := range extra {
		t.add(c)
	}
	t.fallback = t.cities[key(DefaultCity)]
	return t
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (t *Table) add(c City) {
	if c.Country == "" {
		c.Country = "FR"
	}
	t.cities[key(c.Name)] = c
}

// Add registers or replaces a city.
func (t *Table) Add(c City) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add(c)
}

// Resolve returns the coordinates of a known city, or the default city when the
// name is unknown. The boolean reports whether the name was found.
func (t *Table) Resolve(name string) (City, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if c, ok := t.cities[key(name)]; ok {
		return c, true
	}
	return t.fallback, false
}

// Nearest returns the closest known city within maxKm of the point.
func (t *Table) Nearest(lat, lon, maxKm float64) (City, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var (
		best     City
		bestDist = math.Inf(1)
	)
	for _, c := range t.cities {
		d := Haversine(lat, lon, c.Lat, c.Lon)
		// Ties are broken by name so the result does not depend on map order.
		if d < bestDist || (d == bestDist && c.Name < best.Name) {
			best, bestDist = c, d
		}
	}
	if bestDist > maxKm {
		return City{}, false
	}
	return best, true
}

// Names lists the known city names in alphabetical order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.cities))
	for _, c := range t.cities {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads additional cities from a YAML file of the form:
//
//	cities:
//	  - name: Geneva
//	    country: CH
//	    lat: 46.2044
//	    lon: 6.1432
func LoadFile(path string) ([]City, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cities file: %w", err)
	}
	var doc struct {
		Cities []City `yaml:"cities"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse cities file: %w", err)
	}
	for i, c := range doc.Cities {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("parse cities file: entry %d has no name", i)
		}
	}
	return doc.Cities, nil
}

// Haversine calculates the distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371 // Earth radius in km

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}
