package airquality

import (
	"math"
	"strings"
)

const unknownParameter = "unknown"

var recognized = map[string]struct{}{
	"pm25": {},
	"pm10": {},
	"pm1":  {},
	"o3":   {},
	"no2":  {},
	"so2":  {},
	"co":   {},
	"no":   {},
	"nox":  {},
	"bc":   {},
}

// NormalizeParameter lower-cases a pollutant code and folds common spellings.
func NormalizeParameter(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.NewReplacer(".", "", " ", "", "_", "").Replace(p)
	if p == "" {
		return unknownParameter
	}
	return p
}

// IsRecognized reports whether p names a known pollutant.
func IsRecognized(p string) bool {
	_, ok := recognized[NormalizeParameter(p)]
	return ok
}

type breakpoint struct {
	limit float64
	index int
}

var (
	pm25Breakpoints = []breakpoint{{12, 50}, {35.4, 100}, {55.4, 150}, {150.4, 200}, {250.4, 300}}
	pm10Breakpoints = []breakpoint{{54, 50}, {154, 100}, {254, 150}, {354, 200}, {424, 300}}
)

// IndexFor computes a simplified AQI for a pollutant value.
func IndexFor(parameter string, value float64) int {
	switch NormalizeParameter(parameter) {
	case "pm25":
		return stepIndex(pm25Breakpoints, value)
	case "pm10":
		return stepIndex(pm10Breakpoints, value)
	default:
		return int(math.Min(value*2, 500))
	}
}

func stepIndex(bps []breakpoint, value float64) int {
	for _, bp := range bps {
		if value <= bp.limit {
			return bp.index
		}
	}
	return 500
}
