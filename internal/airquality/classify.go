package airquality

import (
	"errors"
	"math"
)

// TopLimit is the maximum number of detailed measurements in a Report.
const TopLimit = 5

// ErrEmptyInput is returned when Summarize is called with no measurements.
var ErrEmptyInput = errors.New("no measurements to summarize")

// Summarize reduces measurements to a single index and category.
//
// The average is taken over the valid measurements, or over all of them when
// none is valid. QualityLevel always comes from the first measurement as
// received, even if it is invalid.
func Summarize(ms []Measurement) (Report, error) {
	if len(ms) == 0 {
		return Report{}, ErrEmptyInput
	}

	valid := make([]Measurement, 0, len(ms))
	for _, m := range ms {
		if m.Valid() {
			valid = append(valid, m)
		}
	}

	source := valid
	if len(source) == 0 {
		source = ms
	}

	var sum float64
	for _, m := range source {
		sum += float64(m.AQI)
	}
	avg := int(math.Round(sum / float64(len(source))))

	report := Report{
		AverageAQI:   avg,
		QualityLevel: ms[0].QualityLevel,
		Class:        Classify(float64(avg)),
	}

	if len(valid) == 0 {
		report.NoDetail = true
		return report, nil
	}

	top := valid
	if len(top) > TopLimit {
		top = top[:TopLimit]
	}
	report.TopMeasurements = top
	return report, nil
}

// Classify maps an AQI value to its category. Boundaries belong to the lower bucket.
func Classify(aqi float64) Category {
	switch {
	case aqi <= 50:
		return CategoryGood
	case aqi <= 100:
		return CategoryModerate
	case aqi <= 150:
		return CategoryUnhealthySensitive
	case aqi <= 200:
		return CategoryUnhealthy
	case aqi <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}
