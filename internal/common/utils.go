package common

import (
	"math"
	"strings"
)

// DefaultCountry is used whenever a query omits the country code.
const DefaultCountry = "FR"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CountryOrDefault trims the country code and falls back to DefaultCountry.
func CountryOrDefault(country string) string {
	if c := strings.TrimSpace(country); c != "" {
		return strings.ToUpper(c)
	}
	return DefaultCountry
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
