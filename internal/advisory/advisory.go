package advisory

import (
	"github.com/i474232898/environment-aggregation/internal/airquality"
	"github.com/i474232898/environment-aggregation/internal/common"
	"github.com/i474232898/environment-aggregation/internal/weather"
)

// defaultAQI is assumed when no measurement is available.
const defaultAQI = 50

// LevelFor maps a mean AQI to an alert level.
func LevelFor(aqi float64) AlertLevel {
	switch {
	case aqi <= 50:
		return AlertLow
	case aqi <= 100:
		return AlertModerate
	case aqi <= 150:
		return AlertHigh
	case aqi <= 200:
		return AlertVeryHigh
	default:
		return AlertExtreme
	}
}

// MeanAQI averages the AQI of every measurement, valid or not.
func MeanAQI(ms []airquality.Measurement) float64 {
	if len(ms) == 0 {
		return defaultAQI
	}
	var sum float64
	for _, m := range ms {
		sum += float64(m.AQI)
	}
	return sum / float64(len(ms))
}

type guidance struct {
	recommendations []string
	atRisk          []string
	activities      []string
}

var guidanceByLevel = map[AlertLevel]guidance{
	AlertLow: {
		recommendations: []string{"Air quality is excellent. Enjoy outdoor activities."},
		activities:      []string{"Running, cycling, outdoor sports"},
	},
	AlertModerate: {
		recommendations: []string{
			"Air quality is acceptable. Most people can go outside.",
			"Sensitive people should limit prolonged outdoor exertion.",
		},
		atRisk:     []string{"People with asthma"},
		activities: []string{"Moderate outdoor activities"},
	},
	AlertHigh: {
		recommendations: []string{
			"Air quality is a concern for sensitive groups.",
			"Limit intense and prolonged outdoor activities.",
		},
		atRisk:     []string{"Children", "Elderly people", "People with asthma"},
		activities: []string{"Light outdoor activities, prefer indoors"},
	},
	AlertVeryHigh: {
		recommendations: []string{
			"Air quality is poor. Everyone may feel the effects.",
			"Avoid intense outdoor activities.",
			"Wear a mask if you need to go out.",
		},
		atRisk:     []string{"Everyone", "Especially children, elderly people and the chronically ill"},
		activities: []string{"Indoor activities only"},
	},
	AlertExtreme: {
		recommendations: []string{
			"ALERT: air quality is hazardous.",
			"Stay indoors and keep windows closed.",
			"Wear an N95 mask if you absolutely must go out.",
		},
		atRisk:     []string{"The whole population"},
		activities: []string{"Stay indoors"},
	},
}

// Generate derives health guidance from air quality measurements and the current weather.
func Generate(ms []airquality.Measurement, rec weather.Record) Advisory {
	aqi := MeanAQI(ms)
	level := LevelFor(aqi)

	quality := string(airquality.CategoryGood)
	if len(ms) > 0 {
		quality = string(ms[0].QualityLevel)
	}

	g := guidanceByLevel[level]
	adv := Advisory{
		AlertLevel:          level,
		AQI:                 common.Round1(aqi),
		QualityLevel:        quality,
		Recommendations:     append([]string(nil), g.recommendations...),
		AtRiskGroups:        append([]string{}, g.atRisk...),
		SuggestedActivities: append([]string(nil), g.activities...),
		Temperature:         rec.Temperature,
		Humidity:            rec.Humidity,
		Timestamp:           rec.Timestamp,
	}

	switch {
	case rec.Temperature > 30:
		adv.Recommendations = append(adv.Recommendations, "High temperature: drink water regularly.")
	case rec.Temperature < 5:
		adv.Recommendations = append(adv.Recommendations, "Low temperature: dress warmly.")
	}
	if rec.Humidity > 80 {
		adv.Recommendations = append(adv.Recommendations, "High humidity: may worsen breathing problems.")
	}

	return adv
}
