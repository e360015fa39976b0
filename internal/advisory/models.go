package advisory

import "time"

// AlertLevel is the ordinal health-risk category.
type AlertLevel string

const (
	AlertLow      AlertLevel = "low"
	AlertModerate AlertLevel = "moderate"
	AlertHigh     AlertLevel = "high"
	AlertVeryHigh AlertLevel = "very_high"
	AlertExtreme  AlertLevel = "extreme"
)

// Advisory is the health guidance for a place. Field names are part of the wire contract.
type Advisory struct {
	AlertLevel          AlertLevel `json:"alert_level"`
	AQI                 float64    `json:"aqi"`
	QualityLevel        string     `json:"quality_level"`
	Recommendations     []string   `json:"recommendations"`
	AtRiskGroups        []string   `json:"at_risk_groups"`
	SuggestedActivities []string   `json:"suggested_activities"`
	Temperature         float64    `json:"temperature"`
	Humidity            int        `json:"humidity"`
	Timestamp           time.Time  `json:"timestamp"`
}

// AlertStatus is the short form served by the alert-status endpoint.
type AlertStatus struct {
	City       string     `json:"city"`
	Country    string     `json:"country"`
	AlertLevel AlertLevel `json:"alert_level"`
	AQI        float64    `json:"aqi"`
}
