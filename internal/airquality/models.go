package airquality

// Category is the display bucket of an AQI value.
type Category string

const (
	CategoryGood               Category = "good"
	CategoryModerate           Category = "moderate"
	CategoryUnhealthySensitive Category = "unhealthy-sensitive"
	CategoryUnhealthy          Category = "unhealthy"
	CategoryVeryUnhealthy      Category = "very-unhealthy"
	CategoryHazardous          Category = "hazardous"
)

// Measurement is a single pollutant reading as served by the air-quality provider.
type Measurement struct {
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	Latitude     float64  `json:"latitude,omitempty"`
	Longitude    float64  `json:"longitude,omitempty"`
	Parameter    string   `json:"parameter"`
	Value        float64  `json:"value"`
	Unit         string   `json:"unit"`
	LastUpdated  string   `json:"lastUpdated,omitempty"`
	AQI          int      `json:"aqi"`
	QualityLevel Category `json:"qualityLevel"`
}

// Valid reports whether the measurement carries a recognized pollutant with a positive value.
func (m Measurement) Valid() bool {
	return IsRecognized(m.Parameter) && m.Value > 0
}

// Report is the reduced view of a set of measurements.
type Report struct {
	AverageAQI      int           `json:"averageAqi"`
	QualityLevel    Category      `json:"qualityLevel"`
	Class           Category      `json:"aqiClass"`
	TopMeasurements []Measurement `json:"topMeasurements,omitempty"`

	// NoDetail marks that no valid measurement was available to show.
	NoDetail bool `json:"noDetailedMeasurement,omitempty"`
}

// Reading is a raw upstream station value before it is scored.
type Reading struct {
	Station   string
	Country   string
	Latitude  float64
	Longitude float64
	Parameter string
	Value     float64
	Unit      string
	Timestamp string
}
