package model

// Source tells whether a reading came from a live provider call or is the
// documented fallback record.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// WeatherReading is the current weather at a coordinate.
type WeatherReading struct {
	TemperatureC  float64 `json:"temperature_c"`
	WindSpeedKmh  float64 `json:"wind_speed_kmh"`
	HumidityPct   float64 `json:"humidity_pct"`
	ConditionCode int     `json:"condition_code"`
	Source        Source  `json:"source"`
}

// ElevationProfile summarises terrain between two points.
type ElevationProfile struct {
	GainM       float64 `json:"gain_m"`
	LossM       float64 `json:"loss_m"`
	AvgSlopePct float64 `json:"avg_slope_pct"`
	MinM        float64 `json:"min_m"`
	MaxM        float64 `json:"max_m"`
	Samples     int     `json:"samples"`
	Source      Source  `json:"source"`
}

// TrafficLevel is the coarse congestion category.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "low"
	TrafficMedium TrafficLevel = "medium"
	TrafficHigh   TrafficLevel = "high"
)

// Index maps the level to the 0/1/2 encoding used by the regression features.
func (l TrafficLevel) Index() int {
	switch l {
	case TrafficLow:
		return 0
	case TrafficHigh:
		return 2
	default:
		return 1
	}
}

// TrafficEstimate is the congestion expected on a route.
type TrafficEstimate struct {
	Level            TrafficLevel `json:"level"`
	Status           string       `json:"status"`
	CongestionFactor float64      `json:"congestion_factor"`
	DelayMinutes     float64      `json:"delay_minutes"`
	SpeedReduction   float64      `json:"speed_reduction"`
	Source           Source       `json:"source"`
}

// Conditions groups the three environmental readings of one request.
type Conditions struct {
	Weather   WeatherReading   `json:"weather"`
	Elevation ElevationProfile `json:"elevation"`
	Traffic   TrafficEstimate  `json:"traffic"`
}

// DefaultWeather is used when the weather provider fails.
func DefaultWeather() WeatherReading {
	return WeatherReading{
		TemperatureC:  25,
		WindSpeedKmh:  0,
		HumidityPct:   50,
		ConditionCode: 0,
		Source:        SourceFallback,
	}
}

// DefaultElevation assumes flat terrain.
func DefaultElevation() ElevationProfile {
	return ElevationProfile{Source: SourceFallback}
}

// DefaultTraffic assumes average congestion.
func DefaultTraffic() TrafficEstimate {
	return TrafficEstimate{
		Level:            TrafficMedium,
		Status:           "Average Traffic",
		CongestionFactor: 0.2,
		DelayMinutes:     5,
		SpeedReduction:   0.2,
		Source:           SourceFallback,
	}
}
