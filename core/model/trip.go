package model

import "time"

// Route is the driving route between two coordinates.
type Route struct {
	Start      Coordinate   `json:"start"`
	End        Coordinate   `json:"end"`
	DistanceKm float64      `json:"distance_km"`
	DurationH  float64      `json:"duration_h"`
	Geometry   []Coordinate `json:"geometry,omitempty"`
}

// AvgSpeedKmh returns the mean speed over the route, or 0 when unknown.
func (r Route) AvgSpeedKmh() float64 {
	if r.DurationH <= 0 {
		return 0
	}
	return r.DistanceKm / r.DurationH
}

// Charger is a charging station near the route.
type Charger struct {
	Name       string     `json:"name"`
	Location   Coordinate `json:"location"`
	DistanceKm float64    `json:"distance_km"`
}

// Factor is one line of the human-readable adjustment breakdown.
type Factor struct {
	Name   string `json:"name"`
	Impact string `json:"impact"`
}

// EnergyAdjustment is the result of applying environmental multipliers to a
// base energy estimate.
type EnergyAdjustment struct {
	BaseKWh             float64  `json:"base_kwh"`
	WeatherMultiplier   float64  `json:"weather_multiplier"`
	ElevationMultiplier float64  `json:"elevation_multiplier"`
	TrafficMultiplier   float64  `json:"traffic_multiplier"`
	FinalKWh            float64  `json:"final_kwh"`
	Factors             []Factor `json:"factors"`
}

// TotalMultiplier is the product of the three multipliers.
func (a EnergyAdjustment) TotalMultiplier() float64 {
	return a.WeatherMultiplier * a.ElevationMultiplier * a.TrafficMultiplier
}

// SoCResult describes the battery state after a trip.
type SoCResult struct {
	StartPct      float64 `json:"start_pct"`
	EndPct        float64 `json:"end_pct"`
	UsedPct       float64 `json:"used_pct"`
	AvailableKWh  float64 `json:"available_kwh"`
	NeedsCharging bool    `json:"needs_charging"`
}

// TripPlan is the full answer to a planning request.
type TripPlan struct {
	ID            string           `json:"id"`
	StartLocation string           `json:"start_location"`
	EndLocation   string           `json:"end_location"`
	Vehicle       Vehicle          `json:"vehicle"`
	DriveMode     DriveMode        `json:"drive_mode"`
	Route         Route            `json:"route"`
	Conditions    Conditions       `json:"conditions"`
	Energy        EnergyAdjustment `json:"energy"`
	SoC           SoCResult        `json:"soc"`
	Chargers      []Charger        `json:"chargers"`
	ChargingCost  float64          `json:"charging_cost"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Fallbacks lists the environmental providers whose defaults were used.
func (p TripPlan) Fallbacks() []string {
	var out []string
	if p.Conditions.Weather.Source == SourceFallback {
		out = append(out, "weather")
	}
	if p.Conditions.Elevation.Source == SourceFallback {
		out = append(out, "elevation")
	}
	if p.Conditions.Traffic.Source == SourceFallback {
		out = append(out, "traffic")
	}
	return out
}

// TripRecord is a persisted trip in a user's history.
type TripRecord struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	StartLocation   string    `json:"start_location"`
	EndLocation     string    `json:"end_location"`
	DistanceKm      float64   `json:"distance_km"`
	EnergyKWh       float64   `json:"energy_consumed_kwh"`
	ChargingCost    float64   `json:"charging_cost"`
	DurationMinutes int       `json:"duration_minutes"`
	DriveMode       string    `json:"drive_mode"`
	SoCStart        float64   `json:"soc_start"`
	SoCEnd          float64   `json:"soc_end"`
	RouteType       string    `json:"route_type"`
	Timestamp       time.Time `json:"timestamp"`
}

// TripStats aggregates a user's trip history.
type TripStats struct {
	TotalTrips      int     `json:"total_trips"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalEnergyKWh  float64 `json:"total_energy_kwh"`
	TotalCost       float64 `json:"total_cost"`
	AvgKWhPerKm     float64 `json:"avg_consumption_kwh_per_km"`
}

// User is a registered account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	VehicleType  string     `json:"vehicle_type"`
	DriveMode    string     `json:"drive_mode"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
