package energy

import (
	"fmt"
	"math"

	"github.com/kilianp07/evroute/core/model"
)

const (
	coldThresholdC      = 10.0
	coldPenaltyPer10C   = 0.05
	windThresholdKmh    = 20.0
	windPenaltyPerKmh   = 0.01
	humidityThreshold   = 80.0
	humidityPenalty     = 0.05
	gainPenaltyPer100m  = 0.005
	congestionPenaltyAt = 0.30
)

// Adjust applies the weather, elevation and traffic multipliers to a base
// energy estimate. Readings sourced from fallbacks and non-finite inputs
// contribute a neutral 1.0 multiplier, so the result is never below base.
func Adjust(baseKWh float64, c model.Conditions) (model.EnergyAdjustment, error) {
	if !finite(baseKWh) || baseKWh < 0 {
		return model.EnergyAdjustment{}, fmt.Errorf("invalid base energy %v", baseKWh)
	}
	var factors []model.Factor
	wm, f := WeatherMultiplier(c.Weather)
	factors = append(factors, f...)
	em, f := ElevationMultiplier(c.Elevation)
	factors = append(factors, f...)
	tm, f := TrafficMultiplier(c.Traffic)
	factors = append(factors, f...)

	return model.EnergyAdjustment{
		BaseKWh:             baseKWh,
		WeatherMultiplier:   wm,
		ElevationMultiplier: em,
		TrafficMultiplier:   tm,
		FinalKWh:            baseKWh * wm * em * tm,
		Factors:             factors,
	}, nil
}

// WeatherMultiplier sums the cold, wind and humidity penalties into a single
// multiplier.
func WeatherMultiplier(w model.WeatherReading) (float64, []model.Factor) {
	if w.Source == model.SourceFallback {
		return 1, nil
	}
	m := 1.0
	var factors []model.Factor
	if finite(w.TemperatureC) && w.TemperatureC < coldThresholdC {
		p := (coldThresholdC - w.TemperatureC) / 10 * coldPenaltyPer10C
		m += p
		factors = append(factors, increase("Temperature Effect", p))
	}
	if finite(w.WindSpeedKmh) && w.WindSpeedKmh > windThresholdKmh {
		p := (w.WindSpeedKmh - windThresholdKmh) * windPenaltyPerKmh
		m += p
		factors = append(factors, increase("Wind Resistance", p))
	}
	if finite(w.HumidityPct) && w.HumidityPct > humidityThreshold {
		m += humidityPenalty
		factors = append(factors, increase("High Humidity/Rain", humidityPenalty))
	}
	return m, factors
}

// ElevationMultiplier adds 0.5% per 100 m of cumulative gain, so 500 m of
// climbing costs 2.5%.
func ElevationMultiplier(e model.ElevationProfile) (float64, []model.Factor) {
	if e.Source == model.SourceFallback || !finite(e.GainM) || e.GainM <= 0 {
		return 1, nil
	}
	p := e.GainM / 100 * gainPenaltyPer100m
	return 1 + p, []model.Factor{increase("Elevation Gain", p)}
}

// TrafficMultiplier adds up to 30% for fully congested roads.
func TrafficMultiplier(t model.TrafficEstimate) (float64, []model.Factor) {
	if t.Source == model.SourceFallback || !finite(t.CongestionFactor) {
		return 1, nil
	}
	c := math.Min(math.Max(t.CongestionFactor, 0), 1)
	if c == 0 {
		return 1, nil
	}
	p := c * congestionPenaltyAt
	return 1 + p, []model.Factor{increase("Traffic Congestion", p)}
}

func increase(name string, p float64) model.Factor {
	return model.Factor{Name: name, Impact: fmt.Sprintf("%.1f%% increase", p*100)}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
