package energy

import (
	"fmt"

	"github.com/kilianp07/evroute/core/model"
)

// Features are the inputs of a base energy prediction.
type Features struct {
	DistanceKm     float64
	AvgSpeedKmh    float64
	ElevationGainM float64
	TemperatureC   float64
	TrafficLevel   int
	Vehicle        model.Vehicle
	DriveMode      model.DriveMode
}

// FeaturesFor derives prediction inputs from a route and its conditions.
func FeaturesFor(r model.Route, c model.Conditions, v model.Vehicle, m model.DriveMode) Features {
	return Features{
		DistanceKm:     r.DistanceKm,
		AvgSpeedKmh:    r.AvgSpeedKmh(),
		ElevationGainM: c.Elevation.GainM,
		TemperatureC:   c.Weather.TemperatureC,
		TrafficLevel:   c.Traffic.Level.Index(),
		Vehicle:        v,
		DriveMode:      m,
	}
}

// Predictor estimates the base energy of a trip before environmental
// adjustments.
type Predictor interface {
	PredictKWh(f Features) (float64, error)
	Name() string
}

// PredictorOptions select and configure the base predictor.
type PredictorOptions struct {
	// Kind is "physics" (default) or "regression".
	Kind      string
	ModelPath string
	// Fallback degrades to the physics estimator when the model file cannot
	// be read.
	Fallback bool
	HVAC     bool
}

// NewPredictor builds the predictor selected by opts.Kind.
func NewPredictor(opts PredictorOptions) (Predictor, error) {
	physics := PhysicsEstimator{HVAC: opts.HVAC}
	switch opts.Kind {
	case "", "physics":
		return physics, nil
	case "regression":
		m, err := LoadModel(opts.ModelPath)
		if err != nil {
			if opts.Fallback {
				return physics, nil
			}
			return nil, fmt.Errorf("load model: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown predictor %q", opts.Kind)
	}
}
