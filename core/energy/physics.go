package energy

import "fmt"

const (
	gravity         = 9.81
	joulesPerKWh    = 3.6e6
	hvacFactor      = 1.1
	highSpeedKmh    = 90.0
	highSpeedFactor = 1.15
)

// PhysicsEstimator computes energy from vehicle efficiency, the work needed
// to lift the car over the climb and a high speed penalty.
type PhysicsEstimator struct {
	HVAC bool
}

func (PhysicsEstimator) Name() string { return "physics" }

// PredictKWh implements Predictor.
func (p PhysicsEstimator) PredictKWh(f Features) (float64, error) {
	if f.DistanceKm < 0 {
		return 0, fmt.Errorf("negative distance %v", f.DistanceKm)
	}
	if f.DistanceKm == 0 {
		return 0, nil
	}
	whPerKm := f.Vehicle.EfficiencyKWhPerKm * 1000 * f.DriveMode.ConsumptionFactor()
	if p.HVAC {
		whPerKm *= hvacFactor
	}
	if f.ElevationGainM > 0 {
		liftWh := f.Vehicle.MassKg * gravity * f.ElevationGainM / joulesPerKWh * 1000
		whPerKm += liftWh / f.DistanceKm
	}
	if f.AvgSpeedKmh > highSpeedKmh {
		whPerKm *= highSpeedFactor
	}
	return whPerKm * f.DistanceKm / 1000, nil
}
