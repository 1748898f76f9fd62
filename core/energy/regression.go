package energy

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// Column names of the numeric regression features.
const (
	ColDistance     = "distance_km"
	ColSpeed        = "speed"
	ColElevation    = "elevation_change"
	ColTemperature  = "temperature"
	ColTrafficLevel = "traffic_level"

	vehiclePrefix   = "vehicle_type_"
	driveModePrefix = "drive_mode_"
)

var numericColumns = []string{ColDistance, ColSpeed, ColElevation, ColTemperature, ColTrafficLevel}

// RegressionModel is a linear model over numeric and one-hot encoded
// categorical features. Columns absent from a prediction row are zero.
type RegressionModel struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	R2           float64   `json:"r2"`
	Samples      int       `json:"samples"`
	TrainedAt    time.Time `json:"trained_at"`
}

func (*RegressionModel) Name() string { return "regression" }

// PredictKWh implements Predictor. Negative estimates are clamped to zero.
func (m *RegressionModel) PredictKWh(f Features) (float64, error) {
	if len(m.Features) != len(m.Coefficients) {
		return 0, fmt.Errorf("model has %d features and %d coefficients", len(m.Features), len(m.Coefficients))
	}
	row := encode(sampleRow{
		distance:    f.DistanceKm,
		speed:       f.AvgSpeedKmh,
		elevation:   f.ElevationGainM,
		temperature: f.TemperatureC,
		traffic:     f.TrafficLevel,
		vehicle:     f.Vehicle.Name,
		driveMode:   string(f.DriveMode),
	})
	y := m.Intercept
	for i, name := range m.Features {
		y += m.Coefficients[i] * row[name]
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("prediction is not finite")
	}
	return math.Max(0, y), nil
}

type sampleRow struct {
	distance, speed, elevation, temperature float64
	traffic                                 int
	vehicle, driveMode                      string
}

func encode(r sampleRow) map[string]float64 {
	return map[string]float64{
		ColDistance:                   r.distance,
		ColSpeed:                      r.speed,
		ColElevation:                  r.elevation,
		ColTemperature:                r.temperature,
		ColTrafficLevel:               float64(r.traffic),
		vehiclePrefix + r.vehicle:     1,
		driveModePrefix + r.driveMode: 1,
	}
}

// LoadModel reads a model written by Save.
func LoadModel(path string) (*RegressionModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m RegressionModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(m.Features) == 0 || len(m.Features) != len(m.Coefficients) {
		return nil, fmt.Errorf("model %s is malformed", path)
	}
	return &m, nil
}

// Save writes the model as indented JSON.
func (m *RegressionModel) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
