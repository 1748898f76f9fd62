package energy

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/kilianp07/evroute/core/model"
)

// Sample is one row of the synthetic training dataset.
type Sample struct {
	DistanceKm       float64
	SpeedKmh         float64
	ElevationChangeM float64
	TemperatureC     float64
	TrafficLevel     int
	VehicleType      string
	DriveMode        model.DriveMode
	EnergyKWh        float64
}

func (s Sample) row() sampleRow {
	return sampleRow{
		distance:    s.DistanceKm,
		speed:       s.SpeedKmh,
		elevation:   s.ElevationChangeM,
		temperature: s.TemperatureC,
		traffic:     s.TrafficLevel,
		vehicle:     s.VehicleType,
		driveMode:   string(s.DriveMode),
	}
}

var datasetHeader = []string{
	ColDistance, ColSpeed, ColElevation, ColTemperature, ColTrafficLevel,
	"vehicle_type", "drive_mode", "energy_consumed",
}

// GenerateDataset draws n synthetic trips. Energy is the vehicle's base
// consumption plus speed, elevation and traffic terms, scaled by the drive
// mode, with N(0, 0.5) noise. tick is called once per sample when non-nil.
func GenerateDataset(n int, seed uint64, vehicles []model.Vehicle, tick func()) ([]Sample, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive")
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("no vehicles to sample from")
	}
	rnd := rand.New(rand.NewPCG(seed, seed))
	uniform := func(lo, hi float64) float64 { return lo + rnd.Float64()*(hi-lo) }

	out := make([]Sample, n)
	for i := range out {
		v := vehicles[rnd.IntN(len(vehicles))]
		mode := model.DriveModes[rnd.IntN(len(model.DriveModes))]
		s := Sample{
			DistanceKm:       uniform(0.5, 50),
			SpeedKmh:         uniform(20, 120),
			ElevationChangeM: uniform(-50, 100),
			TemperatureC:     uniform(0, 40),
			TrafficLevel:     rnd.IntN(3),
			VehicleType:      v.Name,
			DriveMode:        mode,
		}
		base := v.EfficiencyKWhPerKm*s.DistanceKm +
			s.SpeedKmh*0.01 +
			s.ElevationChangeM*0.005 +
			float64(s.TrafficLevel)*0.3
		s.EnergyKWh = base*mode.ConsumptionFactor() + rnd.NormFloat64()*0.5
		out[i] = s
		if tick != nil {
			tick()
		}
	}
	return out, nil
}

// WriteDataset writes samples as CSV with a header row.
func WriteDataset(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(datasetHeader); err != nil {
		return err
	}
	for _, s := range samples {
		rec := []string{
			ff(s.DistanceKm),
			ff(s.SpeedKmh),
			ff(s.ElevationChangeM),
			ff(s.TemperatureC),
			strconv.Itoa(s.TrafficLevel),
			s.VehicleType,
			string(s.DriveMode),
			ff(s.EnergyKWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDataset parses a CSV produced by WriteDataset.
func ReadDataset(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(datasetHeader)
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	out := make([]Sample, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		var s Sample
		nums := []*float64{&s.DistanceKm, &s.SpeedKmh, &s.ElevationChangeM, &s.TemperatureC}
		for j, p := range nums {
			if *p, err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+2, datasetHeader[j], err)
			}
		}
		if s.TrafficLevel, err = strconv.Atoi(rec[4]); err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", i+2, datasetHeader[4], err)
		}
		s.VehicleType = rec[5]
		if s.DriveMode, err = model.ParseDriveMode(rec[6]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if s.EnergyKWh, err = strconv.ParseFloat(rec[7], 64); err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", i+2, datasetHeader[7], err)
		}
		out = append(out, s)
	}
	return out, nil
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
