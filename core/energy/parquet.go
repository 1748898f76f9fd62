package energy

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/kilianp07/evroute/core/model"
)

// parquetRow mirrors the CSV columns.
type parquetRow struct {
	DistanceKm      float64 `parquet:"name=distance_km, type=DOUBLE"`
	Speed           float64 `parquet:"name=speed, type=DOUBLE"`
	ElevationChange float64 `parquet:"name=elevation_change, type=DOUBLE"`
	Temperature     float64 `parquet:"name=temperature, type=DOUBLE"`
	TrafficLevel    int32   `parquet:"name=traffic_level, type=INT32"`
	VehicleType     string  `parquet:"name=vehicle_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	DriveMode       string  `parquet:"name=drive_mode, type=BYTE_ARRAY, convertedtype=UTF8"`
	EnergyConsumed  float64 `parquet:"name=energy_consumed, type=DOUBLE"`
}

// WriteDatasetParquet writes samples to a Parquet file at path.
func WriteDatasetParquet(path string, samples []Sample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to create new writer: %w", err)
	}
	for _, s := range samples {
		row := parquetRow{
			DistanceKm:      s.DistanceKm,
			Speed:           s.SpeedKmh,
			ElevationChange: s.ElevationChangeM,
			Temperature:     s.TemperatureC,
			TrafficLevel:    int32(s.TrafficLevel),
			VehicleType:     s.VehicleType,
			DriveMode:       string(s.DriveMode),
			EnergyConsumed:  s.EnergyKWh,
		}
		if err := pw.Write(row); err != nil {
			_ = fw.Close()
			return fmt.Errorf("failed to write sample: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// ReadDatasetParquet reads a file written by WriteDatasetParquet.
func ReadDatasetParquet(path string) ([]Sample, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fr.Close() }()
	pr, err := reader.NewParquetReader(fr, new(parquetRow), 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	rows := make([]parquetRow, pr.GetNumRows())
	if err := pr.Read(&rows); err != nil {
		return nil, err
	}
	out := make([]Sample, 0, len(rows))
	for i, r := range rows {
		mode, err := model.ParseDriveMode(r.DriveMode)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, Sample{
			DistanceKm:       r.DistanceKm,
			SpeedKmh:         r.Speed,
			ElevationChangeM: r.ElevationChange,
			TemperatureC:     r.Temperature,
			TrafficLevel:     int(r.TrafficLevel),
			VehicleType:      r.VehicleType,
			DriveMode:        mode,
			EnergyKWh:        r.EnergyConsumed,
		})
	}
	return out, nil
}
