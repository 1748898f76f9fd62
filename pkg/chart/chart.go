// Package chart renders trip plans and trip history as standalone HTML
// charts.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/evroute/core/model"
)

// EnergyStages returns the cumulative energy after each multiplier is
// applied, starting from the base prediction.
func EnergyStages(e model.EnergyAdjustment) ([]string, []float64) {
	afterWeather := e.BaseKWh * e.WeatherMultiplier
	afterElevation := afterWeather * e.ElevationMultiplier
	return []string{"Base", "Weather", "Elevation", "Traffic"},
		[]float64{e.BaseKWh, afterWeather, afterElevation, e.FinalKWh}
}

// RenderPlan writes a bar chart of the energy breakdown of p.
func RenderPlan(w io.Writer, p model.TripPlan) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s to %s", p.StartLocation, p.EndLocation),
			Subtitle: fmt.Sprintf("%s, %.1f km, SOC %.0f%% to %.2f%%", p.Vehicle.Name, p.Route.DistanceKm, p.SoC.StartPct, p.SoC.EndPct),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Stage"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Energy (kWh)"}),
	)
	labels, values := EnergyStages(p.Energy)
	data := make([]opts.BarData, 0, len(values))
	for _, v := range values {
		data = append(data, opts.BarData{Value: round2(v)})
	}
	bar.SetXAxis(labels).AddSeries("Energy", data)
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// PlanHTML returns RenderPlan output as a string.
func PlanHTML(p model.TripPlan) (string, error) {
	var buf bytes.Buffer
	if err := RenderPlan(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHistory writes a line chart of energy per trip, oldest on the left.
// trips is expected newest first as returned by the store.
func RenderHistory(w io.Writer, trips []model.TripRecord) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Trip History"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Energy (kWh)"}),
	)
	xAxis := make([]string, 0, len(trips))
	energy := make([]opts.LineData, 0, len(trips))
	for i := len(trips) - 1; i >= 0; i-- {
		t := trips[i]
		xAxis = append(xAxis, t.Timestamp.Format("2006-01-02 15:04"))
		energy = append(energy, opts.LineData{Value: t.EnergyKWh})
	}
	line.SetXAxis(xAxis).AddSeries("Energy", energy)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
