package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
	"github.com/kilianp07/evroute/pkg/chart"
)

var planOpts struct {
	req       trip.Request
	asJSON    bool
	chartPath string
	user      string
}

var planCmd = &cobra.Command{
	Use:     "plan <start> <end>",
	Short:   "Plan a single trip and print the energy breakdown",
	Example: `  evroute plan "Bangalore" "Mysore" --vehicle "MG ZS EV" --soc 80 --mode Eco --chart trip.html`,
	Args:    cobra.ExactArgs(2),
	RunE:    runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planOpts.req.Vehicle, "vehicle", "Tata Nexon EV", "vehicle name")
	f.StringVar(&planOpts.req.DriveMode, "mode", "Normal", "drive mode (Eco, Normal, Sport)")
	f.Float64Var(&planOpts.req.StartSoCPct, "soc", 80, "starting state of charge in percent")
	f.BoolVar(&planOpts.asJSON, "json", false, "print the full plan as JSON")
	f.StringVar(&planOpts.chartPath, "chart", "", "write an HTML energy chart to this file")
	f.StringVar(&planOpts.user, "user", "", "save the trip in this user's history")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)

	req := planOpts.req
	req.StartLocation, req.EndLocation = args[0], args[1]
	p, err := svc.Planner().Plan(ctx, req)
	if err != nil {
		return err
	}

	if planOpts.user != "" {
		u, err := svc.Store().UserByUsername(ctx, planOpts.user)
		if err != nil {
			return fmt.Errorf("user %q: %w", planOpts.user, err)
		}
		rec := trip.RecordFromPlan(p, u.ID)
		if err := svc.Store().SaveTrip(ctx, &rec); err != nil {
			return err
		}
	}
	if planOpts.chartPath != "" {
		if err := writeChart(planOpts.chartPath, p); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	if planOpts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return printPlan(out, p)
}

func writeChart(path string, p model.TripPlan) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.RenderPlan(f, p); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printPlan(w io.Writer, p model.TripPlan) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Trip %s\n", p.ID)
	fmt.Fprintf(&b, "  %s -> %s, %.1f km, %.1f h\n", p.StartLocation, p.EndLocation, p.Route.DistanceKm, p.Route.DurationH)
	fmt.Fprintf(&b, "  %s, %s mode\n", p.Vehicle.Name, p.DriveMode)
	fmt.Fprintf(&b, "Conditions\n")
	fmt.Fprintf(&b, "  weather   %.1f C, wind %.1f km/h, humidity %.0f%% (%s)\n",
		p.Conditions.Weather.TemperatureC, p.Conditions.Weather.WindSpeedKmh, p.Conditions.Weather.HumidityPct, p.Conditions.Weather.Source)
	fmt.Fprintf(&b, "  elevation +%.0f m / -%.0f m (%s)\n", p.Conditions.Elevation.GainM, p.Conditions.Elevation.LossM, p.Conditions.Elevation.Source)
	if p.Conditions.Traffic.Source == model.SourceFallback {
		fmt.Fprintf(&b, "  traffic   %s (%s)\n", p.Conditions.Traffic.Status, p.Conditions.Traffic.Source)
	} else {
		fmt.Fprintf(&b, "  traffic   %s, +%.0f min (%s)\n", p.Conditions.Traffic.Status, p.Conditions.Traffic.DelayMinutes, p.Conditions.Traffic.Source)
	}
	fmt.Fprintf(&b, "Energy\n")
	fmt.Fprintf(&b, "  base %.2f kWh x weather %.3f x elevation %.3f x traffic %.3f = %.2f kWh\n",
		p.Energy.BaseKWh, p.Energy.WeatherMultiplier, p.Energy.ElevationMultiplier, p.Energy.TrafficMultiplier, p.Energy.FinalKWh)
	for _, f := range p.Energy.Factors {
		fmt.Fprintf(&b, "  - %s: %s\n", f.Name, f.Impact)
	}
	fmt.Fprintf(&b, "Battery\n")
	fmt.Fprintf(&b, "  %.0f%% -> %.2f%% (uses %.2f%%, %.2f kWh available)\n", p.SoC.StartPct, p.SoC.EndPct, p.SoC.UsedPct, p.SoC.AvailableKWh)
	fmt.Fprintf(&b, "  charging cost %.2f\n", p.ChargingCost)
	if p.SoC.NeedsCharging {
		fmt.Fprintf(&b, "  charging stop needed\n")
	}
	if len(p.Chargers) > 0 {
		fmt.Fprintf(&b, "Chargers near the midpoint\n")
		for _, c := range p.Chargers {
			fmt.Fprintf(&b, "  %-40s %.1f km\n", c.Name, c.DistanceKm)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
