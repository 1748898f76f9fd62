package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evroute/core/trip"
	"github.com/kilianp07/evroute/pkg/chart"
	"github.com/kilianp07/evroute/pkg/export"
)

var tripsOpts struct {
	limit     int
	format    string
	chartPath string
	stats     bool
}

var tripsCmd = &cobra.Command{
	Use:   "trips <username>",
	Short: "Export a user's trip history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrips,
}

func init() {
	f := tripsCmd.Flags()
	f.IntVar(&tripsOpts.limit, "limit", trip.DefaultHistoryLimit, "number of trips, newest first")
	f.StringVar(&tripsOpts.format, "format", export.FormatCSV, "output format (csv or json)")
	f.StringVar(&tripsOpts.chartPath, "chart", "", "write an HTML history chart to this file")
	f.BoolVar(&tripsOpts.stats, "stats", false, "print aggregate statistics instead of trips")
	rootCmd.AddCommand(tripsCmd)
}

func runTrips(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)

	st := svc.Store()
	u, err := st.UserByUsername(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %q: %w", args[0], err)
	}
	out := cmd.OutOrStdout()
	if tripsOpts.stats {
		s, err := st.Stats(ctx, u.ID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "trips %d\ndistance %.1f km\nenergy %.2f kWh\ncost %.2f\nconsumption %.3f kWh/km\n",
			s.TotalTrips, s.TotalDistanceKm, s.TotalEnergyKWh, s.TotalCost, s.AvgKWhPerKm)
		return err
	}
	trips, err := st.ListTrips(ctx, u.ID, tripsOpts.limit)
	if err != nil {
		return err
	}
	if tripsOpts.chartPath != "" {
		f, err := os.Create(tripsOpts.chartPath)
		if err != nil {
			return err
		}
		if err := chart.RenderHistory(f, trips); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return export.Write(out, tripsOpts.format, trips)
}
