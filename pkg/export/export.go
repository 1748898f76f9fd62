// Package export writes trip history as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/evroute/core/model"
)

// Format names accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Header is the CSV column order.
var Header = []string{
	"id", "timestamp", "start_location", "end_location", "distance_km",
	"energy_consumed_kwh", "charging_cost", "duration_minutes", "drive_mode",
	"soc_start", "soc_end", "route_type",
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if strings.ToLower(format) == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Write dispatches on format. An empty format means JSON.
func Write(w io.Writer, format string, trips []model.TripRecord) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return WriteJSON(w, trips)
	case FormatCSV:
		return WriteCSV(w, trips)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes the trips as a JSON array.
func WriteJSON(w io.Writer, trips []model.TripRecord) error {
	if trips == nil {
		trips = []model.TripRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(trips)
}

// WriteCSV writes one row per trip after Header.
func WriteCSV(w io.Writer, trips []model.TripRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range trips {
		rec := []string{
			strconv.FormatInt(t.ID, 10),
			t.Timestamp.UTC().Format(time.RFC3339),
			t.StartLocation,
			t.EndLocation,
			ff(t.DistanceKm),
			ff(t.EnergyKWh),
			ff(t.ChargingCost),
			strconv.Itoa(t.DurationMinutes),
			t.DriveMode,
			ff(t.SoCStart),
			ff(t.SoCEnd),
			t.RouteType,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
