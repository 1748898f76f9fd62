package trip

import (
	"context"
	"math"

	"github.com/kilianp07/evroute/core/model"
)

// DefaultHistoryLimit caps ListTrips when no limit is given.
const DefaultHistoryLimit = 10

// Store persists a user's trip history.
type Store interface {
	// SaveTrip stores rec and sets its ID.
	SaveTrip(ctx context.Context, rec *model.TripRecord) error
	// ListTrips returns up to limit trips of the user, newest first.
	ListTrips(ctx context.Context, userID int64, limit int) ([]model.TripRecord, error)
	Stats(ctx context.Context, userID int64) (model.TripStats, error)
}

// RecordFromPlan converts a plan into a history entry for userID. The
// duration includes the live traffic delay; a fallback traffic record adds
// none, as it leaves energy unchanged too.
func RecordFromPlan(p model.TripPlan, userID int64) model.TripRecord {
	minutes := p.Route.DurationH * 60
	if p.Conditions.Traffic.Source != model.SourceFallback {
		minutes += p.Conditions.Traffic.DelayMinutes
	}
	return model.TripRecord{
		UserID:          userID,
		StartLocation:   p.StartLocation,
		EndLocation:     p.EndLocation,
		DistanceKm:      p.Route.DistanceKm,
		EnergyKWh:       p.Energy.FinalKWh,
		ChargingCost:    p.ChargingCost,
		DurationMinutes: int(math.Round(minutes)),
		DriveMode:       string(p.DriveMode),
		SoCStart:        p.SoC.StartPct,
		SoCEnd:          p.SoC.EndPct,
		RouteType:       "driving",
		Timestamp:       p.CreatedAt,
	}
}
