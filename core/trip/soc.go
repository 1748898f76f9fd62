package trip

import (
	"math"

	"github.com/kilianp07/evroute/core/energy"
	"github.com/kilianp07/evroute/core/model"
)

// ComputeSoC derives the battery state after consuming energyKWh from a
// battery of usableKWh that starts at startPct. The remaining charge never
// drops below zero.
func ComputeSoC(startPct, energyKWh, usableKWh float64) model.SoCResult {
	if usableKWh <= 0 {
		return model.SoCResult{StartPct: startPct, NeedsCharging: energyKWh > 0}
	}
	used := energyKWh / usableKWh * 100
	available := usableKWh * startPct / 100
	return model.SoCResult{
		StartPct:      startPct,
		EndPct:        energy.Round(math.Max(0, startPct-used), 2),
		UsedPct:       energy.Round(used, 2),
		AvailableKWh:  energy.Round(available, 2),
		NeedsCharging: energyKWh > available,
	}
}
