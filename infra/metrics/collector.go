package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/evroute/core/events"
	coremetrics "github.com/kilianp07/evroute/core/metrics"
	"github.com/kilianp07/evroute/infra/logger"
	"github.com/kilianp07/evroute/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// plan and provider events. It stops when the context is canceled or the bus
// is closed; the returned channel is closed at that point.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.PlanEvent:
		return sink.RecordPlan(PlanRecordFrom(e))
	case events.ProviderEvent:
		r, ok := sink.(coremetrics.ProviderRecorder)
		if !ok {
			return nil
		}
		call := coremetrics.ProviderCall{
			Provider: e.Provider,
			Fallback: e.Fallback,
			Latency:  e.Latency,
			Time:     e.Time,
		}
		if e.Err != nil {
			call.Error = e.Err.Error()
		}
		if call.Time.IsZero() {
			call.Time = time.Now()
		}
		return r.RecordProviderCall(call)
	}
	return nil
}

// PlanRecordFrom summarises a plan event for the sinks.
func PlanRecordFrom(e events.PlanEvent) coremetrics.PlanRecord {
	p := e.Plan
	rec := coremetrics.PlanRecord{
		PlanID:        p.ID,
		Vehicle:       p.Vehicle.Name,
		DriveMode:     string(p.DriveMode),
		DistanceKm:    p.Route.DistanceKm,
		BaseKWh:       p.Energy.BaseKWh,
		FinalKWh:      p.Energy.FinalKWh,
		Multiplier:    p.Energy.TotalMultiplier(),
		EndSoCPct:     p.SoC.EndPct,
		NeedsCharging: p.SoC.NeedsCharging,
		Fallbacks:     len(p.Fallbacks()),
		Duration:      e.Duration,
		Time:          p.CreatedAt,
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	return rec
}
