// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - ProviderEvent: result of one external data call
//   - PlanEvent: a completed trip plan
package events

import (
	"time"

	"github.com/kilianp07/evroute/core/model"
)

// ProviderEvent is published after each geocoding, routing, environmental or
// charger lookup call.
type ProviderEvent struct {
	Provider string
	Fallback bool
	Latency  time.Duration
	Err      error
	Time     time.Time
}

// PlanEvent is published when a trip plan has been computed.
type PlanEvent struct {
	Plan     model.TripPlan
	Duration time.Duration
}
