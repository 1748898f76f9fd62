package notify

import (
	"context"
	"time"

	"github.com/kilianp07/evroute/core/events"
	"github.com/kilianp07/evroute/core/logger"
	"github.com/kilianp07/evroute/internal/eventbus"
)

// publishTimeout bounds a single delivery.
const publishTimeout = 10 * time.Second

// StartForwarder subscribes to the bus and publishes every PlanEvent with pub.
// Failures are logged and never reach the planner. The returned channel is
// closed once the forwarder has stopped.
func StartForwarder(ctx context.Context, bus eventbus.EventBus, pub Publisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
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
				pe, ok := ev.(events.PlanEvent)
				if !ok {
					continue
				}
				pctx, cancel := context.WithTimeout(ctx, publishTimeout)
				if err := pub.Publish(pctx, MessageFromPlan(pe.Plan)); err != nil {
					log.Warnf("publish plan %s: %v", pe.Plan.ID, err)
				}
				cancel()
			}
		}
	}()
	return done
}
