package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/core/events"
	"github.com/kilianp07/evroute/core/factory"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/internal/eventbus"
)

type recordPublisher struct {
	mu     sync.Mutex
	msgs   []PlanMessage
	err    error
	closed bool
}

func (r *recordPublisher) Publish(_ context.Context, msg PlanMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordPublisher) Close() error {
	r.closed = true
	return nil
}

func (r *recordPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func samplePlan() model.TripPlan {
	return model.TripPlan{
		ID:            "plan-1",
		StartLocation: "Bangalore",
		EndLocation:   "Mysore",
		Vehicle:       model.Vehicle{Name: "Tata Nexon EV", UsableKWh: 30},
		DriveMode:     model.DriveNormal,
		Route:         model.Route{DistanceKm: 145},
		Energy:        model.EnergyAdjustment{FinalKWh: 31.5},
		SoC:           model.SoCResult{StartPct: 100, EndPct: 0, NeedsCharging: true},
		Conditions: model.Conditions{
			Weather:   model.DefaultWeather(),
			Elevation: model.ElevationProfile{Source: model.SourceLive},
			Traffic:   model.TrafficEstimate{Source: model.SourceLive},
		},
	}
}

func TestMessageFromPlan(t *testing.T) {
	msg := MessageFromPlan(samplePlan())
	assert.Equal(t, "plan-1", msg.PlanID)
	assert.Equal(t, "Tata Nexon EV", msg.Vehicle)
	assert.Equal(t, "Normal", msg.DriveMode)
	assert.Equal(t, 31.5, msg.EnergyKWh)
	assert.True(t, msg.NeedsCharging)
	assert.Equal(t, []string{"weather"}, msg.Fallbacks)
}

func TestMultiPublisherJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recordPublisher{err: boom}
	b := &recordPublisher{}
	m := NewMultiPublisher(a, b)
	err := m.Publish(context.Background(), PlanMessage{PlanID: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b.count(), "failure of one publisher must not skip the others")
	require.NoError(t, m.Close())
	assert.True(t, a.closed && b.closed)
}

func TestNewPublisher(t *testing.T) {
	require.NoError(t, RegisterPublisher("notify-test", func(map[string]any) (Publisher, error) {
		return &recordPublisher{}, nil
	}))
	p, err := NewPublisher(nil)
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)

	p, err = NewPublisher([]factory.ModuleConfig{{Type: "notify-test"}, {Type: "notify-test"}})
	require.NoError(t, err)
	assert.IsType(t, &MultiPublisher{}, p)

	_, err = NewPublisher([]factory.ModuleConfig{{Type: "notify-test"}, {Type: "missing"}})
	assert.Error(t, err)
}

func TestForwarderPublishesPlans(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	pub := &recordPublisher{err: errors.New("broker down")}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartForwarder(ctx, bus, pub, nil)

	bus.Publish(events.ProviderEvent{Provider: "weather"})
	bus.Publish(events.PlanEvent{Plan: samplePlan()})
	bus.Publish(events.PlanEvent{Plan: samplePlan()})

	assert.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop")
	}
}
