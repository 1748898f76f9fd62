package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/evroute/core/metrics"
)

func TestPromSink_RecordPlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	rec := coremetrics.PlanRecord{
		PlanID:        "p1",
		Vehicle:       "MG ZS EV",
		DriveMode:     "Eco",
		FinalKWh:      24.5,
		Multiplier:    1.2,
		NeedsCharging: true,
		Duration:      300 * time.Millisecond,
	}
	if err := sink.RecordPlan(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP evroute_plans_total Total number of computed trip plans
# TYPE evroute_plans_total counter
evroute_plans_total{drive_mode="Eco",needs_charging="true",vehicle="MG ZS EV"} 1
`
	if err := testutil.CollectAndCompare(sink.plans, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.energy); c != 1 {
		t.Errorf("energy histogram not recorded: %d", c)
	}
}

func TestPromSink_RecordProviderCall(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for _, fb := range []bool{false, true, true} {
		if err := sink.RecordProviderCall(coremetrics.ProviderCall{Provider: "weather", Fallback: fb, Latency: 20 * time.Millisecond}); err != nil {
			t.Fatalf("record call: %v", err)
		}
	}
	if got := testutil.ToFloat64(sink.calls.WithLabelValues("weather", "true")); got != 2 {
		t.Errorf("fallback calls: got %v want 2", got)
	}
	if got := testutil.ToFloat64(sink.calls.WithLabelValues("weather", "false")); got != 1 {
		t.Errorf("live calls: got %v want 1", got)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	if a.plans != b.plans {
		t.Fatal("expected collectors to be shared")
	}
}
