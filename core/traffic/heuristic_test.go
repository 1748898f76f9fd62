package traffic

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/kilianp07/evroute/core/model"
)

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 10, hour, 30, 0, 0, time.UTC) }
}

func TestHeuristicBands(t *testing.T) {
	checks := []struct {
		hour   int
		want   float64
		level  model.TrafficLevel
		status string
	}{
		{3, 0, model.TrafficLow, "Light Night Traffic"},
		{6, 0.2, model.TrafficMedium, "Moderate Traffic"},
		{7, 0.4, model.TrafficHigh, "Heavy Morning Traffic"},
		{9, 0.4, model.TrafficHigh, "Heavy Morning Traffic"},
		{10, 0.2, model.TrafficMedium, "Moderate Traffic"},
		{17, 0.5, model.TrafficHigh, "Heavy Evening Traffic"},
		{20, 0, model.TrafficLow, "Light Night Traffic"},
		{23, 0, model.TrafficLow, "Light Night Traffic"},
	}
	for _, c := range checks {
		h := &Heuristic{Location: time.UTC, Now: at(c.hour)}
		got, err := h.Estimate(context.Background(), model.Coordinate{}, model.Coordinate{Lat: 1})
		if err != nil {
			t.Fatalf("hour %d: %v", c.hour, err)
		}
		if got.CongestionFactor != c.want || got.Level != c.level || got.Status != c.status {
			t.Errorf("hour %d: got %+v", c.hour, got)
		}
		if got.Source != model.SourceLive {
			t.Errorf("hour %d: expected live source", c.hour)
		}
		if math.Abs(got.DelayMinutes-60*c.want) > 1e-9 {
			t.Errorf("hour %d: delay %v", c.hour, got.DelayMinutes)
		}
	}
}

func TestHeuristicUsesTimeZone(t *testing.T) {
	h := NewHeuristic("Asia/Kolkata")
	// 03:00 UTC is 08:30 in India.
	h.Now = func() time.Time { return time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC) }
	got, err := h.Estimate(context.Background(), model.Coordinate{}, model.Coordinate{})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got.Level != model.TrafficHigh || got.CongestionFactor != 0.4 {
		t.Fatalf("expected morning rush, got %+v", got)
	}
}

func TestUnknownZoneFailsEstimate(t *testing.T) {
	h := NewHeuristic("Mars/Olympus")
	if _, err := h.Estimate(context.Background(), model.Coordinate{}, model.Coordinate{Lat: 1}); err == nil {
		t.Fatal("expected estimate error for unknown zone")
	}
}
