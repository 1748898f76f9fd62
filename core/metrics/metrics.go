package metrics

import "time"

// PlanRecord summarises one computed trip plan.
type PlanRecord struct {
	PlanID        string
	Vehicle       string
	DriveMode     string
	DistanceKm    float64
	BaseKWh       float64
	FinalKWh      float64
	Multiplier    float64
	EndSoCPct     float64
	NeedsCharging bool
	Fallbacks     int
	Duration      time.Duration
	Time          time.Time
}

// MetricsSink records trip plans for observability purposes.
type MetricsSink interface {
	RecordPlan(rec PlanRecord) error
}

// ProviderCall is the outcome of one external data lookup.
type ProviderCall struct {
	Provider string
	Fallback bool
	Latency  time.Duration
	Error    string
	Time     time.Time
}

// ProviderRecorder records provider calls.
type ProviderRecorder interface {
	RecordProviderCall(call ProviderCall) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanRecord) error           { return nil }
func (NopSink) RecordProviderCall(ProviderCall) error { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordPlan(rec PlanRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordProviderCall forwards the call to the sinks that record providers.
func (m *MultiSink) RecordProviderCall(call ProviderCall) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ProviderRecorder); ok {
			if err := rec.RecordProviderCall(call); err != nil {
				return err
			}
		}
	}
	return nil
}
