package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evroute/core/metrics"
)

// PromSink records planning activity in Prometheus metrics.
type PromSink struct {
	plans      *prometheus.CounterVec
	energy     *prometheus.HistogramVec
	multiplier prometheus.Histogram
	duration   prometheus.Histogram
	calls      *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evroute_plans_total",
			Help: "Total number of computed trip plans",
		}, []string{"vehicle", "drive_mode", "needs_charging"}),
		energy: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evroute_plan_energy_kwh",
			Help:    "Adjusted energy of computed trip plans",
			Buckets: prometheus.LinearBuckets(5, 5, 12),
		}, []string{"vehicle"}),
		multiplier: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evroute_plan_multiplier",
			Help:    "Combined environmental multiplier applied to the base energy",
			Buckets: []float64{1, 1.05, 1.1, 1.2, 1.3, 1.5, 2},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evroute_plan_duration_seconds",
			Help:    "Time spent computing a trip plan",
			Buckets: prometheus.DefBuckets,
		}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evroute_provider_calls_total",
			Help: "External data lookups by provider and outcome",
		}, []string{"provider", "fallback"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evroute_provider_latency_seconds",
			Help:    "Latency of external data lookups",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.energy, err = register(reg, s.energy); err != nil {
		return nil, err
	}
	if s.multiplier, err = register(reg, s.multiplier); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.calls, err = register(reg, s.calls); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan updates the plan counters and histograms.
func (s *PromSink) RecordPlan(rec coremetrics.PlanRecord) error {
	s.plans.WithLabelValues(rec.Vehicle, rec.DriveMode, strconv.FormatBool(rec.NeedsCharging)).Inc()
	s.energy.WithLabelValues(rec.Vehicle).Observe(rec.FinalKWh)
	s.multiplier.Observe(rec.Multiplier)
	s.duration.Observe(rec.Duration.Seconds())
	return nil
}

// RecordProviderCall counts the call and observes its latency.
func (s *PromSink) RecordProviderCall(call coremetrics.ProviderCall) error {
	s.calls.WithLabelValues(call.Provider, strconv.FormatBool(call.Fallback)).Inc()
	s.latency.WithLabelValues(call.Provider).Observe(call.Latency.Seconds())
	return nil
}
