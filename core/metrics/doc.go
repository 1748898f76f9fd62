// Package metrics defines the sinks that record planning activity. A sink
// implements MetricsSink for completed plans and may implement
// ProviderRecorder to observe external data calls. Sinks are created from
// configuration through the registry; several configured sinks are combined
// into a MultiSink.
package metrics
