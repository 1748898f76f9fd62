// Package plugins links the metrics sink and plan publisher implementations
// into the binary. Importing it is enough for their names to be accepted in
// the metrics.sinks and notify.publishers configuration sections.
package plugins

import (
	coremetrics "github.com/kilianp07/evroute/core/metrics"
	"github.com/kilianp07/evroute/core/notify"

	_ "github.com/kilianp07/evroute/infra/archive"
	_ "github.com/kilianp07/evroute/infra/kafka"
	_ "github.com/kilianp07/evroute/infra/metrics"
	_ "github.com/kilianp07/evroute/infra/mqtt"
)

// Inventory lists the registered plugin names per section.
type Inventory struct {
	Sinks      []string `json:"sinks"`
	Publishers []string `json:"publishers"`
}

// Available returns the registered plugin names, sorted.
func Available() Inventory {
	return Inventory{
		Sinks:      coremetrics.SinkTypes(),
		Publishers: notify.PublisherTypes(),
	}
}
