// Package factory builds the external data clients from configuration.
package factory

import (
	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/connectors"
	"github.com/kilianp07/evroute/connectors/clients/nominatim"
	"github.com/kilianp07/evroute/connectors/clients/openelevation"
	"github.com/kilianp07/evroute/connectors/clients/openmeteo"
	"github.com/kilianp07/evroute/connectors/clients/osrm"
	"github.com/kilianp07/evroute/connectors/clients/overpass"
	"github.com/kilianp07/evroute/core/traffic"
)

// Clients groups every outbound client the planner needs.
type Clients struct {
	Geocoder  *nominatim.Client
	Router    *osrm.Client
	Chargers  *overpass.Client
	Weather   *openmeteo.Client
	Elevation *openelevation.Client
	Traffic   *traffic.Heuristic
}

// NewClients builds the clients sharing one HTTP client with the configured
// timeout.
func NewClients(cfg config.ProvidersConfig) *Clients {
	hc := connectors.NewHTTPClient(cfg.Timeout())
	return &Clients{
		Geocoder:  nominatim.New(cfg.Geocoder.URL, hc),
		Router:    osrm.New(cfg.Router.URL, hc),
		Chargers:  overpass.New(cfg.Chargers.URL, cfg.Chargers.Limit, hc),
		Weather:   openmeteo.New(cfg.Weather.URL, cfg.Weather.Timezone, hc),
		Elevation: openelevation.New(cfg.Elevation.URL, cfg.Elevation.Samples, hc),
		Traffic:   traffic.NewHeuristic(cfg.Traffic.Timezone),
	}
}
