package factory

import (
	"context"
	"testing"

	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/connectors/clients/osrm"
	"github.com/kilianp07/evroute/core/environment"
	"github.com/kilianp07/evroute/core/model"
)

func TestNewClientsDefaults(t *testing.T) {
	var cfg config.ProvidersConfig
	cfg.SetDefaults()
	c := NewClients(cfg)
	if c.Router.BaseURL != osrm.DefaultBaseURL {
		t.Errorf("router url %s", c.Router.BaseURL)
	}
	if c.Geocoder == nil || c.Chargers == nil || c.Weather == nil || c.Elevation == nil || c.Traffic == nil {
		t.Fatalf("missing client: %+v", c)
	}
	if c.Router.HTTP.Timeout != cfg.Timeout() {
		t.Errorf("timeout %v", c.Router.HTTP.Timeout)
	}
}

func TestBadTimezoneFallsBackToDefaultTraffic(t *testing.T) {
	var cfg config.ProvidersConfig
	cfg.SetDefaults()
	cfg.Traffic.Timezone = "Mars/Olympus"
	c := NewClients(cfg)

	f := environment.NewFetcher(nil, nil, c.Traffic, nil, nil)
	got := f.Traffic(context.Background(), model.Coordinate{}, model.Coordinate{Lat: 1})
	if got != model.DefaultTraffic() {
		t.Fatalf("expected default traffic, got %+v", got)
	}
}
