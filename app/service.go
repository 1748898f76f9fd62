// Package app assembles the planner, stores, metrics and notification
// pipeline from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kilianp07/evroute/api"
	_ "github.com/kilianp07/evroute/app/plugins"
	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/config"
	connfactory "github.com/kilianp07/evroute/connectors/factory"
	"github.com/kilianp07/evroute/core/energy"
	"github.com/kilianp07/evroute/core/environment"
	coremetrics "github.com/kilianp07/evroute/core/metrics"
	coremon "github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/core/notify"
	"github.com/kilianp07/evroute/core/trip"
	"github.com/kilianp07/evroute/core/vehicle"
	"github.com/kilianp07/evroute/infra/logger"
	"github.com/kilianp07/evroute/infra/metrics"
	"github.com/kilianp07/evroute/infra/monitoring"
	"github.com/kilianp07/evroute/infra/store"
	"github.com/kilianp07/evroute/internal/eventbus"
)

// Service owns every long-lived component.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	bus      *eventbus.Bus
	store    store.Store
	accounts *auth.Service
	sink     coremetrics.MetricsSink
	pub      notify.Publisher
	planner  *trip.Planner
}

// New creates a Service from the configuration. Nothing runs until Run.
func New(ctx context.Context, cfg *config.Config) (svc *Service, err error) {
	logg := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	s := &Service{cfg: cfg, log: logg, bus: eventbus.New()}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	vehicles := vehicle.Default()
	if cfg.Energy.VehiclesFile != "" {
		if vehicles, err = vehicle.LoadFile(cfg.Energy.VehiclesFile); err != nil {
			return nil, fmt.Errorf("vehicles: %w", err)
		}
	}
	predictor, err := energy.NewPredictor(energy.PredictorOptions{
		Kind:      cfg.Energy.Predictor,
		ModelPath: cfg.Energy.ModelPath,
		Fallback:  cfg.Energy.Fallback(),
		HVAC:      cfg.Energy.HVAC,
	})
	if err != nil {
		return nil, fmt.Errorf("predictor: %w", err)
	}
	clients := connfactory.NewClients(cfg.Providers)
	fetcher := environment.NewFetcher(clients.Weather, clients.Elevation, clients.Traffic, logger.New("environment"), s.bus)
	s.planner, err = trip.NewPlanner(trip.Deps{
		Geocoder:   clients.Geocoder,
		Router:     clients.Router,
		Conditions: fetcher,
		Chargers:   clients.Chargers,
		Predictor:  predictor,
		Vehicles:   vehicles,
		Bus:        s.bus,
		Log:        logger.New("planner"),
	}, trip.Options{
		TariffPerKWh:    cfg.Energy.TariffPerKWh,
		ChargerRadiusKm: cfg.Providers.Chargers.RadiusKm,
	})
	if err != nil {
		return nil, err
	}

	if s.store, err = store.Open(ctx, cfg.Storage); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if cfg.Auth.JWTSecret != "" {
		s.accounts, err = auth.NewService(s.store, auth.Options{
			Secret: []byte(cfg.Auth.JWTSecret),
			TTL:    cfg.Auth.TokenTTL(),
			Issuer: cfg.Auth.Issuer,
		})
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
	} else {
		logg.Warnf("auth.jwt_secret is empty, accounts and trip history are disabled")
	}

	if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if s.pub, err = notify.NewPublisher(cfg.Notify.Publishers); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	logg.Infof("predictor %s, storage %s, %d vehicles", predictor.Name(), cfg.Storage.Backend, len(vehicles.List()))
	return s, nil
}

// Planner returns the trip planner.
func (s *Service) Planner() *trip.Planner { return s.planner }

// Store returns the trip and account store.
func (s *Service) Store() store.Store { return s.store }

// Accounts returns the account service, or nil when auth is disabled.
func (s *Service) Accounts() *auth.Service { return s.accounts }

// Run starts the metrics collector, the notification forwarder, the optional
// Prometheus endpoint and the API, and blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink)
	forwarded := notify.StartForwarder(ctx, s.bus, s.pub, logger.New("notify"))
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	d := api.Deps{
		Planner:   s.planner,
		Trips:     s.store,
		Log:       logger.New("api"),
		AccessLog: os.Stdout,
	}
	if s.accounts != nil {
		d.Accounts = s.accounts
	}
	srv, err := api.New(d)
	if err != nil {
		return err
	}
	err = srv.Serve(ctx, s.cfg.Server)
	cancel()
	<-collected
	<-forwarded
	return err
}

// Close releases every resource. It is safe on a partially built Service.
func (s *Service) Close() error {
	var errs []error
	if s.bus != nil {
		s.bus.Close()
	}
	if s.pub != nil {
		errs = append(errs, s.pub.Close())
	}
	switch c := s.sink.(type) {
	case io.Closer:
		errs = append(errs, c.Close())
	case interface{ Close() }:
		c.Close()
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
