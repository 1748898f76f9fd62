// Package trip plans an EV trip between two named places: it geocodes both
// ends, routes between them, gathers environmental conditions, estimates and
// adjusts the energy needed and derives the resulting state of charge.
package trip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/evroute/core/energy"
	"github.com/kilianp07/evroute/core/events"
	"github.com/kilianp07/evroute/core/logger"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/vehicle"
	"github.com/kilianp07/evroute/internal/eventbus"
)

// Provider names of the lookups made by the planner itself.
const (
	ProviderGeocoder = "geocoder"
	ProviderRouter   = "router"
	ProviderChargers = "chargers"
)

// DefaultChargerRadiusKm is the search radius around the route midpoint.
const DefaultChargerRadiusKm = 30

// Geocoder resolves a place name.
type Geocoder interface {
	Geocode(ctx context.Context, q string) (model.Coordinate, error)
}

// Router computes a driving route.
type Router interface {
	Route(ctx context.Context, start, end model.Coordinate) (model.Route, error)
}

// ChargerFinder lists charging stations around a coordinate.
type ChargerFinder interface {
	Nearby(ctx context.Context, at model.Coordinate, radiusKm float64) ([]model.Charger, error)
}

// ConditionsSource gathers environmental conditions for a segment. It never
// fails; missing data is replaced by defaults.
type ConditionsSource interface {
	Conditions(ctx context.Context, start, end model.Coordinate) model.Conditions
}

// Request is a planning request.
type Request struct {
	StartLocation string  `json:"start_location"`
	EndLocation   string  `json:"end_location"`
	Vehicle       string  `json:"vehicle"`
	DriveMode     string  `json:"drive_mode"`
	StartSoCPct   float64 `json:"soc"`
}

// Deps are the collaborators of a Planner. Chargers, Bus and Log are
// optional.
type Deps struct {
	Geocoder   Geocoder
	Router     Router
	Conditions ConditionsSource
	Chargers   ChargerFinder
	Predictor  energy.Predictor
	Vehicles   *vehicle.Catalog
	Bus        eventbus.EventBus
	Log        logger.Logger
}

// Options tune a Planner.
type Options struct {
	TariffPerKWh    float64
	ChargerRadiusKm float64
}

// Planner computes trip plans. It holds no per-request state and is safe
// for concurrent use.
type Planner struct {
	deps Deps
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewPlanner validates the required collaborators.
func NewPlanner(d Deps, opts Options) (*Planner, error) {
	switch {
	case d.Geocoder == nil:
		return nil, errors.New("planner: geocoder is required")
	case d.Router == nil:
		return nil, errors.New("planner: router is required")
	case d.Conditions == nil:
		return nil, errors.New("planner: conditions source is required")
	case d.Predictor == nil:
		return nil, errors.New("planner: predictor is required")
	}
	if d.Vehicles == nil {
		d.Vehicles = vehicle.Default()
	}
	if opts.ChargerRadiusKm <= 0 {
		opts.ChargerRadiusKm = DefaultChargerRadiusKm
	}
	return &Planner{deps: d, opts: opts, log: logger.OrNop(d.Log), now: time.Now}, nil
}

// Vehicles exposes the catalog used to resolve requests.
func (p *Planner) Vehicles() *vehicle.Catalog { return p.deps.Vehicles }

// Validate checks req and resolves its vehicle and drive mode.
func (p *Planner) Validate(req Request) (model.Vehicle, model.DriveMode, error) {
	if strings.TrimSpace(req.StartLocation) == "" || strings.TrimSpace(req.EndLocation) == "" {
		return model.Vehicle{}, "", fmt.Errorf("%w: start and end locations are required", ErrInvalidRequest)
	}
	if math.IsNaN(req.StartSoCPct) || req.StartSoCPct < 0 || req.StartSoCPct > 100 {
		return model.Vehicle{}, "", fmt.Errorf("%w: soc must be within [0, 100], got %v", ErrInvalidRequest, req.StartSoCPct)
	}
	v, ok := p.deps.Vehicles.Get(req.Vehicle)
	if !ok {
		return model.Vehicle{}, "", fmt.Errorf("%w: %q", ErrUnknownVehicle, req.Vehicle)
	}
	mode, err := model.ParseDriveMode(req.DriveMode)
	if err != nil {
		return model.Vehicle{}, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return v, mode, nil
}

// Plan runs the full planning pipeline for req.
func (p *Planner) Plan(ctx context.Context, req Request) (model.TripPlan, error) {
	began := p.now()
	v, mode, err := p.Validate(req)
	if err != nil {
		return model.TripPlan{}, err
	}

	start, err := p.geocode(ctx, req.StartLocation)
	if err != nil {
		return model.TripPlan{}, err
	}
	end, err := p.geocode(ctx, req.EndLocation)
	if err != nil {
		return model.TripPlan{}, err
	}

	t0 := time.Now()
	route, err := p.deps.Router.Route(ctx, start, end)
	p.publish(ProviderRouter, t0, err, false)
	if err != nil {
		return model.TripPlan{}, fmt.Errorf("route %s -> %s: %w", req.StartLocation, req.EndLocation, err)
	}

	cond := p.deps.Conditions.Conditions(ctx, start, end)

	base, err := p.deps.Predictor.PredictKWh(energy.FeaturesFor(route, cond, v, mode))
	if err != nil {
		return model.TripPlan{}, fmt.Errorf("predict energy with %s: %w", p.deps.Predictor.Name(), err)
	}
	adj, err := energy.Adjust(base, cond)
	if err != nil {
		return model.TripPlan{}, err
	}

	plan := model.TripPlan{
		ID:            uuid.NewString(),
		StartLocation: strings.TrimSpace(req.StartLocation),
		EndLocation:   strings.TrimSpace(req.EndLocation),
		Vehicle:       v,
		DriveMode:     mode,
		Route:         route,
		Conditions:    cond,
		Energy:        adj,
		SoC:           ComputeSoC(req.StartSoCPct, adj.FinalKWh, v.UsableKWh),
		Chargers:      p.chargers(ctx, model.Midpoint(start, end)),
		ChargingCost:  energy.Round(adj.FinalKWh*p.opts.TariffPerKWh, 2),
		CreatedAt:     p.now().UTC(),
	}
	elapsed := p.now().Sub(began)
	p.log.Debugw("trip planned", map[string]any{
		"plan_id":        plan.ID,
		"vehicle":        v.Name,
		"distance_km":    route.DistanceKm,
		"final_kwh":      adj.FinalKWh,
		"needs_charging": plan.SoC.NeedsCharging,
		"fallbacks":      plan.Fallbacks(),
	})
	if p.deps.Bus != nil {
		p.deps.Bus.Publish(events.PlanEvent{Plan: plan, Duration: elapsed})
	}
	return plan, nil
}

func (p *Planner) geocode(ctx context.Context, place string) (model.Coordinate, error) {
	t0 := time.Now()
	c, err := p.deps.Geocoder.Geocode(ctx, strings.TrimSpace(place))
	p.publish(ProviderGeocoder, t0, err, false)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("geocode %q: %w", place, err)
	}
	return c, nil
}

// chargers never fails the plan; a lookup error yields an empty list.
func (p *Planner) chargers(ctx context.Context, at model.Coordinate) []model.Charger {
	if p.deps.Chargers == nil {
		return []model.Charger{}
	}
	t0 := time.Now()
	list, err := p.deps.Chargers.Nearby(ctx, at, p.opts.ChargerRadiusKm)
	p.publish(ProviderChargers, t0, err, err != nil)
	if err != nil {
		p.log.Warnf("charging station lookup failed: %v", err)
		return []model.Charger{}
	}
	if list == nil {
		list = []model.Charger{}
	}
	return list
}

func (p *Planner) publish(provider string, began time.Time, err error, fallback bool) {
	if p.deps.Bus == nil {
		return
	}
	p.deps.Bus.Publish(events.ProviderEvent{
		Provider: provider,
		Fallback: fallback,
		Latency:  time.Since(began),
		Err:      err,
		Time:     time.Now(),
	})
}
