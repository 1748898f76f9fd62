// Package notify delivers computed trip plans to external systems such as
// an MQTT broker or a Kafka topic.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/evroute/core/factory"
	"github.com/kilianp07/evroute/core/model"
)

// Config lists the plan publishers to create.
type Config struct {
	Publishers []factory.ModuleConfig `json:"publishers"`
}

// Publisher sends plan summaries to a downstream system.
type Publisher interface {
	Publish(ctx context.Context, msg PlanMessage) error
	Close() error
}

// PlanMessage is the payload published for each plan.
type PlanMessage struct {
	PlanID        string    `json:"plan_id"`
	StartLocation string    `json:"start_location"`
	EndLocation   string    `json:"end_location"`
	Vehicle       string    `json:"vehicle"`
	DriveMode     string    `json:"drive_mode"`
	DistanceKm    float64   `json:"distance_km"`
	EnergyKWh     float64   `json:"energy_kwh"`
	StartSoCPct   float64   `json:"soc_start"`
	EndSoCPct     float64   `json:"soc_end"`
	NeedsCharging bool      `json:"needs_charging"`
	ChargingCost  float64   `json:"charging_cost"`
	Fallbacks     []string  `json:"fallbacks,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessageFromPlan builds the published summary of p.
func MessageFromPlan(p model.TripPlan) PlanMessage {
	return PlanMessage{
		PlanID:        p.ID,
		StartLocation: p.StartLocation,
		EndLocation:   p.EndLocation,
		Vehicle:       p.Vehicle.Name,
		DriveMode:     string(p.DriveMode),
		DistanceKm:    p.Route.DistanceKm,
		EnergyKWh:     p.Energy.FinalKWh,
		StartSoCPct:   p.SoC.StartPct,
		EndSoCPct:     p.SoC.EndPct,
		NeedsCharging: p.SoC.NeedsCharging,
		ChargingCost:  p.ChargingCost,
		Fallbacks:     p.Fallbacks(),
		CreatedAt:     p.CreatedAt,
	}
}

// NopPublisher discards messages.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PlanMessage) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// MultiPublisher sends every message to all publishers and joins their
// errors.
type MultiPublisher struct {
	Publishers []Publisher
}

func NewMultiPublisher(pubs ...Publisher) *MultiPublisher {
	return &MultiPublisher{Publishers: pubs}
}

func (m *MultiPublisher) Publish(ctx context.Context, msg PlanMessage) error {
	var errs []error
	for _, p := range m.Publishers {
		if err := p.Publish(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.Publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var registry = factory.NewRegistry[Publisher]()

// RegisterPublisher adds a publisher factory identified by name.
func RegisterPublisher(name string, f factory.Factory[Publisher]) error {
	return registry.Register(name, f)
}

// PublisherTypes lists the registered publisher names.
func PublisherTypes() []string { return registry.Types() }

// NewPublisher creates a Publisher from the provided configuration.
func NewPublisher(cfgs []factory.ModuleConfig) (Publisher, error) {
	if len(cfgs) == 0 {
		return NopPublisher{}, nil
	}
	if len(cfgs) == 1 {
		return registry.Create(cfgs[0])
	}
	pubs := make([]Publisher, 0, len(cfgs))
	for _, c := range cfgs {
		p, err := registry.Create(c)
		if err != nil {
			_ = NewMultiPublisher(pubs...).Close()
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return NewMultiPublisher(pubs...), nil
}
