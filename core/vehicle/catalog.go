// Package vehicle holds the catalog of EV models the planner knows about.
package vehicle

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evroute/core/model"
)

// Presets are the built-in vehicles.
var Presets = []model.Vehicle{
	{Name: "Tata Nexon EV", UsableKWh: 30, EfficiencyKWhPerKm: 0.2, MassKg: 1400},
	{Name: "MG ZS EV", UsableKWh: 44, EfficiencyKWhPerKm: 0.18, MassKg: 1620},
	{Name: "Hyundai Kona EV", UsableKWh: 39, EfficiencyKWhPerKm: 0.19, MassKg: 1535},
	{Name: "Mahindra eVerito", UsableKWh: 21, EfficiencyKWhPerKm: 0.17, MassKg: 1265},
}

// Catalog is a concurrency safe set of vehicles indexed by name. Lookups
// ignore case.
type Catalog struct {
	mu       sync.RWMutex
	vehicles map[string]model.Vehicle
}

// NewCatalog returns a catalog seeded with vs.
func NewCatalog(vs ...model.Vehicle) (*Catalog, error) {
	c := &Catalog{vehicles: make(map[string]model.Vehicle, len(vs))}
	for _, v := range vs {
		if err := c.Put(v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Default returns a catalog holding the presets.
func Default() *Catalog {
	c, _ := NewCatalog(Presets...)
	return c
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Put adds or replaces a vehicle.
func (c *Catalog) Put(v model.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicles[key(v.Name)] = v
	return nil
}

// Get returns the vehicle called name.
func (c *Catalog) Get(name string) (model.Vehicle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vehicles[key(name)]
	return v, ok
}

// List returns all vehicles sorted by name.
func (c *Catalog) List() []model.Vehicle {
	c.mu.RLock()
	out := make([]model.Vehicle, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		out = append(out, v)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type fileFormat struct {
	Vehicles []model.Vehicle `yaml:"vehicles"`
}

// LoadFile reads a YAML vehicle list and merges it over the presets. An
// entry with the name of a preset replaces it.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vehicles: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vehicles: %w", err)
	}
	c := Default()
	for _, v := range f.Vehicles {
		if err := c.Put(v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return c, nil
}
