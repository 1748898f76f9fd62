package model

import (
	"fmt"
	"strings"
)

// Vehicle describes an EV model used for planning.
type Vehicle struct {
	Name string `json:"name" yaml:"name"`
	// UsableKWh is the usable battery capacity.
	UsableKWh float64 `json:"usable_kwh" yaml:"usable_kwh"`
	// EfficiencyKWhPerKm is the base consumption on flat ground at moderate speed.
	EfficiencyKWhPerKm float64 `json:"efficiency_kwh_per_km" yaml:"efficiency_kwh_per_km"`
	MassKg             float64 `json:"mass_kg" yaml:"mass_kg"`
}

// Validate checks the physical parameters.
func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("vehicle name is required")
	}
	if v.UsableKWh <= 0 {
		return fmt.Errorf("vehicle %s: usable_kwh must be positive", v.Name)
	}
	if v.EfficiencyKWhPerKm <= 0 {
		return fmt.Errorf("vehicle %s: efficiency_kwh_per_km must be positive", v.Name)
	}
	if v.MassKg < 0 {
		return fmt.Errorf("vehicle %s: mass_kg must not be negative", v.Name)
	}
	return nil
}

// DriveMode is the driver-selected powertrain mode.
type DriveMode string

const (
	DriveEco    DriveMode = "Eco"
	DriveNormal DriveMode = "Normal"
	DriveSport  DriveMode = "Sport"
)

// DriveModes lists the supported modes in display order.
var DriveModes = []DriveMode{DriveEco, DriveNormal, DriveSport}

// ParseDriveMode accepts any casing of a supported mode. An empty string
// selects Normal.
func ParseDriveMode(s string) (DriveMode, error) {
	if strings.TrimSpace(s) == "" {
		return DriveNormal, nil
	}
	for _, m := range DriveModes {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown drive mode %q", s)
}

// ConsumptionFactor is the relative consumption of the mode compared to Normal.
func (m DriveMode) ConsumptionFactor() float64 {
	switch m {
	case DriveEco:
		return 0.9
	case DriveSport:
		return 1.15
	default:
		return 1.0
	}
}
