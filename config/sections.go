package config

import (
	"errors"
	"fmt"
	"time"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address             string `json:"address"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"`
}

func (s *ServerConfig) SetDefaults() {
	if s.Address == "" {
		s.Address = ":8080"
	}
	if s.ReadTimeoutSeconds == 0 {
		s.ReadTimeoutSeconds = 15
	}
	if s.WriteTimeoutSeconds == 0 {
		s.WriteTimeoutSeconds = 60
	}
}

func (s ServerConfig) Validate() error {
	if s.ReadTimeoutSeconds < 0 || s.WriteTimeoutSeconds < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// EndpointConfig points at a remote service.
type EndpointConfig struct {
	URL string `json:"url"`
}

type WeatherConfig struct {
	URL      string `json:"url"`
	Timezone string `json:"timezone"`
}

type ElevationConfig struct {
	URL     string `json:"url"`
	Samples int    `json:"samples"`
}

type ChargersConfig struct {
	URL      string  `json:"url"`
	RadiusKm float64 `json:"radius_km"`
	Limit    int     `json:"limit"`
}

type TrafficConfig struct {
	Timezone string `json:"timezone"`
}

// ProvidersConfig groups the external data sources. An empty URL selects
// the public endpoint of each service.
type ProvidersConfig struct {
	TimeoutSeconds int             `json:"timeout_seconds"`
	Weather        WeatherConfig   `json:"weather"`
	Elevation      ElevationConfig `json:"elevation"`
	Geocoder       EndpointConfig  `json:"geocoder"`
	Router         EndpointConfig  `json:"router"`
	Chargers       ChargersConfig  `json:"chargers"`
	Traffic        TrafficConfig   `json:"traffic"`
}

func (p *ProvidersConfig) SetDefaults() {
	if p.TimeoutSeconds == 0 {
		p.TimeoutSeconds = 10
	}
	if p.Weather.Timezone == "" {
		p.Weather.Timezone = "Asia/Kolkata"
	}
	if p.Elevation.Samples == 0 {
		p.Elevation.Samples = 11
	}
	if p.Chargers.RadiusKm == 0 {
		p.Chargers.RadiusKm = 30
	}
	if p.Chargers.Limit == 0 {
		p.Chargers.Limit = 10
	}
	if p.Traffic.Timezone == "" {
		p.Traffic.Timezone = "Asia/Kolkata"
	}
}

func (p ProvidersConfig) Validate() error {
	if p.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds must not be negative")
	}
	if p.Elevation.Samples < 2 {
		return fmt.Errorf("elevation.samples must be at least 2, got %d", p.Elevation.Samples)
	}
	if p.Chargers.RadiusKm < 0 {
		return errors.New("chargers.radius_km must not be negative")
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (p ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// EnergyConfig selects the base consumption predictor.
type EnergyConfig struct {
	Predictor         string  `json:"predictor"`
	ModelPath         string  `json:"model_path"`
	FallbackToPhysics *bool   `json:"fallback_to_physics"`
	VehiclesFile      string  `json:"vehicles_file"`
	TariffPerKWh      float64 `json:"tariff_per_kwh"`
	HVAC              bool    `json:"hvac"`
}

func (e *EnergyConfig) SetDefaults() {
	if e.Predictor == "" {
		e.Predictor = "physics"
	}
	if e.FallbackToPhysics == nil {
		v := true
		e.FallbackToPhysics = &v
	}
	if e.TariffPerKWh == 0 {
		e.TariffPerKWh = 8
	}
}

func (e EnergyConfig) Validate() error {
	switch e.Predictor {
	case "physics":
	case "regression":
		if e.ModelPath == "" {
			return errors.New("model_path is required for the regression predictor")
		}
	default:
		return fmt.Errorf("unknown predictor %q", e.Predictor)
	}
	if e.TariffPerKWh < 0 {
		return errors.New("tariff_per_kwh must not be negative")
	}
	return nil
}

// Fallback reports whether a failing regression model degrades to physics.
func (e EnergyConfig) Fallback() bool {
	return e.FallbackToPhysics == nil || *e.FallbackToPhysics
}

// StorageConfig selects the trip and user store.
type StorageConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	DSN     string `json:"dsn"`
}

func (s *StorageConfig) SetDefaults() {
	if s.Backend == "" {
		s.Backend = "sqlite"
	}
	if s.Backend == "sqlite" && s.Path == "" {
		s.Path = "evroute.db"
	}
}

func (s StorageConfig) Validate() error {
	switch s.Backend {
	case "sqlite", "memory":
	case "postgres":
		if s.DSN == "" {
			return errors.New("dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	return nil
}

// AuthConfig configures JWT issuance.
type AuthConfig struct {
	JWTSecret       string `json:"jwt_secret"`
	TokenTTLMinutes int    `json:"token_ttl_minutes"`
	Issuer          string `json:"issuer"`
}

func (a *AuthConfig) SetDefaults() {
	if a.TokenTTLMinutes == 0 {
		a.TokenTTLMinutes = 60
	}
	if a.Issuer == "" {
		a.Issuer = "evroute"
	}
}

// Validate accepts an empty secret; the API then runs without accounts.
func (a AuthConfig) Validate() error {
	if a.JWTSecret != "" && len(a.JWTSecret) < 16 {
		return errors.New("jwt_secret must be at least 16 characters")
	}
	if a.TokenTTLMinutes < 0 {
		return errors.New("token_ttl_minutes must not be negative")
	}
	return nil
}

// TokenTTL returns the token lifetime as a duration.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}
