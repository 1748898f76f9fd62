// Package environment gathers the weather, elevation and traffic readings of
// a route. Every provider gets exactly one attempt and any failure is
// replaced by the documented default record, so a planning request never
// fails because of environmental data.
package environment

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/evroute/core/events"
	"github.com/kilianp07/evroute/core/logger"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/internal/eventbus"
)

// Provider names used in logs, events and monitoring tags.
const (
	ProviderWeather   = "weather"
	ProviderElevation = "elevation"
	ProviderTraffic   = "traffic"
)

var errNotConfigured = errors.New("provider not configured")

// WeatherProvider returns current conditions at a coordinate.
type WeatherProvider interface {
	Weather(ctx context.Context, at model.Coordinate) (model.WeatherReading, error)
}

// ElevationProvider summarises terrain between two coordinates.
type ElevationProvider interface {
	Profile(ctx context.Context, start, end model.Coordinate) (model.ElevationProfile, error)
}

// TrafficProvider estimates congestion between two coordinates.
type TrafficProvider interface {
	Estimate(ctx context.Context, start, end model.Coordinate) (model.TrafficEstimate, error)
}

// Fetcher calls the three providers sequentially and substitutes defaults on
// failure.
type Fetcher struct {
	weather   WeatherProvider
	elevation ElevationProvider
	traffic   TrafficProvider
	log       logger.Logger
	bus       eventbus.EventBus
}

// NewFetcher wires the providers. A nil provider always yields its default.
// bus may be nil.
func NewFetcher(w WeatherProvider, e ElevationProvider, t TrafficProvider, log logger.Logger, bus eventbus.EventBus) *Fetcher {
	return &Fetcher{weather: w, elevation: e, traffic: t, log: logger.OrNop(log), bus: bus}
}

// Conditions fetches weather at the start point, then the elevation profile
// and traffic estimate for the segment.
func (f *Fetcher) Conditions(ctx context.Context, start, end model.Coordinate) model.Conditions {
	return model.Conditions{
		Weather:   f.Weather(ctx, start),
		Elevation: f.Elevation(ctx, start, end),
		Traffic:   f.Traffic(ctx, start, end),
	}
}

// Weather returns the live reading or DefaultWeather.
func (f *Fetcher) Weather(ctx context.Context, at model.Coordinate) model.WeatherReading {
	began := time.Now()
	var (
		r   model.WeatherReading
		err = errNotConfigured
	)
	if f.weather != nil {
		r, err = f.weather.Weather(ctx, at)
	}
	if f.done(ProviderWeather, began, err) {
		return model.DefaultWeather()
	}
	r.Source = model.SourceLive
	return r
}

// Elevation returns the live profile or DefaultElevation.
func (f *Fetcher) Elevation(ctx context.Context, start, end model.Coordinate) model.ElevationProfile {
	began := time.Now()
	var (
		p   model.ElevationProfile
		err = errNotConfigured
	)
	if f.elevation != nil {
		p, err = f.elevation.Profile(ctx, start, end)
	}
	if f.done(ProviderElevation, began, err) {
		return model.DefaultElevation()
	}
	p.Source = model.SourceLive
	return p
}

// Traffic returns the live estimate or DefaultTraffic.
func (f *Fetcher) Traffic(ctx context.Context, start, end model.Coordinate) model.TrafficEstimate {
	began := time.Now()
	var (
		t   model.TrafficEstimate
		err = errNotConfigured
	)
	if f.traffic != nil {
		t, err = f.traffic.Estimate(ctx, start, end)
	}
	if f.done(ProviderTraffic, began, err) {
		return model.DefaultTraffic()
	}
	t.Source = model.SourceLive
	return t
}

// done records the outcome of a provider call and reports whether the
// default must be used.
func (f *Fetcher) done(provider string, began time.Time, err error) bool {
	latency := time.Since(began)
	if err != nil {
		if errors.Is(err, errNotConfigured) {
			f.log.Debugf("%s provider not configured, using defaults", provider)
		} else {
			f.log.Warnf("%s provider failed, using defaults: %v", provider, err)
			monitoring.CaptureException(err, map[string]string{"provider": provider})
		}
	}
	if f.bus != nil {
		f.bus.Publish(events.ProviderEvent{
			Provider: provider,
			Fallback: err != nil,
			Latency:  latency,
			Err:      err,
			Time:     time.Now(),
		})
	}
	return err != nil
}
