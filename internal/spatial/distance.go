// Package spatial provides great-circle helpers on top of golang/geo.
package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/kilianp07/evroute/core/model"
)

const (
	EarthRadiusMeters = 6371000.0
	EarthRadiusKm     = 6371.0
)

func latLng(c model.Coordinate) s2.LatLng { return s2.LatLngFromDegrees(c.Lat, c.Lon) }

// DistanceMeters returns the great-circle distance between a and b.
func DistanceMeters(a, b model.Coordinate) float64 {
	return latLng(a).Distance(latLng(b)).Radians() * EarthRadiusMeters
}

// DistanceKm returns the great-circle distance between a and b in km.
func DistanceKm(a, b model.Coordinate) float64 {
	return latLng(a).Distance(latLng(b)).Radians() * EarthRadiusKm
}
