package model

import (
	"fmt"
	"math"
)

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects non-finite or out of range positions.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("coordinate is not finite")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %.6f out of range", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %.6f out of range", c.Lon)
	}
	return nil
}

// String formats the coordinate as "lat,lon".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Lerp returns the point at fraction f of the straight segment from c to o.
func (c Coordinate) Lerp(o Coordinate, f float64) Coordinate {
	return Coordinate{
		Lat: c.Lat + (o.Lat-c.Lat)*f,
		Lon: c.Lon + (o.Lon-c.Lon)*f,
	}
}

// Midpoint returns the arithmetic midpoint between c and o.
func Midpoint(a, b Coordinate) Coordinate { return a.Lerp(b, 0.5) }
