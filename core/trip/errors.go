package trip

import "errors"

var (
	// ErrInvalidRequest wraps validation failures of a planning request.
	ErrInvalidRequest = errors.New("invalid trip request")
	// ErrLocationNotFound is returned when a place name cannot be geocoded.
	ErrLocationNotFound = errors.New("location not found")
	// ErrNoRoute is returned when the router finds no drivable route.
	ErrNoRoute = errors.New("no route found")
	// ErrUnknownVehicle is returned for a vehicle missing from the catalog.
	ErrUnknownVehicle = errors.New("unknown vehicle")
)
