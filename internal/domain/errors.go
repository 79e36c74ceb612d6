package domain

import "fmt"

// InvalidInputError reports a malformed or out-of-range request.
// The caller must correct the request; it is never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// GeocodingRequiredError reports a waypoint without usable coordinates.
type GeocodingRequiredError struct {
	Position int
	Address  string
}

func (e *GeocodingRequiredError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("geocoding required: pickup %q has no valid coordinates", e.Address)
	}
	return fmt.Sprintf("geocoding required: dropoff %d %q has no valid coordinates", e.Position, e.Address)
}

// CapacityExceededError reports a route whose load cannot physically fit
// the vehicle on at least one leg.
type CapacityExceededError struct {
	VehicleType VehicleType
	LegIndex    int
	Dimension   string
	Load        float64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf(
		"capacity exceeded: %s at %.0f%% of %s capacity on leg %d",
		e.VehicleType, e.Load*100, e.Dimension, e.LegIndex,
	)
}
