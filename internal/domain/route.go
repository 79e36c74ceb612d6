package domain

import "fmt"

// Algorithm identifies the ordering strategy that produced a route.
type Algorithm string

const (
	AlgorithmNearestNeighborTimeWindows Algorithm = "nearest-neighbor-time-windows"
	AlgorithmDirect                     Algorithm = "direct"
)

// Valid reports whether a is one of the known ordering strategies.
func (a Algorithm) Valid() bool {
	return a == AlgorithmNearestNeighborTimeWindows || a == AlgorithmDirect
}

// Directed travel segment between two consecutive waypoints of a route.
// Legs are produced by the optimizer and only read by pricing.
type RouteLeg struct {
	LegIndex               int
	From                   Waypoint
	To                     Waypoint
	DistanceKm             float64
	DurationMinutes        float64
	TrafficMultiplier      float64
	DifficultyScore        int
	CongestionZone         bool
	ArrivalClock           Clock
	WindowViolationMinutes float64
}

func (l RouteLeg) Describe() string {
	return fmt.Sprintf("%s → %s", l.From.Label(), l.To.Label())
}

// How the route compares with visiting the drops in the requested order.
type Optimization struct {
	Algorithm             Algorithm
	EfficiencyScore       int
	TimeSavedMinutes      float64
	DistanceSavedKm       float64
	DirectDistanceKm      float64
	DirectDurationMinutes float64
}

// Represents the optimizer's ordered route for a single vehicle.
// Waypoints start with the pickup; Legs has one entry fewer than Waypoints.
// It is immutable planning data and contains no side effects.
type OptimizedRoute struct {
	VehicleType          VehicleType
	Waypoints            []Waypoint
	Legs                 []RouteLeg
	TotalStops           int
	TotalDistanceKm      float64
	TotalDurationMinutes float64
	Optimization         Optimization
	Warnings             []string
	Recommendations      []string
}

// Dropoffs returns the route's waypoints after the pickup.
func (r *OptimizedRoute) Dropoffs() []Waypoint {
	if len(r.Waypoints) == 0 {
		return nil
	}
	return r.Waypoints[1:]
}
