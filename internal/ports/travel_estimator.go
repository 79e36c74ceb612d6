package ports

import (
	"context"
	"multidrop-route-service/internal/domain"
)

// Road distance and travel duration between two coordinates.
// A zero TrafficMultiplier means the provider does not report traffic.
type TravelEstimate struct {
	DistanceKm        float64 `json:"distance_km"`
	DurationMinutes   float64 `json:"duration_minutes"`
	TrafficMultiplier float64 `json:"traffic_multiplier,omitempty"`
}

// Contract for retrieving travel estimates from an external routing source.
type TravelEstimator interface {
	// Return travel distance and estimated duration between two points.
	EstimateTravel(ctx context.Context, from, to domain.Coordinates) (TravelEstimate, error)
}

// Optional extension of TravelEstimator that supports batched lookups.
type TravelMatrixEstimator interface {
	TravelEstimator
	// Return estimates from one origin to many destinations, index-aligned
	// with destinations.
	EstimateRow(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]TravelEstimate, error)
}
