package ports

import (
	"context"
	"multidrop-route-service/internal/domain"
)

// Resolves a free-form address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Persistent address -> coordinates cache used by geocoders.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
