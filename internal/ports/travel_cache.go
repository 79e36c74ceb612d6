package ports

import (
	"context"
	"fmt"
	"multidrop-route-service/internal/domain"
)

// Cache of travel estimates keyed by TravelKey.
type TravelCache interface {
	GetMany(ctx context.Context, keys []string) (map[string]TravelEstimate, error)
	PutMany(ctx context.Context, results map[string]TravelEstimate) error
}

// TravelKey builds a cache key for a directed pair. Coordinates are rounded
// to five decimals (about one metre).
func TravelKey(from, to domain.Coordinates) string {
	return fmt.Sprintf("%.5f,%.5f|%.5f,%.5f", from.Lat, from.Lng, to.Lat, to.Lng)
}
