package distance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/platform/obs"
	"multidrop-route-service/internal/ports"

	"go.uber.org/zap"
)

const defaultORSBaseURL = "https://api.openrouteservice.org"

// ORSClient implements TravelMatrixEstimator and Geocoder using
// OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Geocode and travel caching
//   - External API calls with retry/backoff
//
// The client is safe for concurrent use.
type ORSClient struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	country      string
	travelCache  ports.TravelCache
	geocodeCache ports.GeocodeCache
}

func NewORSClient(
	apiKey string,
	travelCache ports.TravelCache,
	geocodeCache ports.GeocodeCache,
) (*ORSClient, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSClient{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      defaultORSBaseURL,
		profile:      "driving-car",
		country:      "GB",
		travelCache:  travelCache,
		geocodeCache: geocodeCache,
	}, nil
}

// WithBaseURL points the client at another ORS deployment.
func (o *ORSClient) WithBaseURL(u string) *ORSClient {
	o.baseURL = strings.TrimRight(u, "/")
	return o
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSClient) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Delegate to the batched path to reuse caching and matrix logic.
func (o *ORSClient) EstimateTravel(ctx context.Context, from, to domain.Coordinates) (ports.TravelEstimate, error) {
	row, err := o.EstimateRow(ctx, from, []domain.Coordinates{to})
	if err != nil {
		return ports.TravelEstimate{}, err
	}
	return row[0], nil
}

// EstimateRow returns estimates from origin to each destination, in order.
func (o *ORSClient) EstimateRow(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ []ports.TravelEstimate, err error) {
	defer obs.Time(ctx, "ors.EstimateRow")(&err)

	if !origin.Valid() {
		return nil, fmt.Errorf("estimate row: invalid origin %v", origin)
	}

	out := make([]ports.TravelEstimate, len(destinations))
	if len(destinations) == 0 {
		return out, nil
	}

	keys := make([]string, len(destinations))
	for i, d := range destinations {
		if !d.Valid() {
			return nil, fmt.Errorf("estimate row: invalid destination %v", d)
		}
		keys[i] = ports.TravelKey(origin, d)
	}

	hits := map[string]ports.TravelEstimate{}
	// Check the travel cache before issuing external API calls.
	if o.travelCache != nil {
		hits, err = o.travelCache.GetMany(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("ORS get travel cache: %w", err)
		}
	}

	missIdx := make([]int, 0, len(destinations))
	missCoords := make([]domain.Coordinates, 0, len(destinations))
	seen := make(map[string]struct{}, len(destinations))
	for i, k := range keys {
		if est, ok := hits[k]; ok {
			out[i] = est
			continue
		}
		if destinations[i] == origin {
			continue
		}
		missIdx = append(missIdx, i)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		missCoords = append(missCoords, destinations[i])
	}

	if len(missIdx) == 0 {
		return out, nil
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, origin, missCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	fresh := make(map[string]ports.TravelEstimate, len(fetched))
	for i, c := range missCoords {
		fresh[ports.TravelKey(origin, c)] = fetched[i]
	}
	for _, i := range missIdx {
		out[i] = fresh[keys[i]]
	}

	if o.travelCache != nil {
		if err := o.travelCache.PutMany(ctx, fresh); err != nil {
			logging.FromContext(ctx).Warn("travel cache write failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		}
	}

	return out, nil
}
