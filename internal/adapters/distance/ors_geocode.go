package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

// ErrNoGeocodeResult is returned when ORS finds no match for an address.
var ErrNoGeocodeResult = errors.New("no geocode result")

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves an address using the geocode cache, then the
// OpenRouteService search endpoint (/geocode/search).
func (o *ORSClient) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := o.normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	// Resolve coordinates via cache before calling ORS geocoding.
	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("ORS get geocode cache: %w", err)
		}
		if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	c, err := o.search(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			logging.FromContext(ctx).Warn("geocode cache write failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
		}
	}

	return c, nil
}

func (o *ORSClient) search(ctx context.Context, address string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, ErrNoGeocodeResult
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format")
	}

	// GeoJSON order is [lng, lat].
	c := domain.Coordinates{Lng: coords[0], Lat: coords[1]}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinates %v", c)
	}
	return c, nil
}
