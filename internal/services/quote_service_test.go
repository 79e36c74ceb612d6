package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"multidrop-route-service/internal/adapters/distance"
	"multidrop-route-service/internal/adapters/repositories"
	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/db"
	"multidrop-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder map[string]domain.Coordinates

func (g stubGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	c, ok := g[address]
	if !ok {
		return domain.Coordinates{}, errors.New("not found")
	}
	return c, nil
}

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newTestQuoteService(opts ...QuoteOption) *QuoteService {
	base := []QuoteOption{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "quote-1" }),
	}
	return NewQuoteService(config.DefaultPricing(), append(base, opts...)...)
}

func TestQuoteSingleDrop(t *testing.T) {
	q, err := newTestQuoteService().Quote(context.Background(), QuoteRequest{
		Pickup:      londonBridge,
		Dropoffs:    []domain.Waypoint{canaryWharf},
		VehicleType: domain.VehicleVan,
	})
	require.NoError(t, err)

	assert.Equal(t, "quote-1", q.ID)
	assert.Equal(t, fixedNow, q.CreatedAt)
	assert.Len(t, q.Route.Legs, 1)
	assert.Zero(t, q.Pricing.TotalStopSurcharge)

	tot := q.Totals
	assert.Equal(t, q.Pricing.LegCostSubtotal(), tot.LegCosts)
	assert.Equal(t, tot.LegCosts+tot.StopSurcharges-tot.Discount, tot.Subtotal)
	assert.Equal(t, int64(math.Round(float64(tot.Subtotal)*0.2)), tot.VAT)
	assert.Equal(t, tot.Subtotal+tot.VAT, tot.Total)
	assert.Len(t, q.Analytics.Alternatives, 3)
}

func TestComputeTotalsRoundsVATHalfAwayFromZero(t *testing.T) {
	p := &domain.MultiDropPricing{
		PerLegCharges:             []domain.LegCharge{{BaseFee: 1000, DistanceFee: 2}},
		TotalStopSurcharge:        500,
		RouteOptimizationDiscount: 10,
	}

	tot := ComputeTotals(p, 0.2)
	assert.Equal(t, int64(1492), tot.Subtotal)
	// 1492 * 0.2 = 298.4
	assert.Equal(t, int64(298), tot.VAT)
	assert.Equal(t, int64(1790), tot.Total)

	p.PerLegCharges[0].DistanceFee = 4
	// 1494 * 0.2 = 298.8
	assert.Equal(t, int64(299), ComputeTotals(p, 0.2).VAT)

	p.PerLegCharges[0].DistanceFee = 0
	p.TotalStopSurcharge = 0
	p.RouteOptimizationDiscount = 2
	// 998 * 0.25 = 249.5
	assert.Equal(t, int64(250), ComputeTotals(p, 0.25).VAT)
}

func TestQuoteGeocodesMissingCoordinates(t *testing.T) {
	svc := newTestQuoteService(WithGeocoder(stubGeocoder{"Canary Wharf": canaryWharf.Coordinates}))
	req := QuoteRequest{
		Pickup:      londonBridge,
		Dropoffs:    []domain.Waypoint{{Address: "Canary Wharf"}},
		VehicleType: domain.VehicleVan,
	}

	q, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, canaryWharf.Coordinates, q.Route.Waypoints[1].Coordinates)
	assert.True(t, req.Dropoffs[0].Coordinates.IsZero(), "request must not be modified")

	req.Dropoffs[0].Address = "Atlantis"
	_, err = svc.Quote(context.Background(), req)
	var geo *domain.GeocodingRequiredError
	require.ErrorAs(t, err, &geo)
	assert.Equal(t, 1, geo.Position)
}

func TestQuoteWithoutGeocoderRequiresCoordinates(t *testing.T) {
	_, err := newTestQuoteService().Quote(context.Background(), QuoteRequest{
		Pickup:      domain.Waypoint{Address: "Depot"},
		Dropoffs:    []domain.Waypoint{canaryWharf},
		VehicleType: domain.VehicleVan,
	})
	var geo *domain.GeocodingRequiredError
	require.ErrorAs(t, err, &geo)
	assert.Equal(t, 0, geo.Position)
}

func TestQuotePrefetchesTravelMatrix(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	a := gridPoint("A", 0.01, 0)
	b := gridPoint("B", 0.02, 0)
	points := []domain.Waypoint{pickup, a, b}

	var pairs []distance.MockPair
	for i, from := range points {
		for j, to := range points {
			if i != j {
				pairs = append(pairs, distance.MockPair{From: from.Coordinates, To: to.Coordinates, Km: 2, Minutes: 6})
			}
		}
	}
	est := distance.NewMockTravelEstimator(pairs)

	q, err := newTestQuoteService(WithTravelEstimator(est)).Quote(context.Background(), QuoteRequest{
		Pickup:      pickup,
		Dropoffs:    []domain.Waypoint{a, b},
		VehicleType: domain.VehicleVan,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, est.Calls())
	assert.Equal(t, 4.0, q.Route.TotalDistanceKm)
	assert.Equal(t, 12.0, q.Route.TotalDurationMinutes)
}

func TestQuoteFallsBackWhenEstimatorFails(t *testing.T) {
	req := QuoteRequest{
		Pickup:      londonBridge,
		Dropoffs:    []domain.Waypoint{canaryWharf, gridPoint("North", 0, 0)},
		VehicleType: domain.VehicleVan,
	}

	want, err := newTestQuoteService().Quote(context.Background(), req)
	require.NoError(t, err)

	est := distance.NewMockTravelEstimator(nil).FailWith(errors.New("upstream down"))
	got, err := newTestQuoteService(WithTravelEstimator(est)).Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Positive(t, est.Calls())
	assert.Equal(t, want.Route.TotalDistanceKm, got.Route.TotalDistanceKm)
	assert.Equal(t, want.Totals, got.Totals)
}

func TestQuoteRejectsTooManyDropsBeforeLookups(t *testing.T) {
	est := distance.NewMockTravelEstimator(nil)
	drops := make([]domain.Waypoint, 9)
	for i := range drops {
		drops[i] = gridPoint(string(rune('A'+i)), 0.01*float64(i+1), 0)
	}

	_, err := newTestQuoteService(WithTravelEstimator(est)).Quote(context.Background(), QuoteRequest{
		Pickup:      gridPoint("HUB", 0, 0),
		Dropoffs:    drops,
		VehicleType: domain.VehicleVan,
	})
	var invalid *domain.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, est.Calls())
}

func TestQuoteCapacityExceeded(t *testing.T) {
	_, err := newTestQuoteService().Quote(context.Background(), QuoteRequest{
		Pickup:      londonBridge,
		Dropoffs:    []domain.Waypoint{canaryWharf},
		VehicleType: domain.VehiclePickup,
		Items:       []domain.Item{{Name: "wardrobe", WeightKg: 120, VolumeM3: 2.5, Quantity: 4}},
	})
	var capErr *domain.CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, domain.VehiclePickup, capErr.VehicleType)
}

func TestQuotePersistsAndReadsBack(t *testing.T) {
	ctx := context.Background()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, repositories.InitSchema(ctx, conn, db.SQLite))

	svc := newTestQuoteService(WithQuoteRepository(repositories.NewSQLQuoteRepository(conn, db.SQLite)))

	q, err := svc.Quote(ctx, QuoteRequest{
		Pickup:      londonBridge,
		Dropoffs:    []domain.Waypoint{canaryWharf, gridPoint("North", 0, 0)},
		VehicleType: domain.VehicleTruck,
		Items:       []domain.Item{{Name: "sofa", WeightKg: 80, VolumeM3: 2, DropoffAddress: "Canary Wharf"}},
	})
	require.NoError(t, err)

	got, err := svc.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Totals, got.Totals)
	assert.Equal(t, q.Route.Waypoints, got.Route.Waypoints)

	_, err = svc.GetQuote(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrQuoteNotFound)
}

func TestGetQuoteWithoutRepository(t *testing.T) {
	_, err := newTestQuoteService().GetQuote(context.Background(), "quote-1")
	assert.ErrorIs(t, err, ports.ErrQuoteNotFound)
}
