package services

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/ports"
)

var (
	londonBridge = domain.Waypoint{Address: "London Bridge", Coordinates: domain.Coordinates{Lat: 51.5045, Lng: -0.0865}}
	canaryWharf  = domain.Waypoint{Address: "Canary Wharf", Coordinates: domain.Coordinates{Lat: 51.5054, Lng: -0.0235}}
)

func newTestOptimizer() *RouteOptimizer {
	return NewRouteOptimizer(NewOptimizerConfig(config.DefaultPricing()))
}

func clockPtr(t *testing.T, s string) *domain.Clock {
	t.Helper()
	c, err := domain.ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return &c
}

// gridPoint places waypoints on a small grid north of central London,
// outside the congestion zone.
func gridPoint(name string, dLat, dLng float64) domain.Waypoint {
	return domain.Waypoint{Address: name, Coordinates: domain.Coordinates{Lat: 51.60 + dLat, Lng: -0.10 + dLng}}
}

func addresses(ws []domain.Waypoint) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Address)
	}
	return out
}

func TestOptimizeRouteSingleDrop(t *testing.T) {
	route, err := newTestOptimizer().OptimizeRoute(londonBridge, []domain.Waypoint{canaryWharf}, domain.VehicleVan, OptimizeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.TotalStops != 2 || len(route.Waypoints) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(route.Waypoints))
	}
	if len(route.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(route.Legs))
	}
	if route.Optimization.Algorithm != domain.AlgorithmDirect {
		t.Fatalf("algorithm = %q, want direct", route.Optimization.Algorithm)
	}

	// ~4.36 km great-circle, ~4.8 km after road correction.
	if d := route.TotalDistanceKm; d < 4.7 || d > 4.9 {
		t.Fatalf("distance = %.2f km, want about 4.8", d)
	}
	wantMinutes := route.TotalDistanceKm / 30 * 60
	if math.Abs(route.TotalDurationMinutes-wantMinutes) > 1e-9 {
		t.Fatalf("duration = %.3f, want %.3f", route.TotalDurationMinutes, wantMinutes)
	}
	if route.Legs[0].TrafficMultiplier != 1.0 {
		t.Fatalf("traffic = %v, want 1.0 without a departure time", route.Legs[0].TrafficMultiplier)
	}
	if route.Optimization.DistanceSavedKm != 0 || route.Optimization.TimeSavedMinutes != 0 {
		t.Fatalf("expected no savings for a single drop, got %+v", route.Optimization)
	}
}

func TestOptimizeRouteNearestNeighbor(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	far := gridPoint("FAR", 0.04, 0)
	near := gridPoint("NEAR", 0.01, 0)
	mid := gridPoint("MID", 0.02, 0)

	route, err := newTestOptimizer().OptimizeRoute(pickup, []domain.Waypoint{far, near, mid}, domain.VehicleVan, OptimizeOptions{OptimizeFor: OptimizeDistance})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"HUB", "NEAR", "MID", "FAR"}
	if got := addresses(route.Waypoints); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if route.Optimization.Algorithm != domain.AlgorithmNearestNeighborTimeWindows {
		t.Fatalf("algorithm = %q", route.Optimization.Algorithm)
	}
	if route.Optimization.DistanceSavedKm <= 0 {
		t.Fatalf("expected distance savings over FAR-first order, got %v", route.Optimization.DistanceSavedKm)
	}
	for i, l := range route.Legs {
		if l.LegIndex != i {
			t.Fatalf("leg %d has index %d", i, l.LegIndex)
		}
		if l.From.Address != route.Waypoints[i].Address || l.To.Address != route.Waypoints[i+1].Address {
			t.Fatalf("leg %d does not join consecutive waypoints", i)
		}
	}
}

func TestOptimizeRouteUsesMatrix(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	a := gridPoint("A", 0.01, 0)
	b := gridPoint("B", 0.02, 0)
	c := gridPoint("C", 0.03, 0)

	// Mirrors a road network where C is reached fastest from the hub.
	m := TravelMatrix{
		{0, 1}: {DistanceKm: 1.0, DurationMinutes: 5},
		{0, 2}: {DistanceKm: 2.0, DurationMinutes: 10},
		{0, 3}: {DistanceKm: 0.5, DurationMinutes: 3},
		{3, 1}: {DistanceKm: 0.7, DurationMinutes: 3.5},
		{3, 2}: {DistanceKm: 0.9, DurationMinutes: 4.5},
		{1, 2}: {DistanceKm: 0.8, DurationMinutes: 4},
		{2, 1}: {DistanceKm: 0.8, DurationMinutes: 4},
		{1, 3}: {DistanceKm: 0.7, DurationMinutes: 3.5},
		{2, 3}: {DistanceKm: 0.9, DurationMinutes: 4.5},
	}

	route, err := newTestOptimizer().OptimizeRoute(pickup, []domain.Waypoint{a, b, c}, domain.VehicleVan, OptimizeOptions{OptimizeFor: OptimizeTime, Matrix: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"HUB", "C", "A", "B"}
	if got := addresses(route.Waypoints); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if math.Abs(route.TotalDistanceKm-2.0) > 1e-9 {
		t.Fatalf("distance = %v, want 2.0", route.TotalDistanceKm)
	}
	if math.Abs(route.TotalDurationMinutes-10.5) > 1e-9 {
		t.Fatalf("duration = %v, want 10.5", route.TotalDurationMinutes)
	}
}

func TestOptimizeRouteTiesKeepRequestOrder(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	east := gridPoint("EAST", 0, 0.01)
	west := gridPoint("WEST", 0, -0.01)

	opt := newTestOptimizer()
	for _, drops := range [][]domain.Waypoint{{east, west}, {west, east}} {
		route, err := opt.OptimizeRoute(pickup, drops, domain.VehicleVan, OptimizeOptions{OptimizeFor: OptimizeDistance})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if route.Waypoints[1].Address != drops[0].Address {
			t.Fatalf("tie broke to %q, want first requested %q", route.Waypoints[1].Address, drops[0].Address)
		}
	}
}

func TestOptimizeRouteDeterministic(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	drops := []domain.Waypoint{
		gridPoint("A", 0.03, 0.01),
		gridPoint("B", -0.01, 0.02),
		gridPoint("C", 0.02, -0.03),
		gridPoint("D", 0.01, 0.01),
		gridPoint("E", -0.02, -0.01),
	}

	opt := newTestOptimizer()
	first, err := opt.OptimizeRoute(pickup, drops, domain.VehicleTruck, OptimizeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := opt.OptimizeRoute(pickup, drops, domain.VehicleTruck, OptimizeOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different route", i)
		}
	}
}

func TestOptimizeRouteSavingsNeverNegative(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	drops := []domain.Waypoint{
		gridPoint("A", 0.01, 0),
		gridPoint("B", 0.02, 0),
		gridPoint("C", 0.03, 0),
	}

	// The greedy choice by time goes to C first, longer than the
	// requested order on every count.
	m := TravelMatrix{
		{0, 1}: {DistanceKm: 1, DurationMinutes: 10},
		{0, 2}: {DistanceKm: 2, DurationMinutes: 10},
		{0, 3}: {DistanceKm: 9, DurationMinutes: 1},
		{1, 2}: {DistanceKm: 1, DurationMinutes: 1},
		{2, 3}: {DistanceKm: 1, DurationMinutes: 1},
		{3, 1}: {DistanceKm: 9, DurationMinutes: 50},
		{3, 2}: {DistanceKm: 9, DurationMinutes: 50},
		{1, 3}: {DistanceKm: 9, DurationMinutes: 50},
		{2, 1}: {DistanceKm: 1, DurationMinutes: 1},
	}

	route, err := newTestOptimizer().OptimizeRoute(pickup, drops, domain.VehicleVan, OptimizeOptions{OptimizeFor: OptimizeTime, Matrix: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.Optimization.DistanceSavedKm != 0 || route.Optimization.TimeSavedMinutes != 0 {
		t.Fatalf("savings = %+v, want zero", route.Optimization)
	}
	if len(route.Warnings) == 0 {
		t.Fatal("expected a warning when the optimized order is longer")
	}
}

func TestOptimizeRouteTimeWindows(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	near := gridPoint("NEAR", 0.01, 0)
	near.TimeWindow = &domain.TimeWindow{Earliest: clockPtr(t, "10:00")}
	far := gridPoint("FAR", 0.05, 0)

	drops := []domain.Waypoint{near, far}
	opts := OptimizeOptions{OptimizeFor: OptimizeDistance, Departure: clockPtr(t, "09:00")}

	route, err := newTestOptimizer().OptimizeRoute(pickup, drops, domain.VehicleVan, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := route.Waypoints[1].Address; got != "FAR" {
		t.Fatalf("first stop = %q, want FAR while NEAR is not yet open", got)
	}
	if route.Legs[1].WindowViolationMinutes != 0 {
		t.Fatalf("early arrival counted as late: %v", route.Legs[1].WindowViolationMinutes)
	}

	opts.IgnoreTimeWindows = true
	route, err = newTestOptimizer().OptimizeRoute(pickup, drops, domain.VehicleVan, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := route.Waypoints[1].Address; got != "NEAR" {
		t.Fatalf("first stop = %q, want NEAR when windows are ignored", got)
	}
}

func TestOptimizeRouteLateArrivalWarns(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	drop := gridPoint("LATE", 0.05, 0)
	drop.TimeWindow = &domain.TimeWindow{Latest: clockPtr(t, "08:01")}

	route, err := newTestOptimizer().OptimizeRoute(pickup, []domain.Waypoint{drop}, domain.VehicleVan, OptimizeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Legs[0].WindowViolationMinutes <= 0 {
		t.Fatalf("expected a window violation, got %v", route.Legs[0].WindowViolationMinutes)
	}
	if route.Optimization.EfficiencyScore > 60 {
		t.Fatalf("efficiency = %d, want completion to pull the score down", route.Optimization.EfficiencyScore)
	}
	if len(route.Warnings) == 0 {
		t.Fatal("expected a late arrival warning")
	}
}

func TestOptimizeRouteTrafficFromDeparture(t *testing.T) {
	opt := newTestOptimizer()

	cases := map[string]float64{
		"08:00": 1.8,
		"12:00": 1.2,
		"21:00": 1.0,
	}
	for depart, want := range cases {
		route, err := opt.OptimizeRoute(londonBridge, []domain.Waypoint{canaryWharf}, domain.VehicleVan, OptimizeOptions{Departure: clockPtr(t, depart)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := route.Legs[0].TrafficMultiplier; got != want {
			t.Fatalf("depart %s: traffic = %v, want %v", depart, got, want)
		}
	}
}

func TestOptimizeRouteKeepOrder(t *testing.T) {
	pickup := gridPoint("HUB", 0, 0)
	drops := []domain.Waypoint{gridPoint("FAR", 0.04, 0), gridPoint("NEAR", 0.01, 0)}

	route, err := newTestOptimizer().OptimizeRoute(pickup, drops, domain.VehicleVan, OptimizeOptions{KeepOrder: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"HUB", "FAR", "NEAR"}; !reflect.DeepEqual(addresses(route.Waypoints), want) {
		t.Fatalf("order = %v, want %v", addresses(route.Waypoints), want)
	}
	if route.Optimization.Algorithm != domain.AlgorithmDirect {
		t.Fatalf("algorithm = %q, want direct", route.Optimization.Algorithm)
	}
}

func TestOptimizeRouteDropLimits(t *testing.T) {
	opt := newTestOptimizer()
	pickup := gridPoint("HUB", 0, 0)

	drops := make([]domain.Waypoint, 0, 9)
	for i := 0; i < 9; i++ {
		drops = append(drops, gridPoint(string(rune('A'+i)), 0.01*float64(i+1), 0.005*float64(i%3)))
	}

	if _, err := opt.OptimizeRoute(pickup, drops[:8], domain.VehicleVan, OptimizeOptions{}); err != nil {
		t.Fatalf("8 drops: unexpected error: %v", err)
	}

	for _, n := range []int{0, 9} {
		_, err := opt.OptimizeRoute(pickup, drops[:n], domain.VehicleVan, OptimizeOptions{})
		var invalid *domain.InvalidInputError
		if !errors.As(err, &invalid) {
			t.Fatalf("%d drops: expected InvalidInputError, got %v", n, err)
		}
	}
}

func TestOptimizeRouteRequiresCoordinates(t *testing.T) {
	missing := domain.Waypoint{Address: "Unknown Road"}

	_, err := newTestOptimizer().OptimizeRoute(londonBridge, []domain.Waypoint{canaryWharf, missing}, domain.VehicleVan, OptimizeOptions{})
	var geo *domain.GeocodingRequiredError
	if !errors.As(err, &geo) {
		t.Fatalf("expected GeocodingRequiredError, got %v", err)
	}
	if geo.Position != 2 || geo.Address != "Unknown Road" {
		t.Fatalf("error names %d %q", geo.Position, geo.Address)
	}
}

func TestOptimizeRouteRejectsUnknownVehicle(t *testing.T) {
	_, err := newTestOptimizer().OptimizeRoute(londonBridge, []domain.Waypoint{canaryWharf}, domain.VehicleType("bike"), OptimizeOptions{})
	var invalid *domain.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
}

func TestOptimizeRouteAnnotatesLegs(t *testing.T) {
	drop := canaryWharf
	drop.Property = &domain.PropertyDetails{Type: domain.PropertyApartment, Floors: 6, HasLift: false, HasParking: false}

	route, err := newTestOptimizer().OptimizeRoute(londonBridge, []domain.Waypoint{drop}, domain.VehicleVan, OptimizeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leg := route.Legs[0]
	if leg.DifficultyScore != 10 {
		t.Fatalf("difficulty = %d, want 10", leg.DifficultyScore)
	}
	if route.Legs[0].CongestionZone {
		t.Fatal("Canary Wharf lies outside the central zone")
	}
	if len(route.Warnings) == 0 || len(route.Recommendations) == 0 {
		t.Fatalf("expected access warning and parking recommendation, got %v / %v", route.Warnings, route.Recommendations)
	}
}

func TestMeasureScalesProviderDurationByTraffic(t *testing.T) {
	opt := newTestOptimizer()
	points := []domain.Waypoint{londonBridge, canaryWharf}

	m := TravelMatrix{{0, 1}: ports.TravelEstimate{DistanceKm: 5, DurationMinutes: 10}}
	got := opt.measure(points, 0, 1, 8*60, true, m)
	if got.durationMinutes != 18 || got.trafficMultiplier != 1.8 {
		t.Fatalf("got %+v, want 18 minutes at x1.8", got)
	}

	m[[2]int{0, 1}] = ports.TravelEstimate{DistanceKm: 5, DurationMinutes: 10, TrafficMultiplier: 1.3}
	got = opt.measure(points, 0, 1, 8*60, true, m)
	if got.durationMinutes != 10 || got.trafficMultiplier != 1.3 {
		t.Fatalf("got %+v, want reported traffic kept as is", got)
	}
}
