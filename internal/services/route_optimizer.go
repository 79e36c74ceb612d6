package services

import (
	"fmt"
	"math"

	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/domain"
)

// OptimizeFor selects the quantity the greedy step minimizes.
type OptimizeFor string

const (
	OptimizeDistance OptimizeFor = "distance"
	OptimizeTime     OptimizeFor = "time"
	OptimizeCost     OptimizeFor = "cost"
)

// ParseOptimizeFor reads a preference value. An empty string means cost.
func ParseOptimizeFor(s string) (OptimizeFor, error) {
	switch v := OptimizeFor(s); v {
	case OptimizeDistance, OptimizeTime, OptimizeCost:
		return v, nil
	case "":
		return OptimizeCost, nil
	default:
		return "", &domain.InvalidInputError{Field: "preferences.optimize_for", Reason: fmt.Sprintf("unsupported value %q", s)}
	}
}

// OptimizeOptions are per-request routing preferences. The zero value
// reorders stops by cost and honours time windows without a departure time.
type OptimizeOptions struct {
	OptimizeFor       OptimizeFor
	Departure         *domain.Clock
	KeepOrder         bool
	IgnoreTimeWindows bool

	// Advisory limits; exceeding them only adds warnings.
	MaxTotalDurationMinutes float64
	MaxLegDurationMinutes   float64

	Matrix TravelMatrix
}

// OptimizerConfig is the static routing policy.
type OptimizerConfig struct {
	MaxDrops                   int
	RoadCorrectionFactor       float64
	AverageSpeedKmh            float64
	DefaultTrafficMultiplier   float64
	HeavyTrafficThreshold      float64
	TimeWindowPenaltyPerMinute float64
	// Clock that time windows are measured from when no departure is given.
	DefaultWindowStart domain.Clock
	CostPerKm          float64
	CostPerMinute      float64
	CongestionZones    []domain.Zone
	Vehicles           map[domain.VehicleType]domain.VehicleProfile
}

// NewOptimizerConfig derives the routing policy from the pricing config.
func NewOptimizerConfig(p config.PricingConfig) OptimizerConfig {
	vehicles := make(map[domain.VehicleType]domain.VehicleProfile, len(p.Vehicles))
	for _, v := range p.Vehicles {
		vehicles[v.Type] = v
	}

	return OptimizerConfig{
		MaxDrops:                   p.Routing.MaxDrops,
		RoadCorrectionFactor:       p.Routing.RoadCorrectionFactor,
		AverageSpeedKmh:            p.Routing.AverageSpeedKmh,
		DefaultTrafficMultiplier:   1.0,
		HeavyTrafficThreshold:      p.Surcharges.HeavyTrafficThreshold,
		TimeWindowPenaltyPerMinute: p.Routing.TimeWindowPenaltyPerMinute,
		DefaultWindowStart:         8 * 60,
		CostPerKm:                  p.PerKmRate,
		CostPerMinute:              p.PerMinuteRate,
		CongestionZones:            p.Zones(),
		Vehicles:                   vehicles,
	}
}

// RouteOptimizer orders drop-offs into a drivable sequence from a fixed
// pickup. It is pure and safe for concurrent use.
type RouteOptimizer struct {
	cfg OptimizerConfig
}

// NewRouteOptimizer returns an optimizer that uses cfg for every request.
func NewRouteOptimizer(cfg OptimizerConfig) *RouteOptimizer {
	return &RouteOptimizer{cfg: cfg}
}

// routeParams is the resolved per-request state shared by ordering and leg
// construction.
type routeParams struct {
	metric         func(legMetrics) float64
	startClock     float64
	timed          bool
	windows        bool
	loadingMinutes float64
	serviceMinutes float64
	matrix         TravelMatrix
}

// OptimizeRoute orders dropoffs starting from pickup and reports savings
// against visiting them in the requested order.
func (o *RouteOptimizer) OptimizeRoute(
	pickup domain.Waypoint,
	dropoffs []domain.Waypoint,
	vehicleType domain.VehicleType,
	opts OptimizeOptions,
) (*domain.OptimizedRoute, error) {
	if err := o.ValidateDropCount(len(dropoffs)); err != nil {
		return nil, err
	}

	profile, ok := o.cfg.Vehicles[vehicleType]
	if !ok {
		return nil, &domain.InvalidInputError{Field: "vehicle_type", Reason: fmt.Sprintf("unsupported vehicle type %q", vehicleType)}
	}

	points := make([]domain.Waypoint, 0, len(dropoffs)+1)
	points = append(points, pickup)
	points = append(points, dropoffs...)
	for i, p := range points {
		if !p.Coordinates.Valid() {
			return nil, &domain.GeocodingRequiredError{Position: i, Address: p.Address}
		}
	}

	params, err := o.params(profile, opts)
	if err != nil {
		return nil, err
	}

	direct := make([]int, len(points))
	for i := range direct {
		direct[i] = i
	}

	algorithm := domain.AlgorithmNearestNeighborTimeWindows
	order := direct
	if len(dropoffs) == 1 || opts.KeepOrder {
		algorithm = domain.AlgorithmDirect
	} else {
		order = o.nearestNeighborOrder(points, params)
	}

	legs := o.buildLegs(points, order, params)
	directLegs := legs
	if algorithm != domain.AlgorithmDirect {
		directLegs = o.buildLegs(points, direct, params)
	}

	totalDistance, totalDuration := sumLegs(legs)
	directDistance, directDuration := sumLegs(directLegs)

	var warnings []string
	const eps = 1e-9
	if totalDistance > directDistance+eps || totalDuration > directDuration+eps {
		warnings = append(warnings, "Optimized order is longer than the requested order on distance or time; savings reported as zero")
	}

	ordered := make([]domain.Waypoint, 0, len(order))
	for _, idx := range order {
		ordered = append(ordered, points[idx])
	}

	route := &domain.OptimizedRoute{
		VehicleType:          vehicleType,
		Waypoints:            ordered,
		Legs:                 legs,
		TotalStops:           len(ordered),
		TotalDistanceKm:      totalDistance,
		TotalDurationMinutes: totalDuration,
		Optimization: domain.Optimization{
			Algorithm:             algorithm,
			DistanceSavedKm:       math.Max(0, directDistance-totalDistance),
			TimeSavedMinutes:      math.Max(0, directDuration-totalDuration),
			DirectDistanceKm:      directDistance,
			DirectDurationMinutes: directDuration,
		},
	}
	route.Optimization.EfficiencyScore = efficiencyScore(route, params.windows)
	route.Warnings = append(warnings, o.routeWarnings(route, opts)...)
	route.Recommendations = o.routeRecommendations(route, profile)

	return route, nil
}

// ValidateDropCount enforces the 1..MaxDrops bound on dropoffs.
func (o *RouteOptimizer) ValidateDropCount(n int) error {
	if n < 1 || n > o.cfg.MaxDrops {
		return &domain.InvalidInputError{
			Field:  "dropoffs",
			Reason: fmt.Sprintf("must contain between 1 and %d stops, got %d", o.cfg.MaxDrops, n),
		}
	}
	return nil
}

func (o *RouteOptimizer) params(profile domain.VehicleProfile, opts OptimizeOptions) (routeParams, error) {
	optimizeFor := opts.OptimizeFor
	if optimizeFor == "" {
		optimizeFor = OptimizeCost
	}

	p := routeParams{
		startClock:     float64(o.cfg.DefaultWindowStart),
		windows:        !opts.IgnoreTimeWindows,
		loadingMinutes: profile.LoadingTimeMinutes,
		serviceMinutes: profile.UnloadingTimeMinutes,
		matrix:         opts.Matrix,
	}
	if opts.Departure != nil {
		p.startClock = float64(*opts.Departure)
		p.timed = true
	}

	switch optimizeFor {
	case OptimizeDistance:
		p.metric = func(m legMetrics) float64 { return m.distanceKm }
	case OptimizeTime:
		p.metric = func(m legMetrics) float64 { return m.durationMinutes }
	case OptimizeCost:
		perKm, perMinute := o.cfg.CostPerKm, o.cfg.CostPerMinute
		if perKm == 0 && perMinute == 0 {
			perKm = 1
		}
		// Normalized so one unit is the price of a kilometre, keeping the
		// time window penalty on a comparable scale.
		norm := math.Max(perKm, perMinute)
		p.metric = func(m legMetrics) float64 {
			return (m.distanceKm*perKm + m.durationMinutes*perMinute) / norm
		}
	default:
		return routeParams{}, &domain.InvalidInputError{Field: "preferences.optimize_for", Reason: fmt.Sprintf("unsupported value %q", optimizeFor)}
	}

	return p, nil
}

// buildLegs measures each leg along order and annotates it with access
// difficulty, congestion and time window outcome.
func (o *RouteOptimizer) buildLegs(points []domain.Waypoint, order []int, p routeParams) []domain.RouteLeg {
	legs := make([]domain.RouteLeg, 0, len(order)-1)
	clock := p.startClock + p.loadingMinutes

	for i := 1; i < len(order); i++ {
		from, to := order[i-1], order[i]
		m := o.measure(points, from, to, clock, p.timed, p.matrix)
		arrival := clock + m.durationMinutes
		dest := points[to]

		var late float64
		if p.windows {
			late = lateness(dest.TimeWindow, arrival)
		}

		legs = append(legs, domain.RouteLeg{
			LegIndex:               i - 1,
			From:                   points[from],
			To:                     dest,
			DistanceKm:             m.distanceKm,
			DurationMinutes:        m.durationMinutes,
			TrafficMultiplier:      m.trafficMultiplier,
			DifficultyScore:        dest.DifficultyScore(),
			CongestionZone:         o.inCongestionZone(dest.Coordinates),
			ArrivalClock:           domain.Clock(math.Round(arrival)),
			WindowViolationMinutes: late,
		})

		clock = serviceStart(dest.TimeWindow, arrival, p.windows) + p.serviceMinutes
	}

	return legs
}

func (o *RouteOptimizer) inCongestionZone(c domain.Coordinates) bool {
	for _, z := range o.cfg.CongestionZones {
		if z.Contains(c) {
			return true
		}
	}
	return false
}

// lateness is how long after the window closes the vehicle arrives.
// Arriving early is not late: the driver waits.
func lateness(w *domain.TimeWindow, arrival float64) float64 {
	if w == nil || w.Latest == nil {
		return 0
	}
	return math.Max(0, arrival-float64(*w.Latest))
}

// serviceStart is when unloading begins: on arrival, or when the window
// opens if the vehicle is early.
func serviceStart(w *domain.TimeWindow, arrival float64, windows bool) float64 {
	if windows && w != nil && w.Earliest != nil {
		return math.Max(arrival, float64(*w.Earliest))
	}
	return arrival
}

func sumLegs(legs []domain.RouteLeg) (distanceKm, durationMinutes float64) {
	for _, l := range legs {
		distanceKm += l.DistanceKm
		durationMinutes += l.DurationMinutes
	}
	return distanceKm, durationMinutes
}

// efficiencyScore blends distance and time efficiency against the direct
// order with the share of stops reached inside their time window.
func efficiencyScore(r *domain.OptimizedRoute, windows bool) int {
	distanceEff := ratioScore(r.Optimization.DirectDistanceKm, r.TotalDistanceKm)
	timeEff := ratioScore(r.Optimization.DirectDurationMinutes, r.TotalDurationMinutes)

	completion := 100.0
	if windows && len(r.Legs) > 0 {
		onTime := 0
		for _, l := range r.Legs {
			if l.WindowViolationMinutes == 0 {
				onTime++
			}
		}
		completion = float64(onTime) / float64(len(r.Legs)) * 100
	}

	score := 0.3*distanceEff + 0.3*timeEff + 0.4*completion
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Round(math.Min(100, math.Max(0, score))))
}

func ratioScore(direct, optimized float64) float64 {
	if optimized <= 0 || direct <= 0 {
		return 100
	}
	return math.Min(100, direct/optimized*100)
}

func (o *RouteOptimizer) routeWarnings(r *domain.OptimizedRoute, opts OptimizeOptions) []string {
	var warnings []string

	heavy, difficult := false, false
	for _, l := range r.Legs {
		if l.TrafficMultiplier > o.cfg.HeavyTrafficThreshold {
			heavy = true
		}
		if l.DifficultyScore > 8 {
			difficult = true
		}
	}
	if heavy {
		warnings = append(warnings, "Heavy traffic expected on some legs - consider alternative timing")
	}
	if difficult {
		warnings = append(warnings, "Difficult property access detected - extra time may be required")
	}
	if len(r.Legs) > 5 {
		warnings = append(warnings, "Many stops detected - consider splitting into multiple trips")
	}

	for _, l := range r.Legs {
		if l.WindowViolationMinutes > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"Arrival at %s (%s) misses its time window by %.0f minutes",
				l.To.Label(), l.ArrivalClock, math.Ceil(l.WindowViolationMinutes),
			))
		}
		if opts.MaxLegDurationMinutes > 0 && l.DurationMinutes > opts.MaxLegDurationMinutes {
			warnings = append(warnings, fmt.Sprintf(
				"Leg %d (%s) takes %.0f minutes, over the %.0f minute limit",
				l.LegIndex+1, l.Describe(), l.DurationMinutes, opts.MaxLegDurationMinutes,
			))
		}
	}

	if opts.MaxTotalDurationMinutes > 0 && r.TotalDurationMinutes > opts.MaxTotalDurationMinutes {
		warnings = append(warnings, fmt.Sprintf(
			"Route takes %.0f minutes, over the %.0f minute limit",
			r.TotalDurationMinutes, opts.MaxTotalDurationMinutes,
		))
	}

	return warnings
}

func (o *RouteOptimizer) routeRecommendations(r *domain.OptimizedRoute, profile domain.VehicleProfile) []string {
	var recs []string

	congestion, noParking, permit := false, false, false
	for _, l := range r.Legs {
		if l.CongestionZone {
			congestion = true
		}
		if p := l.To.Property; p != nil {
			if !p.HasParking {
				noParking = true
			}
			if p.RequiresPermit {
				permit = true
			}
		}
	}

	if congestion {
		recs = append(recs, "Consider scheduling outside congestion zone charging hours")
	}
	if noParking {
		recs = append(recs, "Pre-arrange parking permits for stops without dedicated parking")
	}
	if permit {
		recs = append(recs, "Apply for access permits before dispatch")
	}
	if r.TotalDistanceKm > 100 {
		recs = append(recs, "Long route detected - ensure adequate fuel/charging stops")
	}
	if profile.Type == domain.VehicleTruck && congestion {
		recs = append(recs, "A smaller vehicle may be easier to park inside the congestion zone")
	}

	return recs
}
