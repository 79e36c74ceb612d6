package services

import (
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/ports"
)

// TravelMatrix holds prefetched estimates between the points of a request,
// indexed with the pickup at 0 and dropoffs in request order. Pairs that
// are missing fall back to the optimizer's own estimate.
type TravelMatrix map[[2]int]ports.TravelEstimate

func (m TravelMatrix) lookup(from, to int) (ports.TravelEstimate, bool) {
	if m == nil {
		return ports.TravelEstimate{}, false
	}
	e, ok := m[[2]int{from, to}]
	return e, ok
}

// legMetrics is the measured cost of travelling between two points.
type legMetrics struct {
	distanceKm        float64
	durationMinutes   float64
	trafficMultiplier float64
}

// trafficForHour is the deterministic time-of-day traffic model used when
// no live traffic is available.
func trafficForHour(hour int) float64 {
	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		return 1.8
	case hour >= 10 && hour <= 16:
		return 1.2
	default:
		return 1.0
	}
}

// measure estimates the leg between points[from] and points[to] when the
// vehicle leaves points[from] at clock (minutes since midnight).
func (o *RouteOptimizer) measure(points []domain.Waypoint, from, to int, clock float64, timed bool, m TravelMatrix) legMetrics {
	traffic := o.cfg.DefaultTrafficMultiplier
	if timed {
		traffic = trafficForHour(domain.Clock(clock).Hour())
	}

	est, ok := m.lookup(from, to)
	reported := ok && est.TrafficMultiplier >= 1
	if reported {
		traffic = est.TrafficMultiplier
	}

	distance := points[from].Coordinates.HaversineKm(points[to].Coordinates) * o.cfg.RoadCorrectionFactor
	if ok && est.DistanceKm >= 0 {
		distance = est.DistanceKm
	}

	// Speed drops in proportion to traffic.
	duration := distance / (o.cfg.AverageSpeedKmh / traffic) * 60
	if ok && est.DurationMinutes > 0 {
		// Provider durations are free-flow unless it reports traffic itself.
		duration = est.DurationMinutes
		if !reported {
			duration *= traffic
		}
	}

	return legMetrics{
		distanceKm:        distance,
		durationMinutes:   duration,
		trafficMultiplier: traffic,
	}
}
