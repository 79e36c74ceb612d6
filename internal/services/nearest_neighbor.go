package services

import (
	"math"

	"multidrop-route-service/internal/domain"
)

// nearestNeighborOrder returns point indices visiting every dropoff once,
// starting from the pickup at index 0.
//
// The greedy step minimizes the configured leg metric plus a penalty for
// each minute the arrival would fall outside the candidate's time window.
// It does not attempt global route optimization. Candidates are compared
// with a strict < in request order, so ties keep the caller's order and
// identical inputs always yield the same route.
func (o *RouteOptimizer) nearestNeighborOrder(points []domain.Waypoint, p routeParams) []int {
	order := make([]int, 1, len(points))
	visited := make([]bool, len(points))
	visited[0] = true

	current := 0
	clock := p.startClock + p.loadingMinutes

	for len(order) < len(points) {
		best := -1
		bestScore := math.Inf(1)
		var bestArrival float64

		// Select next stop by minimum penalized metric (greedy step).
		for candidate := 1; candidate < len(points); candidate++ {
			if visited[candidate] {
				continue
			}

			m := o.measure(points, current, candidate, clock, p.timed, p.matrix)
			arrival := clock + m.durationMinutes

			score := p.metric(m)
			if p.windows {
				score += o.cfg.TimeWindowPenaltyPerMinute * points[candidate].TimeWindow.ViolationMinutes(arrival)
			}

			if score < bestScore {
				best, bestScore, bestArrival = candidate, score, arrival
			}
		}

		// NaN scores never compare lower; fall back to the first unvisited.
		if best < 0 {
			for candidate := 1; candidate < len(points); candidate++ {
				if !visited[candidate] {
					m := o.measure(points, current, candidate, clock, p.timed, p.matrix)
					best, bestArrival = candidate, clock+m.durationMinutes
					break
				}
			}
		}

		visited[best] = true
		order = append(order, best)
		clock = serviceStart(points[best].TimeWindow, bestArrival, p.windows) + p.serviceMinutes
		current = best
	}

	return order
}
