package distance

import (
	"context"
	"fmt"
	"sync"

	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Km       float64
	Minutes  float64
}

// MockTravelEstimator serves fixed estimates for known pairs and counts
// lookups. Unknown pairs fail.
type MockTravelEstimator struct {
	m   map[string]ports.TravelEstimate
	err error

	mu    sync.Mutex
	calls int
}

func NewMockTravelEstimator(pairs []MockPair) *MockTravelEstimator {
	m := make(map[string]ports.TravelEstimate, len(pairs))
	for _, p := range pairs {
		m[ports.TravelKey(p.From, p.To)] = ports.TravelEstimate{DistanceKm: p.Km, DurationMinutes: p.Minutes}
	}
	return &MockTravelEstimator{m: m}
}

// FailWith makes every lookup return err.
func (p *MockTravelEstimator) FailWith(err error) *MockTravelEstimator {
	p.err = err
	return p
}

func (p *MockTravelEstimator) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *MockTravelEstimator) EstimateTravel(ctx context.Context, from, to domain.Coordinates) (ports.TravelEstimate, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.TravelEstimate{}, err
	}
	if p.err != nil {
		return ports.TravelEstimate{}, p.err
	}

	r, ok := p.m[ports.TravelKey(from, to)]
	if !ok {
		return ports.TravelEstimate{}, fmt.Errorf("missing pair %v -> %v", from, to)
	}
	return r, nil
}
