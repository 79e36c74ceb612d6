package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/platform/obs"
	"multidrop-route-service/internal/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultMatrixTimeout = 5 * time.Second
	matrixConcurrency    = 5
)

// QuoteRequest is a multi-drop quote request after transport decoding.
type QuoteRequest struct {
	Pickup      domain.Waypoint
	Dropoffs    []domain.Waypoint
	VehicleType domain.VehicleType
	Items       []domain.Item
	Options     OptimizeOptions
}

// QuoteService composes geocoding, travel lookups, optimization, pricing
// and analytics into a persisted quote. Every collaborator is optional.
type QuoteService struct {
	pricing   config.PricingConfig
	optimizer *RouteOptimizer
	engine    *LegCostEngine
	analytics *RouteAnalytics

	estimator     ports.TravelEstimator
	geocoder      ports.Geocoder
	repo          ports.QuoteRepository
	matrixTimeout time.Duration

	now   func() time.Time
	newID func() string
}

// QuoteOption configures a QuoteService.
type QuoteOption func(*QuoteService)

// WithTravelEstimator sets the source of live leg distances and durations.
func WithTravelEstimator(e ports.TravelEstimator) QuoteOption {
	return func(s *QuoteService) { s.estimator = e }
}

// WithGeocoder resolves waypoints that arrive without coordinates.
func WithGeocoder(g ports.Geocoder) QuoteOption {
	return func(s *QuoteService) { s.geocoder = g }
}

// WithQuoteRepository persists every quote the service produces.
func WithQuoteRepository(r ports.QuoteRepository) QuoteOption {
	return func(s *QuoteService) { s.repo = r }
}

// WithMatrixTimeout bounds how long travel lookups may take before the
// optimizer falls back to its own estimates.
func WithMatrixTimeout(d time.Duration) QuoteOption {
	return func(s *QuoteService) { s.matrixTimeout = d }
}

// WithClock overrides the quote timestamp source.
func WithClock(now func() time.Time) QuoteOption {
	return func(s *QuoteService) { s.now = now }
}

// WithIDGenerator overrides the quote id source.
func WithIDGenerator(newID func() string) QuoteOption {
	return func(s *QuoteService) { s.newID = newID }
}

// NewQuoteService wires the optimizer, cost engine and analytics for pricing.
func NewQuoteService(pricing config.PricingConfig, opts ...QuoteOption) *QuoteService {
	s := &QuoteService{
		pricing:       pricing,
		optimizer:     NewRouteOptimizer(NewOptimizerConfig(pricing)),
		engine:        NewLegCostEngine(),
		analytics:     NewRouteAnalytics(pricing.Vehicles, pricing.Surcharges.HeavyTrafficThreshold),
		matrixTimeout: defaultMatrixTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *QuoteService) Pricing() config.PricingConfig { return s.pricing }

// Quote optimizes, prices and summarizes a multi-drop request.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*domain.Quote, error) {
	if err := s.optimizer.ValidateDropCount(len(req.Dropoffs)); err != nil {
		return nil, err
	}

	points, err := s.resolveCoordinates(ctx, req.Pickup, req.Dropoffs)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Matrix == nil && s.estimator != nil {
		opts.Matrix = s.prefetchMatrix(ctx, points)
	}

	route, err := s.optimizer.OptimizeRoute(points[0], points[1:], req.VehicleType, opts)
	if err != nil {
		return nil, err
	}

	pricing, err := s.engine.PriceRoute(route, req.Items, s.pricing)
	if err != nil {
		return nil, err
	}

	q := &domain.Quote{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		Route:     route,
		Pricing:   pricing,
		Totals:    ComputeTotals(pricing, s.pricing.VATRate),
		Analytics: s.analytics.Summarize(route, pricing),
	}

	if s.repo != nil {
		if err := s.repo.SaveQuote(ctx, q); err != nil {
			return nil, fmt.Errorf("quote: save quote: %w", err)
		}
	}

	return q, nil
}

// GetQuote returns a previously stored quote.
func (s *QuoteService) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	if s.repo == nil {
		return nil, ports.ErrQuoteNotFound
	}
	q, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// ComputeTotals composes the final amounts. The discount is subtracted
// before VAT.
func ComputeTotals(p *domain.MultiDropPricing, vatRate float64) domain.QuoteTotals {
	t := domain.QuoteTotals{
		LegCosts:       p.LegCostSubtotal(),
		StopSurcharges: p.TotalStopSurcharge,
		Discount:       p.RouteOptimizationDiscount,
	}
	t.Subtotal = max(0, t.LegCosts+t.StopSurcharges-t.Discount)
	t.VAT = pence(decimal.NewFromInt(t.Subtotal).Mul(rate(vatRate)))
	t.Total = t.Subtotal + t.VAT
	return t
}

// resolveCoordinates returns the pickup followed by the dropoffs, geocoding
// any waypoint without usable coordinates. The inputs are not modified.
func (s *QuoteService) resolveCoordinates(ctx context.Context, pickup domain.Waypoint, dropoffs []domain.Waypoint) ([]domain.Waypoint, error) {
	points := make([]domain.Waypoint, 0, len(dropoffs)+1)
	points = append(points, pickup)
	points = append(points, dropoffs...)

	log := logging.FromContext(ctx)
	for i := range points {
		if points[i].Coordinates.Valid() {
			continue
		}

		address := strings.TrimSpace(points[i].Address)
		if s.geocoder == nil || address == "" {
			return nil, &domain.GeocodingRequiredError{Position: i, Address: points[i].Address}
		}

		c, err := s.geocoder.Geocode(ctx, address)
		if err != nil || !c.Valid() {
			log.Warn("geocoding failed",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.Int("position", i),
				zap.String("address", address),
				zap.Error(err),
			)
			return nil, &domain.GeocodingRequiredError{Position: i, Address: points[i].Address}
		}
		points[i].Coordinates = c
	}

	return points, nil
}

type matrixRow struct {
	origin    int
	estimates map[int]ports.TravelEstimate
	err       error
}

// prefetchMatrix looks up travel between every ordered pair of points.
// Any failure discards the matrix so the optimizer uses its own estimates.
func (s *QuoteService) prefetchMatrix(ctx context.Context, points []domain.Waypoint) (matrix TravelMatrix) {
	var err error
	defer obs.Time(ctx, "quote.prefetch_matrix")(&err)

	ctx, cancel := context.WithTimeout(ctx, s.matrixTimeout)
	defer cancel()

	rowEstimator, hasRow := s.estimator.(ports.TravelMatrixEstimator)

	sem := make(chan struct{}, matrixConcurrency)
	rowsCh := make(chan matrixRow, len(points))
	var wg sync.WaitGroup

	for origin := range points {
		targets := make([]int, 0, len(points)-1)
		for t := range points {
			if t != origin {
				targets = append(targets, t)
			}
		}

		wg.Add(1)
		go func(orig int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			row := make(map[int]ports.TravelEstimate, len(targets))
			if hasRow {
				dests := make([]domain.Coordinates, len(targets))
				for i, t := range targets {
					dests[i] = points[t].Coordinates
				}
				res, e := rowEstimator.EstimateRow(ctx, points[orig].Coordinates, dests)
				if e == nil && len(res) != len(targets) {
					e = fmt.Errorf("got %d estimates for %d destinations", len(res), len(targets))
				}
				if e != nil {
					rowsCh <- matrixRow{origin: orig, err: fmt.Errorf("prefetch matrix: row from point %d: %w", orig, e)}
					cancel()
					return
				}
				for i, t := range targets {
					row[t] = res[i]
				}
			} else {
				for _, t := range targets {
					r, e := s.estimator.EstimateTravel(ctx, points[orig].Coordinates, points[t].Coordinates)
					if e != nil {
						rowsCh <- matrixRow{origin: orig, err: fmt.Errorf("prefetch matrix: point %d to %d: %w", orig, t, e)}
						cancel()
						return
					}
					row[t] = r
				}
			}

			rowsCh <- matrixRow{origin: orig, estimates: row}
		}(origin)
	}

	wg.Wait()
	close(rowsCh)

	matrix = make(TravelMatrix, len(points)*(len(points)-1))
	for row := range rowsCh {
		if row.err != nil {
			if err == nil {
				err = row.err
			}
			continue
		}
		for t, est := range row.estimates {
			matrix[[2]int{row.origin, t}] = est
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("prefetch matrix: timed out after %s: %w", s.matrixTimeout, err)
		}
		return nil
	}
	return matrix
}
