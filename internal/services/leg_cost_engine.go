package services

import (
	"fmt"
	"math"
	"strings"

	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/domain"

	"github.com/shopspring/decimal"
)

// LegCostEngine prices an optimized route leg by leg. It is stateless and
// safe for concurrent use.
type LegCostEngine struct{}

// NewLegCostEngine returns a stateless engine. Rates come from the config
// passed to each call.
func NewLegCostEngine() *LegCostEngine {
	return &LegCostEngine{}
}

// PriceRoute itemizes every leg of route, adds the stop surcharge and
// optimization discount, and checks that items fit the vehicle throughout.
func (e *LegCostEngine) PriceRoute(route *domain.OptimizedRoute, items []domain.Item, cfg config.PricingConfig) (*domain.MultiDropPricing, error) {
	if route == nil || len(route.Legs) == 0 {
		return nil, &domain.InvalidInputError{Field: "route", Reason: "must contain at least one leg"}
	}

	profile, ok := cfg.Vehicle(route.VehicleType)
	if !ok {
		return nil, &domain.InvalidInputError{Field: "vehicle_type", Reason: fmt.Sprintf("unsupported vehicle type %q", route.VehicleType)}
	}

	walk, err := walkCapacity(route, items, profile)
	if err != nil {
		return nil, err
	}

	charges := make([]domain.LegCharge, 0, len(route.Legs))
	for i, leg := range route.Legs {
		charges = append(charges, priceLeg(leg, walk.fragileDrops[i], cfg))
	}

	pricing := &domain.MultiDropPricing{
		VehicleType:         route.VehicleType,
		PerLegCharges:       charges,
		TotalStopSurcharge:  pence(rate(cfg.PerExtraStopRate).Mul(decimal.NewFromInt(int64(max(0, route.TotalStops-2))))),
		CapacityUtilization: walk.utilization,
	}
	pricing.RouteOptimizationDiscount = optimizationDiscount(route, pricing.LegCostSubtotal(), cfg.Discount)

	return pricing, nil
}

func priceLeg(leg domain.RouteLeg, fragileItems int, cfg config.PricingConfig) domain.LegCharge {
	difficulty := leg.DifficultyScore
	if difficulty == 0 {
		difficulty = leg.To.DifficultyScore()
	}

	c := domain.LegCharge{
		LegIndex:          leg.LegIndex,
		BaseFee:           pence(rate(cfg.BaseFeePerLeg)),
		DistanceFee:       pence(rate(leg.DistanceKm).Mul(rate(cfg.PerKmRate))),
		TimeFee:           pence(rate(leg.DurationMinutes).Mul(rate(cfg.PerMinuteRate))),
		DifficultyFee:     pence(rate(cfg.DifficultyPointRate).Mul(decimal.NewFromInt(int64(max(0, difficulty-5))))),
		PropertyAccessFee: propertyAccessFee(leg.To.Property, cfg.PropertyAccess),
	}

	if leg.TrafficMultiplier > cfg.Surcharges.HeavyTrafficThreshold {
		c.Surcharges = append(c.Surcharges, domain.Surcharge{
			Type:        domain.SurchargeHeavyTraffic,
			Amount:      pence(rate(cfg.Surcharges.HeavyTraffic)),
			Description: fmt.Sprintf("Heavy traffic (x%.1f)", leg.TrafficMultiplier),
		})
	}
	if leg.CongestionZone {
		c.Surcharges = append(c.Surcharges, domain.Surcharge{
			Type:        domain.SurchargeCongestionZone,
			Amount:      pence(rate(cfg.Surcharges.CongestionZone)),
			Description: "Congestion zone charge",
		})
	}
	if fragileItems > 0 {
		c.Surcharges = append(c.Surcharges, domain.Surcharge{
			Type:        domain.SurchargeFragileHandling,
			Amount:      pence(rate(cfg.Surcharges.FragileHandling)),
			Description: fmt.Sprintf("Fragile handling (%d items)", fragileItems),
		})
	}

	return c
}

func propertyAccessFee(p *domain.PropertyDetails, rates config.PropertyAccessRates) int64 {
	if p == nil {
		return 0
	}

	fee := decimal.Zero
	if p.Floors > rates.HighFloorThreshold && !p.HasLift {
		fee = fee.Add(rate(rates.HighFloorNoLift))
	}
	if !p.HasParking || p.ParkingDistanceMeters > rates.MaxFreeParkingDistanceMeters {
		fee = fee.Add(rate(rates.NoParking))
	}
	if p.RequiresPermit {
		fee = fee.Add(rate(rates.Permit))
	}
	return pence(fee)
}

// optimizationDiscount rewards measured savings over the direct order.
// The result is a magnitude; callers subtract it.
func optimizationDiscount(route *domain.OptimizedRoute, legSubtotal int64, policy config.DiscountPolicy) int64 {
	opt := route.Optimization

	d := rate(math.Max(0, opt.DistanceSavedKm)).Mul(rate(policy.PerKmSaved)).
		Add(rate(math.Max(0, opt.TimeSavedMinutes)).Mul(rate(policy.PerMinuteSaved)))

	// Efficiency bonus only rewards a reordering that saved something.
	saved := opt.DistanceSavedKm > 0 || opt.TimeSavedMinutes > 0
	if len(route.Legs) > 1 && saved {
		switch {
		case opt.EfficiencyScore > 80:
			d = d.Add(rate(policy.HighEfficiencyBonus))
		case opt.EfficiencyScore > 60:
			d = d.Add(rate(policy.MediumEfficiencyBonus))
		}
	}

	limit := decimal.NewFromInt(legSubtotal).Mul(rate(policy.MaxFraction))
	if d.GreaterThan(limit) {
		d = limit
	}
	if d.IsNegative() {
		return 0
	}
	return pence(d)
}

// capacityWalk is the result of carrying items along the route.
type capacityWalk struct {
	utilization  domain.CapacityUtilization
	fragileDrops []int // fragile units unloaded per leg
}

// walkCapacity loads every item at the pickup and unloads each at its
// drop, measuring the load carried on every leg.
func walkCapacity(route *domain.OptimizedRoute, items []domain.Item, profile domain.VehicleProfile) (capacityWalk, error) {
	unloads := make([]domain.Load, len(route.Legs))
	fragile := make([]int, len(route.Legs))
	var carried domain.Load

	for i := range items {
		it := items[i]
		if err := it.Validate(); err != nil {
			return capacityWalk{}, err
		}

		leg, err := dropLeg(route, it)
		if err != nil {
			return capacityWalk{}, err
		}

		l := it.Load()
		carried = carried.Add(l)
		unloads[leg] = unloads[leg].Add(l)
		if it.Fragile {
			fragile[leg] += l.Items
		}
	}

	walk := capacityWalk{fragileDrops: fragile}
	u := &walk.utilization
	_, u.LimitingDimension = profile.Fraction(carried)

	var sum float64
	for i := range route.Legs {
		frac, dim := profile.Fraction(carried)
		if frac > 1.0 {
			return capacityWalk{}, &domain.CapacityExceededError{
				VehicleType: profile.Type,
				LegIndex:    i,
				Dimension:   dim,
				Load:        frac,
			}
		}
		if frac > u.MaximumLoad {
			u.MaximumLoad, u.LimitingDimension = frac, dim
		}
		if carried.IsEmpty() {
			u.EmptyLegs++
		}
		sum += frac

		carried = carried.Sub(unloads[i])
	}
	u.AverageLoad = sum / float64(len(route.Legs))

	return walk, nil
}

// dropLeg returns the index of the leg that ends at the item's drop.
func dropLeg(route *domain.OptimizedRoute, it domain.Item) (int, error) {
	target := strings.TrimSpace(it.DropoffAddress)
	if target == "" {
		return len(route.Legs) - 1, nil
	}
	for i, w := range route.Dropoffs() {
		if strings.EqualFold(strings.TrimSpace(w.Address), target) {
			return i, nil
		}
	}
	return 0, &domain.InvalidInputError{
		Field:  "items.dropoff_address",
		Reason: fmt.Sprintf("item %q: no dropoff matches %q", it.Name, it.DropoffAddress),
	}
}
