package services

import (
	"math"

	"multidrop-route-service/internal/domain"

	"github.com/shopspring/decimal"
)

// RouteAnalytics derives the human-facing report for a priced route.
// It reads its inputs only and never fails.
type RouteAnalytics struct {
	vehicles              []domain.VehicleProfile
	heavyTrafficThreshold float64
}

func NewRouteAnalytics(vehicles []domain.VehicleProfile, heavyTrafficThreshold float64) *RouteAnalytics {
	return &RouteAnalytics{vehicles: vehicles, heavyTrafficThreshold: heavyTrafficThreshold}
}

func (a *RouteAnalytics) Summarize(route *domain.OptimizedRoute, pricing *domain.MultiDropPricing) domain.AnalyticsReport {
	opt := route.Optimization

	return domain.AnalyticsReport{
		Efficiency: domain.EfficiencyAnalytics{
			Score:            opt.EfficiencyScore,
			Rating:           domain.RateEfficiency(opt.EfficiencyScore),
			TimeSavedMinutes: opt.TimeSavedMinutes,
			DistanceSavedKm:  opt.DistanceSavedKm,
			CostSaving:       pricing.RouteOptimizationDiscount,
		},
		Logistics:    a.logistics(route),
		Cost:         costAnalytics(route, pricing),
		Alternatives: a.compareVehicles(route.VehicleType, pricing.CapacityUtilization),
	}
}

func (a *RouteAnalytics) logistics(route *domain.OptimizedRoute) domain.LogisticsAnalytics {
	var out domain.LogisticsAnalytics
	if route.TotalStops > 0 {
		out.AverageMinutesPerStop = math.Round(route.TotalDurationMinutes / float64(route.TotalStops))
	}
	for _, l := range route.Legs {
		out.LongestLegDistanceKm = math.Max(out.LongestLegDistanceKm, l.DistanceKm)
		out.LongestLegDurationMinutes = math.Max(out.LongestLegDurationMinutes, l.DurationMinutes)
		if l.TrafficMultiplier > a.heavyTrafficThreshold {
			out.HeavyTrafficLegs++
		}
	}
	return out
}

func costAnalytics(route *domain.OptimizedRoute, pricing *domain.MultiDropPricing) domain.CostAnalytics {
	var base, distance, timeFee, access, surcharges int64
	for _, c := range pricing.PerLegCharges {
		base += c.BaseFee
		distance += c.DistanceFee
		timeFee += c.TimeFee
		access += c.DifficultyFee + c.PropertyAccessFee
		surcharges += c.SurchargeTotal()
	}
	surcharges += pricing.TotalStopSurcharge
	total := base + distance + timeFee + access + surcharges

	out := domain.CostAnalytics{
		CostPerKm: domain.NoCostPerKm,
		CostPerExtraStop: pence(decimal.NewFromInt(pricing.TotalStopSurcharge).
			Div(decimal.NewFromInt(int64(max(1, route.TotalStops-2))))),
		Breakdown: domain.CostBreakdown{
			BaseServicePct: percentOf(base, total),
			DistancePct:    percentOf(distance, total),
			TimePct:        percentOf(timeFee, total),
			AccessPct:      percentOf(access, total),
			SurchargesPct:  percentOf(surcharges, total),
		},
	}
	if route.TotalDistanceKm > 0 {
		out.CostPerKm = pence(decimal.NewFromInt(distance).Div(rate(route.TotalDistanceKm)))
	}
	return out
}

// compareVehicles projects the route's peak load onto every configured
// vehicle using the dimension that limited the selected one.
func (a *RouteAnalytics) compareVehicles(selected domain.VehicleType, u domain.CapacityUtilization) []domain.VehicleComparison {
	var current domain.VehicleProfile
	for _, v := range a.vehicles {
		if v.Type == selected {
			current = v
		}
	}
	if current.Type == "" {
		return nil
	}

	out := make([]domain.VehicleComparison, 0, len(a.vehicles))
	for _, v := range a.vehicles {
		projected := u.MaximumLoad * capacityIn(current, u.LimitingDimension) / capacityIn(v, u.LimitingDimension)

		c := domain.VehicleComparison{
			Type:          v.Type,
			Name:          v.Name,
			ProjectedLoad: math.Round(projected*1000) / 1000,
			Suitability:   domain.Suitable,
		}
		fits := projected <= 1.0
		if !fits {
			c.Suitability = domain.TooSmall
		}

		switch {
		case v.Type == selected:
			c.Recommendation = domain.RecommendSelected
		case !fits:
			c.Recommendation = domain.RecommendInadequate
		case v.CostMultiplier < current.CostMultiplier:
			c.Recommendation = domain.RecommendConsider
		default:
			c.Recommendation = domain.RecommendAlternative
		}
		if v.Type != selected {
			c.CostDifferencePct = math.Round((v.CostMultiplier/current.CostMultiplier-1)*1000) / 10
		}

		out = append(out, c)
	}
	return out
}

func capacityIn(v domain.VehicleProfile, dimension string) float64 {
	switch dimension {
	case "weight":
		return v.MaxWeightKg
	case "items":
		return float64(v.MaxItems)
	default:
		return v.MaxVolumeM3
	}
}
