package domain

import "time"

// Final amounts of a quote in pence.
// Subtotal = LegCosts + StopSurcharges - Discount; Total = Subtotal + VAT.
type QuoteTotals struct {
	LegCosts       int64
	StopSurcharges int64
	Discount       int64
	Subtotal       int64
	VAT            int64
	Total          int64
}

// A priced multi-drop route as returned to callers and persisted.
type Quote struct {
	ID        string
	CreatedAt time.Time
	Route     *OptimizedRoute
	Pricing   *MultiDropPricing
	Totals    QuoteTotals
	Analytics AnalyticsReport
}

type EfficiencyRating string

const (
	RatingExcellent EfficiencyRating = "Excellent"
	RatingGood      EfficiencyRating = "Good"
	RatingFair      EfficiencyRating = "Fair"
	RatingPoor      EfficiencyRating = "Poor"
)

// RateEfficiency bands an efficiency score.
func RateEfficiency(score int) EfficiencyRating {
	switch {
	case score > 80:
		return RatingExcellent
	case score > 60:
		return RatingGood
	case score > 40:
		return RatingFair
	default:
		return RatingPoor
	}
}

// NoCostPerKm marks cost-per-km as undefined for a zero-distance route.
const NoCostPerKm int64 = -1

type EfficiencyAnalytics struct {
	Score            int
	Rating           EfficiencyRating
	TimeSavedMinutes float64
	DistanceSavedKm  float64
	CostSaving       int64
}

type LogisticsAnalytics struct {
	AverageMinutesPerStop     float64
	LongestLegDistanceKm      float64
	LongestLegDurationMinutes float64
	HeavyTrafficLegs          int
}

// Percentages of the pre-discount charge total. Each is 0 when the total
// is 0.
type CostBreakdown struct {
	BaseServicePct float64
	DistancePct    float64
	TimePct        float64
	AccessPct      float64
	SurchargesPct  float64
}

type CostAnalytics struct {
	CostPerKm        int64
	CostPerExtraStop int64
	Breakdown        CostBreakdown
}

type VehicleSuitability string

const (
	Suitable VehicleSuitability = "Suitable"
	TooSmall VehicleSuitability = "Too Small"
)

type VehicleRecommendation string

const (
	RecommendSelected    VehicleRecommendation = "Selected"
	RecommendConsider    VehicleRecommendation = "Consider"
	RecommendAlternative VehicleRecommendation = "Alternative"
	RecommendInadequate  VehicleRecommendation = "Inadequate"
)

type VehicleComparison struct {
	Type              VehicleType
	Name              string
	ProjectedLoad     float64
	Suitability       VehicleSuitability
	CostDifferencePct float64
	Recommendation    VehicleRecommendation
}

// Human-facing view derived from a route and its pricing.
type AnalyticsReport struct {
	Efficiency   EfficiencyAnalytics
	Logistics    LogisticsAnalytics
	Cost         CostAnalytics
	Alternatives []VehicleComparison
}
