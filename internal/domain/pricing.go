package domain

type SurchargeType string

const (
	SurchargeHeavyTraffic    SurchargeType = "heavy_traffic"
	SurchargeCongestionZone  SurchargeType = "congestion_zone"
	SurchargeFragileHandling SurchargeType = "fragile_handling"
)

// An itemized leg adjustment. Amount is in pence and never negative.
type Surcharge struct {
	Type        SurchargeType
	Amount      int64
	Description string
}

// Per-leg charge breakdown in pence, before VAT.
type LegCharge struct {
	LegIndex          int
	BaseFee           int64
	DistanceFee       int64
	TimeFee           int64
	DifficultyFee     int64
	PropertyAccessFee int64
	Surcharges        []Surcharge
}

func (c LegCharge) SurchargeTotal() int64 {
	var sum int64
	for _, s := range c.Surcharges {
		sum += s.Amount
	}
	return sum
}

// Total is the fully-loaded leg cost: the exact sum of every fee and
// surcharge on the leg.
func (c LegCharge) Total() int64 {
	return c.BaseFee + c.DistanceFee + c.TimeFee + c.DifficultyFee + c.PropertyAccessFee + c.SurchargeTotal()
}

// Load fractions along the route. MaximumLoad never exceeds 1.0.
type CapacityUtilization struct {
	MaximumLoad       float64
	AverageLoad       float64
	EmptyLegs         int
	LimitingDimension string
}

// Aggregate pricing for an optimized route.
// RouteOptimizationDiscount is a non-negative magnitude that is always
// subtracted when composing totals.
type MultiDropPricing struct {
	VehicleType               VehicleType
	PerLegCharges             []LegCharge
	TotalStopSurcharge        int64
	RouteOptimizationDiscount int64
	CapacityUtilization       CapacityUtilization
}

// LegCostSubtotal sums every leg's total.
func (p *MultiDropPricing) LegCostSubtotal() int64 {
	var sum int64
	for _, c := range p.PerLegCharges {
		sum += c.Total()
	}
	return sum
}
