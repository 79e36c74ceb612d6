package dto

import "time"

type WaypointResponse struct {
	Address  string  `json:"address"`
	Postcode string  `json:"postcode,omitempty"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type LegResponse struct {
	LegIndex               int     `json:"leg_index"`
	From                   string  `json:"from"`
	To                     string  `json:"to"`
	DistanceKm             float64 `json:"distance_km"`
	DurationMinutes        float64 `json:"duration_minutes"`
	TrafficMultiplier      float64 `json:"traffic_multiplier"`
	DifficultyScore        int     `json:"difficulty_score"`
	CongestionZone         bool    `json:"congestion_zone"`
	ArrivalTime            string  `json:"arrival_time"`
	WindowViolationMinutes float64 `json:"window_violation_minutes,omitempty"`
}

type OptimizationResponse struct {
	Algorithm        string  `json:"algorithm"`
	EfficiencyScore  int     `json:"efficiency_score"`
	TimeSavedMinutes float64 `json:"time_saved_minutes"`
	DistanceSavedKm  float64 `json:"distance_saved_km"`
}

type RouteSummary struct {
	TotalStops      int    `json:"total_stops"`
	TotalDistance   string `json:"total_distance"`
	TotalDuration   string `json:"total_duration"`
	EfficiencyScore string `json:"efficiency_score"`
}

type RouteResponse struct {
	Waypoints            []WaypointResponse   `json:"waypoints"`
	Legs                 []LegResponse        `json:"legs"`
	TotalStops           int                  `json:"total_stops"`
	TotalDistanceKm      float64              `json:"total_distance_km"`
	TotalDurationMinutes float64              `json:"total_duration_minutes"`
	Optimization         OptimizationResponse `json:"optimization"`
	Summary              RouteSummary         `json:"summary"`
}

type SurchargeResponse struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type LegCostsResponse struct {
	Base           string              `json:"base"`
	Distance       string              `json:"distance"`
	Time           string              `json:"time"`
	Difficulty     string              `json:"difficulty"`
	PropertyAccess string              `json:"property_access"`
	Surcharges     []SurchargeResponse `json:"surcharges"`
	Total          string              `json:"total"`
}

type LegPricingResponse struct {
	LegIndex       int              `json:"leg_index"`
	LegDescription string           `json:"leg_description"`
	Costs          LegCostsResponse `json:"costs"`
}

type PricingBreakdownResponse struct {
	LegCosts                      int64  `json:"leg_costs"`
	LegCostsFormatted             string `json:"leg_costs_formatted"`
	StopSurcharges                int64  `json:"stop_surcharges"`
	StopSurchargesFormatted       string `json:"stop_surcharges_formatted"`
	OptimizationDiscount          int64  `json:"optimization_discount"`
	OptimizationDiscountFormatted string `json:"optimization_discount_formatted"`
}

type PricingResponse struct {
	TotalAmountPence     int64                    `json:"total_amount_pence"`
	TotalAmountFormatted string                   `json:"total_amount_formatted"`
	Subtotal             int64                    `json:"subtotal"`
	SubtotalFormatted    string                   `json:"subtotal_formatted"`
	VAT                  int64                    `json:"vat"`
	VATFormatted         string                   `json:"vat_formatted"`
	Breakdown            PricingBreakdownResponse `json:"breakdown"`
	PerLegDetails        []LegPricingResponse     `json:"per_leg_details"`
}

type CapacityResponse struct {
	MaximumLoad       float64 `json:"maximum_load"`
	AverageLoad       float64 `json:"average_load"`
	EmptyLegs         int     `json:"empty_legs"`
	LimitingDimension string  `json:"limiting_dimension"`
}

type LogisticsResponse struct {
	VehicleType         string           `json:"vehicle_type"`
	CapacityUtilization CapacityResponse `json:"capacity_utilization"`
	Recommendations     []string         `json:"recommendations"`
	Warnings            []string         `json:"warnings"`
}

type EfficiencyResponse struct {
	Score            int     `json:"score"`
	Rating           string  `json:"rating"`
	TimeSavedMinutes float64 `json:"time_saved_minutes"`
	DistanceSavedKm  float64 `json:"distance_saved_km"`
	CostSaving       string  `json:"cost_saving"`
}

type LogisticsInsightsResponse struct {
	AverageMinutesPerStop     float64 `json:"average_minutes_per_stop"`
	LongestLegDistanceKm      float64 `json:"longest_leg_distance_km"`
	LongestLegDurationMinutes float64 `json:"longest_leg_duration_minutes"`
	HeavyTrafficLegs          int     `json:"heavy_traffic_legs"`
}

type CostBreakdownResponse struct {
	BaseService float64 `json:"base_service_pct"`
	Distance    float64 `json:"distance_pct"`
	Time        float64 `json:"time_pct"`
	Access      float64 `json:"access_pct"`
	Surcharges  float64 `json:"surcharges_pct"`
}

// CostPerKm is null for a zero-distance route.
type CostInsightsResponse struct {
	CostPerKm        *string               `json:"cost_per_km"`
	CostPerExtraStop string                `json:"cost_per_extra_stop"`
	Breakdown        CostBreakdownResponse `json:"breakdown"`
}

type VehicleComparisonResponse struct {
	Type              string  `json:"type"`
	Name              string  `json:"name"`
	ProjectedLoad     float64 `json:"projected_load"`
	Suitability       string  `json:"suitability"`
	CostDifferencePct float64 `json:"cost_difference_pct"`
	Recommendation    string  `json:"recommendation"`
}

type AnalyticsResponse struct {
	Efficiency   EfficiencyResponse          `json:"efficiency"`
	Logistics    LogisticsInsightsResponse   `json:"logistics"`
	Cost         CostInsightsResponse        `json:"cost"`
	Alternatives []VehicleComparisonResponse `json:"alternative_vehicles"`
}

type MetadataResponse struct {
	CorrelationID    string    `json:"correlation_id,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	Timestamp        time.Time `json:"timestamp"`
	Algorithm        string    `json:"algorithm"`
	OptimizedFor     string    `json:"optimized_for,omitempty"`
}

type QuoteResponse struct {
	QuoteID   string            `json:"quote_id"`
	CreatedAt time.Time         `json:"created_at"`
	Route     RouteResponse     `json:"route"`
	Pricing   PricingResponse   `json:"pricing"`
	Logistics LogisticsResponse `json:"logistics"`
	Analytics AnalyticsResponse `json:"analytics"`
	Metadata  MetadataResponse  `json:"metadata"`
}
