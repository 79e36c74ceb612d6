package dto

import (
	"fmt"
	"math"

	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/services"
)

// ToQuoteRequest validates the request shape and converts it to the
// service request. Semantic checks such as the drop limit stay in services.
func (req MultiDropRouteRequest) ToQuoteRequest() (services.QuoteRequest, error) {
	vehicle, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return services.QuoteRequest{}, err
	}

	pickup, err := toWaypoint(req.Pickup, "pickup")
	if err != nil {
		return services.QuoteRequest{}, err
	}

	dropoffs := make([]domain.Waypoint, 0, len(req.Dropoffs))
	for i, d := range req.Dropoffs {
		w, err := toWaypoint(d, fmt.Sprintf("dropoffs[%d]", i))
		if err != nil {
			return services.QuoteRequest{}, err
		}
		dropoffs = append(dropoffs, w)
	}

	items := make([]domain.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.Item{
			Name:           it.Name,
			WeightKg:       it.Weight,
			VolumeM3:       it.Volume,
			Quantity:       it.Quantity,
			Fragile:        it.Fragile,
			DropoffAddress: it.DropoffAddress,
		})
	}

	opts, err := toOptimizeOptions(req.Preferences, req.TimeConstraints)
	if err != nil {
		return services.QuoteRequest{}, err
	}

	return services.QuoteRequest{
		Pickup:      pickup,
		Dropoffs:    dropoffs,
		VehicleType: vehicle,
		Items:       items,
		Options:     opts,
	}, nil
}

func toWaypoint(w WaypointRequest, field string) (domain.Waypoint, error) {
	out := domain.Waypoint{
		Address:             w.Address,
		Postcode:            w.Postcode,
		SpecialRequirements: w.SpecialRequirements,
	}
	if w.Coordinates != nil {
		out.Coordinates = domain.Coordinates{Lat: w.Coordinates.Lat, Lng: w.Coordinates.Lng}
	}

	if p := w.PropertyDetails; p != nil {
		pt, err := domain.ParsePropertyType(p.Type)
		if err != nil {
			return domain.Waypoint{}, &domain.InvalidInputError{Field: field + ".property_details.type", Reason: err.Error()}
		}
		if p.Floors < 0 || p.ParkingDistanceMeters < 0 {
			return domain.Waypoint{}, &domain.InvalidInputError{Field: field + ".property_details", Reason: "floors and parking distance must be non-negative"}
		}
		out.Property = &domain.PropertyDetails{
			Type:                  pt,
			Floors:                p.Floors,
			HasLift:               p.HasLift,
			HasParking:            p.HasParking,
			ParkingDistanceMeters: p.ParkingDistanceMeters,
			NarrowAccess:          p.NarrowAccess,
			RequiresPermit:        p.RequiresPermit,
			AccessNotes:           p.AccessNotes,
		}
	}

	if tw := w.TimeWindow; tw != nil {
		window := &domain.TimeWindow{}
		bounds := []struct {
			name string
			in   string
			out  **domain.Clock
		}{
			{"earliest", tw.Earliest, &window.Earliest},
			{"latest", tw.Latest, &window.Latest},
			{"preferred", tw.Preferred, &window.Preferred},
		}
		for _, b := range bounds {
			if b.in == "" {
				continue
			}
			c, err := domain.ParseClock(b.in)
			if err != nil {
				return domain.Waypoint{}, &domain.InvalidInputError{Field: field + ".time_window." + b.name, Reason: err.Error()}
			}
			*b.out = &c
		}
		if window.Earliest != nil && window.Latest != nil && *window.Earliest > *window.Latest {
			return domain.Waypoint{}, &domain.InvalidInputError{Field: field + ".time_window", Reason: "earliest must not be after latest"}
		}
		out.TimeWindow = window
	}

	return out, nil
}

func toOptimizeOptions(p *PreferencesRequest, tc *TimeConstraintsRequest) (services.OptimizeOptions, error) {
	var opts services.OptimizeOptions

	var optimizeFor string
	if p != nil {
		optimizeFor = p.OptimizeFor
		opts.KeepOrder = p.AllowReordering != nil && !*p.AllowReordering
		opts.IgnoreTimeWindows = p.RespectTimeWindows != nil && !*p.RespectTimeWindows
	}
	of, err := services.ParseOptimizeFor(optimizeFor)
	if err != nil {
		return services.OptimizeOptions{}, err
	}
	opts.OptimizeFor = of

	if tc == nil {
		return opts, nil
	}
	if tc.DepartureTime != "" {
		c, err := domain.ParseClock(tc.DepartureTime)
		if err != nil {
			return services.OptimizeOptions{}, &domain.InvalidInputError{Field: "time_constraints.departure_time", Reason: err.Error()}
		}
		opts.Departure = &c
	}
	if tc.MaxTotalDuration < 0 || tc.MaxLegDuration < 0 {
		return services.OptimizeOptions{}, &domain.InvalidInputError{Field: "time_constraints", Reason: "durations must be non-negative"}
	}
	opts.MaxTotalDurationMinutes = tc.MaxTotalDuration
	opts.MaxLegDurationMinutes = tc.MaxLegDuration

	return opts, nil
}

// NewQuoteResponse renders a quote for clients. Money is reported in pence
// alongside GBP strings.
func NewQuoteResponse(q *domain.Quote, meta MetadataResponse) QuoteResponse {
	route := q.Route
	opt := route.Optimization

	meta.Algorithm = string(opt.Algorithm)
	return QuoteResponse{
		QuoteID:   q.ID,
		CreatedAt: q.CreatedAt,
		Route: RouteResponse{
			Waypoints:            toWaypointResponses(route.Waypoints),
			Legs:                 toLegResponses(route.Legs),
			TotalStops:           route.TotalStops,
			TotalDistanceKm:      round(route.TotalDistanceKm, 2),
			TotalDurationMinutes: math.Round(route.TotalDurationMinutes),
			Optimization: OptimizationResponse{
				Algorithm:        string(opt.Algorithm),
				EfficiencyScore:  opt.EfficiencyScore,
				TimeSavedMinutes: math.Round(opt.TimeSavedMinutes),
				DistanceSavedKm:  round(opt.DistanceSavedKm, 2),
			},
			Summary: RouteSummary{
				TotalStops:      route.TotalStops,
				TotalDistance:   fmt.Sprintf("%.1f km", route.TotalDistanceKm),
				TotalDuration:   fmt.Sprintf("%.0f minutes", math.Round(route.TotalDurationMinutes)),
				EfficiencyScore: fmt.Sprintf("%d/100", opt.EfficiencyScore),
			},
		},
		Pricing:   toPricingResponse(q),
		Logistics: toLogisticsResponse(q),
		Analytics: toAnalyticsResponse(q.Analytics),
		Metadata:  meta,
	}
}

func toWaypointResponses(ws []domain.Waypoint) []WaypointResponse {
	out := make([]WaypointResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, WaypointResponse{
			Address:  w.Label(),
			Postcode: w.Postcode,
			Lat:      w.Coordinates.Lat,
			Lng:      w.Coordinates.Lng,
		})
	}
	return out
}

func toLegResponses(legs []domain.RouteLeg) []LegResponse {
	out := make([]LegResponse, 0, len(legs))
	for _, l := range legs {
		out = append(out, LegResponse{
			LegIndex:               l.LegIndex,
			From:                   l.From.Label(),
			To:                     l.To.Label(),
			DistanceKm:             round(l.DistanceKm, 2),
			DurationMinutes:        round(l.DurationMinutes, 1),
			TrafficMultiplier:      l.TrafficMultiplier,
			DifficultyScore:        l.DifficultyScore,
			CongestionZone:         l.CongestionZone,
			ArrivalTime:            l.ArrivalClock.String(),
			WindowViolationMinutes: math.Round(l.WindowViolationMinutes),
		})
	}
	return out
}

func toPricingResponse(q *domain.Quote) PricingResponse {
	t := q.Totals

	legs := make([]LegPricingResponse, 0, len(q.Pricing.PerLegCharges))
	for i, c := range q.Pricing.PerLegCharges {
		desc := fmt.Sprintf("Leg %d", c.LegIndex+1)
		if i < len(q.Route.Legs) {
			desc = q.Route.Legs[i].Describe()
		}

		surcharges := make([]SurchargeResponse, 0, len(c.Surcharges))
		for _, s := range c.Surcharges {
			surcharges = append(surcharges, SurchargeResponse{
				Type:        string(s.Type),
				Amount:      services.FormatGBP(s.Amount),
				Description: s.Description,
			})
		}

		legs = append(legs, LegPricingResponse{
			LegIndex:       c.LegIndex,
			LegDescription: desc,
			Costs: LegCostsResponse{
				Base:           services.FormatGBP(c.BaseFee),
				Distance:       services.FormatGBP(c.DistanceFee),
				Time:           services.FormatGBP(c.TimeFee),
				Difficulty:     services.FormatGBP(c.DifficultyFee),
				PropertyAccess: services.FormatGBP(c.PropertyAccessFee),
				Surcharges:     surcharges,
				Total:          services.FormatGBP(c.Total()),
			},
		})
	}

	return PricingResponse{
		TotalAmountPence:     t.Total,
		TotalAmountFormatted: services.FormatGBP(t.Total),
		Subtotal:             t.Subtotal,
		SubtotalFormatted:    services.FormatGBP(t.Subtotal),
		VAT:                  t.VAT,
		VATFormatted:         services.FormatGBP(t.VAT),
		Breakdown: PricingBreakdownResponse{
			LegCosts:                      t.LegCosts,
			LegCostsFormatted:             services.FormatGBP(t.LegCosts),
			StopSurcharges:                t.StopSurcharges,
			StopSurchargesFormatted:       services.FormatGBP(t.StopSurcharges),
			OptimizationDiscount:          t.Discount,
			OptimizationDiscountFormatted: services.FormatGBP(t.Discount),
		},
		PerLegDetails: legs,
	}
}

func toLogisticsResponse(q *domain.Quote) LogisticsResponse {
	u := q.Pricing.CapacityUtilization
	return LogisticsResponse{
		VehicleType: string(q.Route.VehicleType),
		CapacityUtilization: CapacityResponse{
			MaximumLoad:       round(u.MaximumLoad, 3),
			AverageLoad:       round(u.AverageLoad, 3),
			EmptyLegs:         u.EmptyLegs,
			LimitingDimension: u.LimitingDimension,
		},
		Recommendations: nonNil(q.Route.Recommendations),
		Warnings:        nonNil(q.Route.Warnings),
	}
}

func toAnalyticsResponse(a domain.AnalyticsReport) AnalyticsResponse {
	var costPerKm *string
	if a.Cost.CostPerKm != domain.NoCostPerKm {
		s := services.FormatGBP(a.Cost.CostPerKm)
		costPerKm = &s
	}

	alts := make([]VehicleComparisonResponse, 0, len(a.Alternatives))
	for _, v := range a.Alternatives {
		alts = append(alts, VehicleComparisonResponse{
			Type:              string(v.Type),
			Name:              v.Name,
			ProjectedLoad:     v.ProjectedLoad,
			Suitability:       string(v.Suitability),
			CostDifferencePct: v.CostDifferencePct,
			Recommendation:    string(v.Recommendation),
		})
	}

	return AnalyticsResponse{
		Efficiency: EfficiencyResponse{
			Score:            a.Efficiency.Score,
			Rating:           string(a.Efficiency.Rating),
			TimeSavedMinutes: math.Round(a.Efficiency.TimeSavedMinutes),
			DistanceSavedKm:  round(a.Efficiency.DistanceSavedKm, 2),
			CostSaving:       services.FormatGBP(a.Efficiency.CostSaving),
		},
		Logistics: LogisticsInsightsResponse{
			AverageMinutesPerStop:     a.Logistics.AverageMinutesPerStop,
			LongestLegDistanceKm:      round(a.Logistics.LongestLegDistanceKm, 2),
			LongestLegDurationMinutes: math.Round(a.Logistics.LongestLegDurationMinutes),
			HeavyTrafficLegs:          a.Logistics.HeavyTrafficLegs,
		},
		Cost: CostInsightsResponse{
			CostPerKm:        costPerKm,
			CostPerExtraStop: services.FormatGBP(a.Cost.CostPerExtraStop),
			Breakdown: CostBreakdownResponse{
				BaseService: a.Cost.Breakdown.BaseServicePct,
				Distance:    a.Cost.Breakdown.DistancePct,
				Time:        a.Cost.Breakdown.TimePct,
				Access:      a.Cost.Breakdown.AccessPct,
				Surcharges:  a.Cost.Breakdown.SurchargesPct,
			},
		},
		Alternatives: alts,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
