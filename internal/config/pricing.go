package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"multidrop-route-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// PricingConfig is the static pricing and routing policy. Monetary values
// are in pence.
type PricingConfig struct {
	Currency string  `yaml:"currency"`
	VATRate  float64 `yaml:"vat_rate"`

	BaseFeePerLeg       float64 `yaml:"base_fee_per_leg"`
	PerKmRate           float64 `yaml:"per_km_rate"`
	PerMinuteRate       float64 `yaml:"per_minute_rate"`
	DifficultyPointRate float64 `yaml:"difficulty_point_rate"`
	PerExtraStopRate    float64 `yaml:"per_extra_stop_rate"`

	PropertyAccess PropertyAccessRates `yaml:"property_access"`
	Surcharges     SurchargeRates      `yaml:"surcharges"`
	Discount       DiscountPolicy      `yaml:"discount"`
	Routing        RoutingPolicy       `yaml:"routing"`

	Vehicles        []domain.VehicleProfile `yaml:"vehicles"`
	CongestionZones []ZoneConfig            `yaml:"congestion_zones"`
}

type PropertyAccessRates struct {
	HighFloorNoLift              float64 `yaml:"high_floor_no_lift"`
	HighFloorThreshold           int     `yaml:"high_floor_threshold"`
	NoParking                    float64 `yaml:"no_parking"`
	MaxFreeParkingDistanceMeters float64 `yaml:"max_free_parking_distance_meters"`
	Permit                       float64 `yaml:"permit"`
}

type SurchargeRates struct {
	HeavyTraffic          float64 `yaml:"heavy_traffic"`
	HeavyTrafficThreshold float64 `yaml:"heavy_traffic_threshold"`
	CongestionZone        float64 `yaml:"congestion_zone"`
	FragileHandling       float64 `yaml:"fragile_handling"`
}

type DiscountPolicy struct {
	PerKmSaved            float64 `yaml:"per_km_saved"`
	PerMinuteSaved        float64 `yaml:"per_minute_saved"`
	HighEfficiencyBonus   float64 `yaml:"high_efficiency_bonus"`
	MediumEfficiencyBonus float64 `yaml:"medium_efficiency_bonus"`
	MaxFraction           float64 `yaml:"max_fraction"`
}

type RoutingPolicy struct {
	MaxDrops                   int     `yaml:"max_drops"`
	RoadCorrectionFactor       float64 `yaml:"road_correction_factor"`
	AverageSpeedKmh            float64 `yaml:"average_speed_kmh"`
	TimeWindowPenaltyPerMinute float64 `yaml:"time_window_penalty_per_minute"`
}

type ZoneConfig struct {
	Name     string  `yaml:"name"`
	Lat      float64 `yaml:"lat"`
	Lng      float64 `yaml:"lng"`
	RadiusKm float64 `yaml:"radius_km"`
}

// DefaultPricing returns the built-in GBP policy.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		Currency:            "GBP",
		VATRate:             0.20,
		BaseFeePerLeg:       2500,
		PerKmRate:           150,
		PerMinuteRate:       50,
		DifficultyPointRate: 1000,
		PerExtraStopRate:    2500,
		PropertyAccess: PropertyAccessRates{
			HighFloorNoLift:              1200,
			HighFloorThreshold:           3,
			NoParking:                    800,
			MaxFreeParkingDistanceMeters: 50,
			Permit:                       1500,
		},
		Surcharges: SurchargeRates{
			HeavyTraffic:          1000,
			HeavyTrafficThreshold: 1.5,
			CongestionZone:        1500,
			FragileHandling:       500,
		},
		Discount: DiscountPolicy{
			PerKmSaved:            50,
			PerMinuteSaved:        20,
			HighEfficiencyBonus:   1500,
			MediumEfficiencyBonus: 800,
			MaxFraction:           0.15,
		},
		Routing: RoutingPolicy{
			MaxDrops:                   8,
			RoadCorrectionFactor:       1.1,
			AverageSpeedKmh:            30,
			TimeWindowPenaltyPerMinute: 1.0,
		},
		Vehicles: []domain.VehicleProfile{
			{Type: domain.VehicleVan, Name: "Standard Van", MaxVolumeM3: 15, MaxWeightKg: 1000, MaxItems: 150, LoadingTimeMinutes: 5, UnloadingTimeMinutes: 5, CostMultiplier: 1.0},
			{Type: domain.VehicleTruck, Name: "Large Truck", MaxVolumeM3: 30, MaxWeightKg: 3500, MaxItems: 300, LoadingTimeMinutes: 10, UnloadingTimeMinutes: 10, CostMultiplier: 1.4},
			{Type: domain.VehiclePickup, Name: "Pickup Truck", MaxVolumeM3: 7.5, MaxWeightKg: 500, MaxItems: 75, LoadingTimeMinutes: 5, UnloadingTimeMinutes: 5, CostMultiplier: 0.8},
		},
		CongestionZones: []ZoneConfig{
			{Name: "London Congestion Charge", Lat: 51.5074, Lng: -0.1278, RadiusKm: 5},
		},
	}
}

// LoadPricing reads a YAML pricing file over the defaults.
// Unknown keys are rejected.
func LoadPricing(path string) (PricingConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return PricingConfig{}, fmt.Errorf("load pricing: read %q: %w", path, err)
	}
	return ParsePricing(data)
}

// ParsePricing decodes YAML pricing data over the defaults.
func ParsePricing(data []byte) (PricingConfig, error) {
	cfg := DefaultPricing()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return PricingConfig{}, fmt.Errorf("load pricing: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return PricingConfig{}, fmt.Errorf("load pricing: %w", err)
	}

	return cfg, nil
}

// Validate checks every rate and profile.
func (c PricingConfig) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"base_fee_per_leg", c.BaseFeePerLeg},
		{"per_km_rate", c.PerKmRate},
		{"per_minute_rate", c.PerMinuteRate},
		{"difficulty_point_rate", c.DifficultyPointRate},
		{"per_extra_stop_rate", c.PerExtraStopRate},
		{"property_access.high_floor_no_lift", c.PropertyAccess.HighFloorNoLift},
		{"property_access.no_parking", c.PropertyAccess.NoParking},
		{"property_access.max_free_parking_distance_meters", c.PropertyAccess.MaxFreeParkingDistanceMeters},
		{"property_access.permit", c.PropertyAccess.Permit},
		{"surcharges.heavy_traffic", c.Surcharges.HeavyTraffic},
		{"surcharges.congestion_zone", c.Surcharges.CongestionZone},
		{"surcharges.fragile_handling", c.Surcharges.FragileHandling},
		{"discount.per_km_saved", c.Discount.PerKmSaved},
		{"discount.per_minute_saved", c.Discount.PerMinuteSaved},
		{"discount.high_efficiency_bonus", c.Discount.HighEfficiencyBonus},
		{"discount.medium_efficiency_bonus", c.Discount.MediumEfficiencyBonus},
	}
	for _, r := range rates {
		if !finite(r.v) {
			return fmt.Errorf("%s must be a finite number", r.name)
		}
		if r.v < 0 {
			return fmt.Errorf("%s must not be negative", r.name)
		}
	}

	// NaN slips through every range check below.
	bounded := []struct {
		name string
		v    float64
	}{
		{"vat_rate", c.VATRate},
		{"discount.max_fraction", c.Discount.MaxFraction},
		{"surcharges.heavy_traffic_threshold", c.Surcharges.HeavyTrafficThreshold},
		{"routing.road_correction_factor", c.Routing.RoadCorrectionFactor},
		{"routing.average_speed_kmh", c.Routing.AverageSpeedKmh},
		{"routing.time_window_penalty_per_minute", c.Routing.TimeWindowPenaltyPerMinute},
	}
	for _, b := range bounded {
		if !finite(b.v) {
			return fmt.Errorf("%s must be a finite number", b.name)
		}
	}

	if c.VATRate < 0 || c.VATRate >= 1 {
		return errors.New("vat_rate must be in [0, 1)")
	}
	if c.Discount.MaxFraction < 0 || c.Discount.MaxFraction > 1 {
		return errors.New("discount.max_fraction must be in [0, 1]")
	}
	if c.Surcharges.HeavyTrafficThreshold < 1 {
		return errors.New("surcharges.heavy_traffic_threshold must be >= 1")
	}
	if c.Routing.MaxDrops < 1 {
		return errors.New("routing.max_drops must be >= 1")
	}
	if c.Routing.RoadCorrectionFactor < 1 {
		return errors.New("routing.road_correction_factor must be >= 1")
	}
	if c.Routing.AverageSpeedKmh <= 0 {
		return errors.New("routing.average_speed_kmh must be > 0")
	}
	if c.Routing.TimeWindowPenaltyPerMinute < 0 {
		return errors.New("routing.time_window_penalty_per_minute must not be negative")
	}

	if len(c.Vehicles) == 0 {
		return errors.New("at least one vehicle profile is required")
	}
	seen := make(map[domain.VehicleType]struct{}, len(c.Vehicles))
	for _, v := range c.Vehicles {
		if _, err := domain.ParseVehicleType(string(v.Type)); err != nil || v.Type == "" {
			return fmt.Errorf("vehicles: unsupported type %q", v.Type)
		}
		if _, dup := seen[v.Type]; dup {
			return fmt.Errorf("vehicles: duplicate profile %q", v.Type)
		}
		seen[v.Type] = struct{}{}
		if err := v.Validate(); err != nil {
			return err
		}
	}

	for _, z := range c.CongestionZones {
		if !finite(z.RadiusKm) || z.RadiusKm <= 0 {
			return fmt.Errorf("congestion zone %q: radius_km must be > 0", z.Name)
		}
		if !(domain.Coordinates{Lat: z.Lat, Lng: z.Lng}).Valid() {
			return fmt.Errorf("congestion zone %q: invalid center", z.Name)
		}
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Vehicle returns the profile for a vehicle type.
func (c PricingConfig) Vehicle(t domain.VehicleType) (domain.VehicleProfile, bool) {
	for _, v := range c.Vehicles {
		if v.Type == t {
			return v, true
		}
	}
	return domain.VehicleProfile{}, false
}

// Zones converts the configured congestion zones to domain values.
func (c PricingConfig) Zones() []domain.Zone {
	out := make([]domain.Zone, 0, len(c.CongestionZones))
	for _, z := range c.CongestionZones {
		out = append(out, domain.Zone{
			Name:     z.Name,
			Center:   domain.Coordinates{Lat: z.Lat, Lng: z.Lng},
			RadiusKm: z.RadiusKm,
		})
	}
	return out
}
