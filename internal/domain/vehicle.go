package domain

import (
	"fmt"
	"math"
	"strings"
)

type VehicleType string

const (
	VehicleVan    VehicleType = "van"
	VehicleTruck  VehicleType = "truck"
	VehiclePickup VehicleType = "pickup"
)

// VehicleTypes lists the supported vehicles in presentation order.
var VehicleTypes = []VehicleType{VehicleVan, VehicleTruck, VehiclePickup}

func ParseVehicleType(s string) (VehicleType, error) {
	switch v := VehicleType(strings.ToLower(strings.TrimSpace(s))); v {
	case VehicleVan, VehicleTruck, VehiclePickup:
		return v, nil
	case "":
		return VehicleVan, nil
	default:
		return "", &InvalidInputError{Field: "vehicle_type", Reason: fmt.Sprintf("unsupported vehicle type %q", s)}
	}
}

// Capacity and handling constraints of a vehicle class.
type VehicleProfile struct {
	Type                 VehicleType `yaml:"type" json:"type"`
	Name                 string      `yaml:"name" json:"name"`
	MaxVolumeM3          float64     `yaml:"max_volume_m3" json:"max_volume_m3"`
	MaxWeightKg          float64     `yaml:"max_weight_kg" json:"max_weight_kg"`
	MaxItems             int         `yaml:"max_items" json:"max_items"`
	LoadingTimeMinutes   float64     `yaml:"loading_time_minutes" json:"loading_time_minutes"`
	UnloadingTimeMinutes float64     `yaml:"unloading_time_minutes" json:"unloading_time_minutes"`
	CostMultiplier       float64     `yaml:"cost_multiplier" json:"cost_multiplier"`
}

// Validate enforces that every capacity field is positive and finite.
func (p VehicleProfile) Validate() error {
	switch {
	case !positive(p.MaxVolumeM3):
		return fmt.Errorf("vehicle %s: max_volume_m3 must be > 0", p.Type)
	case !positive(p.MaxWeightKg):
		return fmt.Errorf("vehicle %s: max_weight_kg must be > 0", p.Type)
	case p.MaxItems <= 0:
		return fmt.Errorf("vehicle %s: max_items must be > 0", p.Type)
	case !positive(p.LoadingTimeMinutes):
		return fmt.Errorf("vehicle %s: loading_time_minutes must be > 0", p.Type)
	case !positive(p.UnloadingTimeMinutes):
		return fmt.Errorf("vehicle %s: unloading_time_minutes must be > 0", p.Type)
	case !positive(p.CostMultiplier):
		return fmt.Errorf("vehicle %s: cost_multiplier must be > 0", p.Type)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Load tracks what a vehicle carries at a point along the route.
type Load struct {
	VolumeM3 float64
	WeightKg float64
	Items    int
}

func (l Load) Add(o Load) Load {
	return Load{VolumeM3: l.VolumeM3 + o.VolumeM3, WeightKg: l.WeightKg + o.WeightKg, Items: l.Items + o.Items}
}

func (l Load) Sub(o Load) Load {
	return Load{VolumeM3: l.VolumeM3 - o.VolumeM3, WeightKg: l.WeightKg - o.WeightKg, Items: l.Items - o.Items}
}

// loadEpsilon absorbs float residue left after unloading.
const loadEpsilon = 1e-9

func (l Load) IsEmpty() bool {
	return l.VolumeM3 <= loadEpsilon && l.WeightKg <= loadEpsilon && l.Items <= 0
}

// Fraction returns the load as a fraction of the profile's capacity in its
// most constrained dimension, along with that dimension's name.
func (p VehicleProfile) Fraction(l Load) (float64, string) {
	frac, dim := l.VolumeM3/p.MaxVolumeM3, "volume"
	if w := l.WeightKg / p.MaxWeightKg; w > frac {
		frac, dim = w, "weight"
	}
	if n := float64(l.Items) / float64(p.MaxItems); n > frac {
		frac, dim = n, "items"
	}
	if frac < 0 {
		return 0, dim
	}
	return frac, dim
}
