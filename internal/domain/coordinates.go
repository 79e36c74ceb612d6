package domain

import "math"

const earthRadiusKm = 6371.0

// Immutable geographic coordinates in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinates can be routed through.
// Non-finite values, out-of-range degrees and the exact (0,0) pair are
// treated as a missing geocode.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return false
	}
	return !(c.Lat == 0 && c.Lng == 0)
}

// IsZero reports whether no coordinates were supplied at all.
func (c Coordinates) IsZero() bool { return c.Lat == 0 && c.Lng == 0 }

// Return coordinates as [lng, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }

// HaversineKm returns the great-circle distance to other in kilometres.
func (c Coordinates) HaversineKm(other Coordinates) float64 {
	dLat := degToRad(other.Lat - c.Lat)
	dLng := degToRad(other.Lng - c.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(c.Lat))*math.Cos(degToRad(other.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

// Zone is a circular area such as a congestion charging zone.
type Zone struct {
	Name     string
	Center   Coordinates
	RadiusKm float64
}

// Contains reports whether c lies inside the zone.
func (z Zone) Contains(c Coordinates) bool {
	return z.Center.HaversineKm(c) < z.RadiusKm
}
