package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type PropertyType string

const (
	PropertyHouse     PropertyType = "house"
	PropertyApartment PropertyType = "apartment"
	PropertyOffice    PropertyType = "office"
	PropertyWarehouse PropertyType = "warehouse"
	PropertyOther     PropertyType = "other"
)

func ParsePropertyType(s string) (PropertyType, error) {
	switch t := PropertyType(strings.ToLower(strings.TrimSpace(s))); t {
	case PropertyHouse, PropertyApartment, PropertyOffice, PropertyWarehouse, PropertyOther:
		return t, nil
	case "":
		return PropertyOther, nil
	default:
		return "", fmt.Errorf("unknown property type %q", s)
	}
}

// Access attributes of the property at a stop.
type PropertyDetails struct {
	Type                  PropertyType
	Floors                int
	HasLift               bool
	HasParking            bool
	ParkingDistanceMeters float64
	NarrowAccess          bool
	RequiresPermit        bool
	AccessNotes           string
}

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse clock %q: invalid hour", s)
	}

	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: invalid minute", s)
	}

	return Clock(h*60 + m), nil
}

func (c Clock) Hour() int { return (int(c) / 60) % 24 }

func (c Clock) String() string {
	m := ((int(c) % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Delivery time window for a stop. Nil bounds are open.
type TimeWindow struct {
	Earliest  *Clock
	Latest    *Clock
	Preferred *Clock
}

// ViolationMinutes returns how far outside the window an arrival falls.
func (w *TimeWindow) ViolationMinutes(arrival float64) float64 {
	if w == nil {
		return 0
	}
	if w.Earliest != nil && arrival < float64(*w.Earliest) {
		return float64(*w.Earliest) - arrival
	}
	if w.Latest != nil && arrival > float64(*w.Latest) {
		return arrival - float64(*w.Latest)
	}
	return 0
}

// Represents a geographic stop. The pickup is a Waypoint that always
// occupies position 0 of a route.
type Waypoint struct {
	Address             string
	Postcode            string
	Coordinates         Coordinates
	Property            *PropertyDetails
	TimeWindow          *TimeWindow
	SpecialRequirements []string
}

// Label returns a human readable name for the waypoint.
func (w Waypoint) Label() string {
	if s := strings.TrimSpace(w.Address); s != "" {
		return s
	}
	return fmt.Sprintf("(%.5f, %.5f)", w.Coordinates.Lat, w.Coordinates.Lng)
}

// DifficultyScore rates access difficulty at the waypoint on a 5..10 scale.
// A waypoint without property details scores the neutral 5.
func (w Waypoint) DifficultyScore() int {
	score := 5
	p := w.Property
	if p == nil {
		return score
	}

	if p.Type == PropertyApartment && p.Floors > 2 {
		score += 2
	}
	if p.Floors > 3 && !p.HasLift {
		score += 3
	}
	if !p.HasParking {
		score++
	}
	if p.NarrowAccess {
		score++
	}

	return min(score, 10)
}
