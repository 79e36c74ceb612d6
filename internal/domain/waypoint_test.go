package domain

import (
	"math"
	"testing"
)

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinates
		want bool
	}{
		{"london", Coordinates{Lat: 51.5045, Lng: -0.0865}, true},
		{"equator only", Coordinates{Lat: 0, Lng: 32.5}, true},
		{"null island", Coordinates{}, false},
		{"nan", Coordinates{Lat: math.NaN(), Lng: 1}, false},
		{"inf", Coordinates{Lat: 1, Lng: math.Inf(1)}, false},
		{"out of range", Coordinates{Lat: 91, Lng: 1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHaversineKm(t *testing.T) {
	londonBridge := Coordinates{Lat: 51.5045, Lng: -0.0865}
	canaryWharf := Coordinates{Lat: 51.5054, Lng: -0.0235}

	d := londonBridge.HaversineKm(canaryWharf)
	if d < 4.3 || d > 4.45 {
		t.Fatalf("distance = %.3f km, want ~4.37", d)
	}
	if back := canaryWharf.HaversineKm(londonBridge); math.Abs(back-d) > 1e-9 {
		t.Errorf("haversine not symmetric: %v vs %v", d, back)
	}
	if londonBridge.HaversineKm(londonBridge) != 0 {
		t.Errorf("distance to self must be 0")
	}
}

func TestWaypointDifficultyScore(t *testing.T) {
	plain := Waypoint{Address: "no details"}
	if got := plain.DifficultyScore(); got != 5 {
		t.Errorf("score without details = %d, want 5", got)
	}

	tower := Waypoint{Property: &PropertyDetails{
		Type:         PropertyApartment,
		Floors:       6,
		HasLift:      false,
		HasParking:   false,
		NarrowAccess: true,
	}}
	if got := tower.DifficultyScore(); got != 10 {
		t.Errorf("score for walk-up tower = %d, want capped 10", got)
	}

	office := Waypoint{Property: &PropertyDetails{Type: PropertyOffice, Floors: 2, HasLift: true, HasParking: true}}
	if got := office.DifficultyScore(); got != 5 {
		t.Errorf("score for easy office = %d, want 5", got)
	}
}

func TestTimeWindowViolation(t *testing.T) {
	earliest, _ := ParseClock("09:00")
	latest, _ := ParseClock("10:30")
	w := &TimeWindow{Earliest: &earliest, Latest: &latest}

	if v := w.ViolationMinutes(8*60 + 30); v != 30 {
		t.Errorf("early violation = %v, want 30", v)
	}
	if v := w.ViolationMinutes(10 * 60); v != 0 {
		t.Errorf("in-window violation = %v, want 0", v)
	}
	if v := w.ViolationMinutes(11 * 60); v != 30 {
		t.Errorf("late violation = %v, want 30", v)
	}

	var none *TimeWindow
	if v := none.ViolationMinutes(0); v != 0 {
		t.Errorf("nil window violation = %v, want 0", v)
	}

	if _, err := ParseClock("25:00"); err == nil {
		t.Errorf("expected error for invalid hour")
	}
	if c, _ := ParseClock("07:05"); c.String() != "07:05" || c.Hour() != 7 {
		t.Errorf("clock round trip failed: %s", c)
	}
}
