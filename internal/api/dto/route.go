package dto

type CoordinatesRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PropertyRequest struct {
	Type                  string  `json:"type"`
	Floors                int     `json:"floors"`
	HasLift               bool    `json:"has_lift"`
	HasParking            bool    `json:"has_parking"`
	ParkingDistanceMeters float64 `json:"parking_distance_meters"`
	NarrowAccess          bool    `json:"narrow_access"`
	RequiresPermit        bool    `json:"requires_permit"`
	AccessNotes           string  `json:"access_notes"`
}

// Bounds are "HH:MM" strings; empty bounds are open.
type TimeWindowRequest struct {
	Earliest  string `json:"earliest"`
	Latest    string `json:"latest"`
	Preferred string `json:"preferred"`
}

type WaypointRequest struct {
	Address             string              `json:"address"`
	Postcode            string              `json:"postcode"`
	Coordinates         *CoordinatesRequest `json:"coordinates"`
	PropertyDetails     *PropertyRequest    `json:"property_details"`
	TimeWindow          *TimeWindowRequest  `json:"time_window"`
	SpecialRequirements []string            `json:"special_requirements"`
}

type ItemRequest struct {
	Name           string  `json:"name"`
	Weight         float64 `json:"weight"`
	Volume         float64 `json:"volume"`
	Fragile        bool    `json:"fragile"`
	Quantity       int     `json:"quantity"`
	DropoffAddress string  `json:"dropoff_address"`
}

// Omitted booleans default to true.
type PreferencesRequest struct {
	OptimizeFor        string `json:"optimize_for"`
	RespectTimeWindows *bool  `json:"respect_time_windows"`
	AllowReordering    *bool  `json:"allow_reordering"`
}

type TimeConstraintsRequest struct {
	DepartureTime    string  `json:"departure_time"`
	MaxTotalDuration float64 `json:"max_total_duration"`
	MaxLegDuration   float64 `json:"max_leg_duration"`
}

type MultiDropRouteRequest struct {
	Pickup          WaypointRequest         `json:"pickup"`
	Dropoffs        []WaypointRequest       `json:"dropoffs"`
	VehicleType     string                  `json:"vehicle_type"`
	Items           []ItemRequest           `json:"items"`
	Preferences     *PreferencesRequest     `json:"preferences"`
	TimeConstraints *TimeConstraintsRequest `json:"time_constraints"`
}

type CapabilitiesResponse struct {
	Endpoint            string   `json:"endpoint"`
	Description         string   `json:"description"`
	MaxStops            int      `json:"max_stops"`
	Algorithms          []string `json:"algorithms"`
	OptimizationFactors []string `json:"optimization_factors"`
	SupportedVehicles   []string `json:"supported_vehicles"`
	Analytics           []string `json:"analytics"`
}

type ErrorResponse struct {
	Error         string `json:"error"`
	Field         string `json:"field,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
