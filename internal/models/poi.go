package models

// DiscoveredPOI represents a recurring stop location discovered from trip endpoints
type DiscoveredPOI struct {
	ID int64 `json:"id" db:"id"`

	// Cluster centroid
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	// Contributing trips, split by the role the point played
	StartTripCount int `json:"start_trip_count" db:"start_trip_count"`
	EndTripCount   int `json:"end_trip_count" db:"end_trip_count"`
	TripCount      int `json:"trip_count" db:"trip_count"`

	// Dwell characteristics
	AvgIdleMinutes   float64 `json:"avg_idle_minutes" db:"avg_idle_minutes"`
	TotalIdleMinutes float64 `json:"total_idle_minutes" db:"total_idle_minutes"`

	// GPS accuracy proxy: coordinate spread around the centroid, in meters
	AccuracyMeters float64 `json:"accuracy_meters" db:"accuracy_meters"`

	// Confidence 0-100, derived from trip count and spread
	Confidence int `json:"confidence" db:"confidence"`

	// Classification state machine: discovered -> classified | merged
	Status  string `json:"status" db:"status"`
	POIType string `json:"poi_type" db:"poi_type"`

	// Optional links set during classification
	MatchedTerminalID *int64 `json:"matched_terminal_id,omitempty" db:"matched_terminal_id"`
	MatchedCustomerID *int64 `json:"matched_customer_id,omitempty" db:"matched_customer_id"`

	// Set when this cluster was absorbed into another POI
	MergedIntoID *int64 `json:"merged_into_id,omitempty" db:"merged_into_id"`

	CreatedAt string `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty" db:"updated_at"`
}

// POI status constants
const (
	POIStatusDiscovered = "discovered"
	POIStatusClassified = "classified"
	POIStatusMerged     = "merged"
)

// POI type constants
const (
	POITypeTerminal = "terminal"
	POITypeCustomer = "customer"
	POITypeDepot    = "depot"
	POITypeUnknown  = "unknown"
)

// POIsResponse represents a paginated response of discovered POIs
type POIsResponse struct {
	Data       []DiscoveredPOI `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// ClassifyPOIRequest is the payload for classifying a discovered POI
type ClassifyPOIRequest struct {
	POIType    string `json:"poi_type" binding:"required"`
	TerminalID *int64 `json:"terminal_id,omitempty"`
	CustomerID *int64 `json:"customer_id,omitempty"`
}
