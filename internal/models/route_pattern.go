package models

// RoutePattern represents aggregate statistics for a repeated POI-to-POI route
type RoutePattern struct {
	ID         int64 `json:"id" db:"id"`
	StartPOIID int64 `json:"start_poi_id" db:"start_poi_id"`
	EndPOIID   int64 `json:"end_poi_id" db:"end_poi_id"`

	RouteType   string `json:"route_type" db:"route_type"`
	QualityTier string `json:"quality_tier" db:"quality_tier"`

	TripCount int `json:"trip_count" db:"trip_count"`

	// Distance statistics (km)
	AvgDistanceKm float64 `json:"avg_distance_km" db:"avg_distance_km"`
	MinDistanceKm float64 `json:"min_distance_km" db:"min_distance_km"`
	MaxDistanceKm float64 `json:"max_distance_km" db:"max_distance_km"`

	// Travel time statistics (minutes)
	AvgTravelMinutes    float64 `json:"avg_travel_minutes" db:"avg_travel_minutes"`
	MinTravelMinutes    float64 `json:"min_travel_minutes" db:"min_travel_minutes"`
	MaxTravelMinutes    float64 `json:"max_travel_minutes" db:"max_travel_minutes"`
	TravelMinutesStdDev float64 `json:"travel_minutes_stddev" db:"travel_minutes_stddev"`

	// Routing efficiency
	StraightLineKm    float64 `json:"straight_line_km" db:"straight_line_km"`
	DeviationRatioPct float64 `json:"deviation_ratio_pct" db:"deviation_ratio_pct"`
	EfficiencyRating  int     `json:"efficiency_rating" db:"efficiency_rating"`

	// Modal vehicle/driver across the group
	PrimaryVehicle string `json:"primary_vehicle,omitempty" db:"primary_vehicle"`
	PrimaryDriver  string `json:"primary_driver,omitempty" db:"primary_driver"`

	HasReturnLeg bool `json:"has_return_leg" db:"has_return_leg"`

	CreatedAt string `json:"created_at,omitempty" db:"created_at"`
}

// Route type constants, classified from endpoint POI types
const (
	RouteTypeDelivery           = "delivery"
	RouteTypeReturn             = "return"
	RouteTypeTransfer           = "transfer"
	RouteTypePositioning        = "positioning"
	RouteTypeCustomerToCustomer = "customer_to_customer"
	RouteTypeUnknown            = "unknown"
)

// Quality tier constants
const (
	TierPlatinum = "platinum"
	TierGold     = "gold"
	TierSilver   = "silver"
	TierBronze   = "bronze"
)

// RoutesResponse represents a paginated response of route patterns
type RoutesResponse struct {
	Data       []RoutePattern `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
