package models

import "time"

// Trip represents one GPS trip from the telemetry feed (origin-destination pair)
type Trip struct {
	ID int64 `json:"id" db:"id"`

	// Vehicle identification
	Vehicle string `json:"vehicle" db:"vehicle"`
	Driver  string `json:"driver,omitempty" db:"driver"`

	// Temporal info
	StartTime int64 `json:"start_time" db:"start_time"` // Unix timestamp
	EndTime   int64 `json:"end_time" db:"end_time"`     // Unix timestamp

	// Free-text endpoint labels from the telemetry provider, when present
	StartLocation string `json:"start_location,omitempty" db:"start_location"`
	EndLocation   string `json:"end_location,omitempty" db:"end_location"`

	// Endpoint coordinates (nullable - the feed may miss GPS fixes)
	StartLat *float64 `json:"start_lat,omitempty" db:"start_lat"`
	StartLon *float64 `json:"start_lon,omitempty" db:"start_lon"`
	EndLat   *float64 `json:"end_lat,omitempty" db:"end_lat"`
	EndLon   *float64 `json:"end_lon,omitempty" db:"end_lon"`

	// Trip characteristics
	DistanceKm    float64 `json:"distance_km" db:"distance_km"`
	TravelMinutes float64 `json:"travel_minutes" db:"travel_minutes"`
	IdleMinutes   float64 `json:"idle_minutes" db:"idle_minutes"`

	// Metadata
	CreatedAt string `json:"created_at,omitempty" db:"created_at"`
}

// HasStartCoords reports whether the trip has a usable start fix
func (t *Trip) HasStartCoords() bool {
	return t.StartLat != nil && t.StartLon != nil
}

// HasEndCoords reports whether the trip has a usable end fix
func (t *Trip) HasEndCoords() bool {
	return t.EndLat != nil && t.EndLon != nil
}

// StartDate returns the trip start as a YYYY-MM-DD date in UTC
func (t *Trip) StartDate() string {
	return time.Unix(t.StartTime, 0).UTC().Format("2006-01-02")
}

// TripsResponse represents a paginated response of trips
type TripsResponse struct {
	Data       []Trip `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}
