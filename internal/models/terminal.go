package models

import "encoding/json"

// Terminal represents a curated fuel terminal/depot location
type Terminal struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	// Service coverage
	ServiceRadiusKm float64 `json:"service_radius_km" db:"service_radius_km"`
	ServiceAreaJSON string  `json:"-" db:"service_area_json"` // JSON array of [lat, lon] pairs

	PrimaryCarrier string `json:"primary_carrier,omitempty" db:"primary_carrier"`
}

// ServiceArea decodes the service polygon. Returns nil when no polygon is set.
func (t *Terminal) ServiceArea() [][2]float64 {
	if t.ServiceAreaJSON == "" {
		return nil
	}
	var ring [][2]float64
	if err := json.Unmarshal([]byte(t.ServiceAreaJSON), &ring); err != nil {
		return nil
	}
	if len(ring) < 3 {
		return nil
	}
	return ring
}

// Customer represents a curated billing customer location
type Customer struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}
