package models

import (
	"fmt"
	"time"
)

// ClusterParams are the operator-tunable knobs for POI discovery
type ClusterParams struct {
	RadiusMeters   float64 `json:"radius_meters"`
	MinPoints      int     `json:"min_points"`
	MinIdleMinutes float64 `json:"min_idle_minutes"`
	Reset          bool    `json:"reset"`
}

// DefaultClusterParams returns the reference discovery configuration
func DefaultClusterParams() ClusterParams {
	return ClusterParams{
		RadiusMeters:   500,
		MinPoints:      5,
		MinIdleMinutes: 30,
	}
}

// Validate checks the parameters for configuration defects
func (p ClusterParams) Validate() error {
	if p.RadiusMeters <= 0 {
		return fmt.Errorf("cluster radius must be positive, got %.1f", p.RadiusMeters)
	}
	if p.MinPoints < 1 {
		return fmt.Errorf("min points must be at least 1, got %d", p.MinPoints)
	}
	if p.MinIdleMinutes < 0 {
		return fmt.Errorf("min idle minutes must not be negative, got %.1f", p.MinIdleMinutes)
	}
	return nil
}

// FusionWeights holds the empirically tuned constants of the confidence
// fusion decision table. Values come from the reference tuning and are
// exposed for domain-expert review rather than hard-coded.
type FusionWeights struct {
	StrongBand   int `json:"strong_band"`   // signal >= this counts as strong
	ModerateBand int `json:"moderate_band"` // signal >= this counts as moderate

	BothStrongBase     int     `json:"both_strong_base"`
	BothStrongTemporal float64 `json:"both_strong_temporal"`

	TextStrongBase     int     `json:"text_strong_base"`
	TextStrongGeo      float64 `json:"text_strong_geo"`
	TextStrongTemporal float64 `json:"text_strong_temporal"`

	GeoStrongBase     int     `json:"geo_strong_base"`
	GeoStrongText     float64 `json:"geo_strong_text"`
	GeoStrongTemporal float64 `json:"geo_strong_temporal"`

	BothModerateText     float64 `json:"both_moderate_text"`
	BothModerateGeo      float64 `json:"both_moderate_geo"`
	BothModerateTemporal float64 `json:"both_moderate_temporal"`

	TextModerateBase     int     `json:"text_moderate_base"`
	TextModerateGeo      float64 `json:"text_moderate_geo"`
	TextModerateTemporal float64 `json:"text_moderate_temporal"`

	GeoModerateBase     int     `json:"geo_moderate_base"`
	GeoModerateText     float64 `json:"geo_moderate_text"`
	GeoModerateTemporal float64 `json:"geo_moderate_temporal"`

	FallbackText     float64 `json:"fallback_text"`
	FallbackGeo      float64 `json:"fallback_geo"`
	FallbackTemporal float64 `json:"fallback_temporal"`

	BusinessAliasBoost int `json:"business_alias_boost"`
	TerminalAliasBoost int `json:"terminal_alias_boost"`
}

// DefaultFusionWeights returns the reference fusion configuration
func DefaultFusionWeights() FusionWeights {
	return FusionWeights{
		StrongBand:   85,
		ModerateBand: 60,

		BothStrongBase:     95,
		BothStrongTemporal: 0.05,

		TextStrongBase:     80,
		TextStrongGeo:      0.10,
		TextStrongTemporal: 0.10,

		GeoStrongBase:     75,
		GeoStrongText:     0.10,
		GeoStrongTemporal: 0.15,

		BothModerateText:     0.60,
		BothModerateGeo:      0.40,
		BothModerateTemporal: 0.10,

		TextModerateBase:     60,
		TextModerateGeo:      0.15,
		TextModerateTemporal: 0.25,

		GeoModerateBase:     55,
		GeoModerateText:     0.20,
		GeoModerateTemporal: 0.25,

		FallbackText:     0.40,
		FallbackGeo:      0.30,
		FallbackTemporal: 0.30,

		BusinessAliasBoost: 20,
		TerminalAliasBoost: 25,
	}
}

// CorrelationParams are the operator-tunable knobs for a correlation run
type CorrelationParams struct {
	DateToleranceDays int     `json:"date_tolerance_days"`
	MaxSearchRadiusKm float64 `json:"max_search_radius_km"`
	MinConfidence     int     `json:"min_confidence"`

	// Per-signal toggles
	TextEnabled     bool `json:"text_enabled"`
	GeoEnabled      bool `json:"geo_enabled"`
	TemporalEnabled bool `json:"temporal_enabled"`

	// Optional trip date range (YYYY-MM-DD, inclusive); empty = all trips
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	// Worker pool size for the per-trip computation; <=0 picks a default
	Workers int `json:"workers"`

	Weights FusionWeights `json:"weights"`
}

// DefaultCorrelationParams returns the reference correlation configuration
func DefaultCorrelationParams() CorrelationParams {
	return CorrelationParams{
		DateToleranceDays: 3,
		MaxSearchRadiusKm: 150,
		MinConfidence:     50,
		TextEnabled:       true,
		GeoEnabled:        true,
		TemporalEnabled:   true,
		Workers:           4,
		Weights:           DefaultFusionWeights(),
	}
}

// Validate checks the parameters for configuration defects
func (p CorrelationParams) Validate() error {
	if p.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance must not be negative, got %d", p.DateToleranceDays)
	}
	if p.MaxSearchRadiusKm <= 0 {
		return fmt.Errorf("max search radius must be positive, got %.1f", p.MaxSearchRadiusKm)
	}
	if p.MinConfidence < 0 || p.MinConfidence > 100 {
		return fmt.Errorf("min confidence must be in [0,100], got %d", p.MinConfidence)
	}
	if (p.StartDate == "") != (p.EndDate == "") {
		return fmt.Errorf("date range requires both start and end dates")
	}
	if p.StartDate != "" {
		from, err := time.Parse("2006-01-02", p.StartDate)
		if err != nil {
			return fmt.Errorf("start date must be YYYY-MM-DD, got %q", p.StartDate)
		}
		to, err := time.Parse("2006-01-02", p.EndDate)
		if err != nil {
			return fmt.Errorf("end date must be YYYY-MM-DD, got %q", p.EndDate)
		}
		if to.Before(from) {
			return fmt.Errorf("end date %s precedes start date %s", p.EndDate, p.StartDate)
		}
	}
	return nil
}

// RouteParams are the operator-tunable knobs for route pattern aggregation
type RouteParams struct {
	MinTripCount       int     `json:"min_trip_count"`
	POIConfidenceFloor int     `json:"poi_confidence_floor"`
	AssignRadiusMeters float64 `json:"assign_radius_meters"`
}

// DefaultRouteParams returns the reference aggregation configuration
func DefaultRouteParams() RouteParams {
	return RouteParams{
		MinTripCount:       10,
		POIConfidenceFloor: 70,
		AssignRadiusMeters: 500,
	}
}

// Validate checks the parameters for configuration defects
func (p RouteParams) Validate() error {
	if p.MinTripCount < 1 {
		return fmt.Errorf("min trip count must be at least 1, got %d", p.MinTripCount)
	}
	if p.POIConfidenceFloor < 0 || p.POIConfidenceFloor > 100 {
		return fmt.Errorf("POI confidence floor must be in [0,100], got %d", p.POIConfidenceFloor)
	}
	if p.AssignRadiusMeters <= 0 {
		return fmt.Errorf("assign radius must be positive, got %.1f", p.AssignRadiusMeters)
	}
	return nil
}
