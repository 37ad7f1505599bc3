package models

import "encoding/json"

// Correlation links one trip to one delivery record with a fused confidence score
type Correlation struct {
	ID         int64  `json:"id" db:"id"`
	TripID     int64  `json:"trip_id" db:"trip_id"`
	DeliveryID *int64 `json:"delivery_id,omitempty" db:"delivery_id"`
	RunID      int64  `json:"run_id" db:"run_id"`

	// Fused score and its full per-signal breakdown (auditable: the overall
	// score must be re-derivable from the three signals alone)
	OverallConfidence  int `json:"overall_confidence" db:"overall_confidence"`
	TextConfidence     int `json:"text_confidence" db:"text_confidence"`
	GeoConfidence      int `json:"geo_confidence" db:"geo_confidence"`
	TemporalConfidence int `json:"temporal_confidence" db:"temporal_confidence"`

	// How the winning text comparison was made
	TextMethod     string `json:"text_method,omitempty" db:"text_method"`
	TextComparison string `json:"text_comparison,omitempty" db:"text_comparison"`

	// Geospatial evidence
	MatchedEndpoint    string  `json:"matched_endpoint,omitempty" db:"matched_endpoint"` // start|end
	TerminalDistanceKm float64 `json:"terminal_distance_km" db:"terminal_distance_km"`
	WithinServiceArea  bool    `json:"within_service_area" db:"within_service_area"`

	// Temporal evidence
	DateDifferenceDays int `json:"date_difference_days" db:"date_difference_days"`

	// Quality tiering
	Quality              string `json:"quality" db:"quality"`
	RiskFlagsJSON        string `json:"-" db:"risk_flags_json"`
	RequiresManualReview bool   `json:"requires_manual_review" db:"requires_manual_review"`

	CreatedAt string `json:"created_at,omitempty" db:"created_at"`
}

// RiskFlags decodes the stored risk flag list
func (c *Correlation) RiskFlags() []string {
	if c.RiskFlagsJSON == "" {
		return nil
	}
	var flags []string
	if err := json.Unmarshal([]byte(c.RiskFlagsJSON), &flags); err != nil {
		return nil
	}
	return flags
}

// SetRiskFlags encodes the risk flag list for storage
func (c *Correlation) SetRiskFlags(flags []string) {
	if len(flags) == 0 {
		c.RiskFlagsJSON = "[]"
		return
	}
	b, _ := json.Marshal(flags)
	c.RiskFlagsJSON = string(b)
}

// Quality label constants
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

// Risk flag constants
const (
	RiskLargeDateGap         = "large_date_gap"
	RiskLongTerminalDistance = "long_terminal_distance"
	RiskWeakSignals          = "weak_signals"
	RiskNoLocationSignal     = "no_location_signal"
	RiskAmbiguousMatch       = "ambiguous_match"
)

// Endpoint constants
const (
	EndpointStart = "start"
	EndpointEnd   = "end"
)

// CorrelationsResponse represents a paginated response of correlations
type CorrelationsResponse struct {
	Data       []Correlation `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}
