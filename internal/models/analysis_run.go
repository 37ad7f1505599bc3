package models

// AnalysisRun tracks one batch engine run (discovery, correlation, or routes)
type AnalysisRun struct {
	ID   int64  `json:"id" db:"id"`
	Kind string `json:"kind" db:"kind"`

	Status          string  `json:"status" db:"status"`
	ParamsJSON      string  `json:"params_json,omitempty" db:"params_json"`
	ProgressPercent float64 `json:"progress_percent" db:"progress_percent"`
	TotalRecords    int64   `json:"total_records" db:"total_records"`
	Processed       int64   `json:"processed_records" db:"processed_records"`
	Failed          int64   `json:"failed_records" db:"failed_records"`
	SummaryJSON     string  `json:"summary_json,omitempty" db:"summary_json"`
	ErrorMessage    string  `json:"error_message,omitempty" db:"error_message"`

	CreatedAt   string `json:"created_at,omitempty" db:"created_at"`
	StartedAt   string `json:"started_at,omitempty" db:"started_at"`
	CompletedAt string `json:"completed_at,omitempty" db:"completed_at"`
}

// Run kind constants
const (
	RunKindDiscover  = "poi_discovery"
	RunKindCorrelate = "trip_correlation"
	RunKindRoutes    = "route_patterns"
)

// Run status constants
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
