package analysis

import (
	"database/sql"
	"fmt"
)

// BaseRun provides run tracking shared by all batch jobs
type BaseRun struct {
	DB   *sql.DB
	Name string
}

// NewBaseRun creates run-tracking helpers for a job
func NewBaseRun(db *sql.DB, name string) *BaseRun {
	return &BaseRun{DB: db, Name: name}
}

// CreateRun inserts a pending run row and returns its id
func (b *BaseRun) CreateRun(kind, paramsJSON string) (int64, error) {
	result, err := b.DB.Exec(
		"INSERT INTO analysis_runs (kind, status, params_json) VALUES (?, 'pending', ?)",
		kind, paramsJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create analysis run: %w", err)
	}
	return result.LastInsertId()
}

// MarkRunning marks a run as running
func (b *BaseRun) MarkRunning(runID int64) error {
	query := `
		UPDATE analysis_runs
		SET status = 'running',
		    started_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := b.DB.Exec(query, runID)
	return err
}

// MarkCompleted marks a run as completed with a summary
func (b *BaseRun) MarkCompleted(runID int64, summaryJSON string) error {
	query := `
		UPDATE analysis_runs
		SET status = 'completed',
		    progress_percent = 100,
		    summary_json = ?,
		    completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := b.DB.Exec(query, summaryJSON, runID)
	return err
}

// MarkFailed marks a run as failed with an error message
func (b *BaseRun) MarkFailed(runID int64, errorMsg string) error {
	query := `
		UPDATE analysis_runs
		SET status = 'failed',
		    error_message = ?,
		    completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := b.DB.Exec(query, errorMsg, runID)
	return err
}

// UpdateProgress updates run progress counters
func (b *BaseRun) UpdateProgress(runID, processed, total, failed int64) error {
	percent := 0.0
	if total > 0 {
		percent = float64(processed) / float64(total) * 100.0
	}

	query := `
		UPDATE analysis_runs
		SET processed_records = ?,
		    total_records = ?,
		    failed_records = ?,
		    progress_percent = ?
		WHERE id = ?
	`
	_, err := b.DB.Exec(query, processed, total, failed, percent, runID)
	return err
}

// Fail records the failure on the run row and returns the original error
func (b *BaseRun) Fail(runID int64, err error) error {
	if markErr := b.MarkFailed(runID, err.Error()); markErr != nil {
		return fmt.Errorf("%w (additionally failed to record run failure: %v)", err, markErr)
	}
	return err
}
