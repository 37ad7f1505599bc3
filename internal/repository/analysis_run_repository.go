package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// AnalysisRunRepository handles database operations for analysis runs
type AnalysisRunRepository struct {
	db *sql.DB
}

// NewAnalysisRunRepository creates a new analysis run repository
func NewAnalysisRunRepository(db *sql.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{db: db}
}

const runColumns = `id, kind, status, params_json, progress_percent,
	total_records, processed_records, failed_records,
	summary_json, error_message, created_at,
	COALESCE(started_at, ''), COALESCE(completed_at, '')`

// GetRuns retrieves analysis runs, newest first
func (r *AnalysisRunRepository) GetRuns(kind, status string, limit int) ([]models.AnalysisRun, error) {
	query := "SELECT " + runColumns + " FROM analysis_runs"

	var conditions []string
	var args []interface{}

	if kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, kind)
	}
	if status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if limit < 1 || limit > 1000 {
		limit = 100
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRunByID retrieves a single analysis run by ID
func (r *AnalysisRunRepository) GetRunByID(id int64) (*models.AnalysisRun, error) {
	row := r.db.QueryRow("SELECT "+runColumns+" FROM analysis_runs WHERE id = ?", id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	return &run, nil
}

func scanRun(row rowScanner) (models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := row.Scan(
		&run.ID, &run.Kind, &run.Status, &run.ParamsJSON, &run.ProgressPercent,
		&run.TotalRecords, &run.Processed, &run.Failed,
		&run.SummaryJSON, &run.ErrorMessage, &run.CreatedAt,
		&run.StartedAt, &run.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan analysis run: %w", err)
	}
	return run, nil
}
