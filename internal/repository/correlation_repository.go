package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// CorrelationRepository handles database operations for trip-delivery correlations
type CorrelationRepository struct {
	db *sql.DB
}

// NewCorrelationRepository creates a new correlation repository
func NewCorrelationRepository(db *sql.DB) *CorrelationRepository {
	return &CorrelationRepository{db: db}
}

const correlationColumns = `id, trip_id, delivery_id, run_id,
	overall_confidence, text_confidence, geo_confidence, temporal_confidence,
	text_method, text_comparison, matched_endpoint, terminal_distance_km,
	within_service_area, date_difference_days, quality, risk_flags_json,
	requires_manual_review, created_at`

// GetCorrelations retrieves correlations with filtering and pagination
func (r *CorrelationRepository) GetCorrelations(filter models.CorrelationFilter) ([]models.Correlation, int64, error) {
	query := "SELECT " + correlationColumns + " FROM correlations"

	var conditions []string
	var args []interface{}

	if filter.TripID > 0 {
		conditions = append(conditions, "trip_id = ?")
		args = append(args, filter.TripID)
	}
	if filter.MinConfidence > 0 {
		conditions = append(conditions, "overall_confidence >= ?")
		args = append(args, filter.MinConfidence)
	}
	if filter.Quality != "" {
		conditions = append(conditions, "quality = ?")
		args = append(args, filter.Quality)
	}
	if filter.NeedsReview != nil {
		conditions = append(conditions, "requires_manual_review = ?")
		args = append(args, *filter.NeedsReview)
	}
	if filter.RunID > 0 {
		conditions = append(conditions, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.StartDate != "" {
		conditions = append(conditions, "trip_id IN (SELECT id FROM trips WHERE date(start_time, 'unixepoch') >= ?)")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, "trip_id IN (SELECT id FROM trips WHERE date(start_time, 'unixepoch') <= ?)")
		args = append(args, filter.EndDate)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM correlations"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count correlations: %w", err)
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize
	query += " ORDER BY overall_confidence DESC, id LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query correlations: %w", err)
	}
	defer rows.Close()

	var correlations []models.Correlation
	for rows.Next() {
		c, err := scanCorrelation(rows)
		if err != nil {
			return nil, 0, err
		}
		correlations = append(correlations, c)
	}

	return correlations, total, rows.Err()
}

// GetCorrelationByID retrieves a single correlation by ID
func (r *CorrelationRepository) GetCorrelationByID(id int64) (*models.Correlation, error) {
	row := r.db.QueryRow("SELECT "+correlationColumns+" FROM correlations WHERE id = ?", id)

	c, err := scanCorrelation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get correlation: %w", err)
	}

	return &c, nil
}

// QualitySummary is the per-quality-tier rollup of stored correlations
type QualitySummary struct {
	Quality       string  `json:"quality"`
	Count         int64   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
	NeedingReview int64   `json:"needing_review"`
}

// GetQualitySummary aggregates stored correlations by quality tier
func (r *CorrelationRepository) GetQualitySummary() ([]QualitySummary, error) {
	rows, err := r.db.Query(`
		SELECT quality, COUNT(*), AVG(overall_confidence),
			SUM(CASE WHEN requires_manual_review THEN 1 ELSE 0 END)
		FROM correlations
		GROUP BY quality
		ORDER BY AVG(overall_confidence) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quality summary: %w", err)
	}
	defer rows.Close()

	var summary []QualitySummary
	for rows.Next() {
		var s QualitySummary
		if err := rows.Scan(&s.Quality, &s.Count, &s.AvgConfidence, &s.NeedingReview); err != nil {
			return nil, fmt.Errorf("failed to scan quality summary: %w", err)
		}
		summary = append(summary, s)
	}

	return summary, rows.Err()
}

func scanCorrelation(row rowScanner) (models.Correlation, error) {
	var c models.Correlation
	err := row.Scan(
		&c.ID, &c.TripID, &c.DeliveryID, &c.RunID,
		&c.OverallConfidence, &c.TextConfidence, &c.GeoConfidence, &c.TemporalConfidence,
		&c.TextMethod, &c.TextComparison, &c.MatchedEndpoint, &c.TerminalDistanceKm,
		&c.WithinServiceArea, &c.DateDifferenceDays, &c.Quality, &c.RiskFlagsJSON,
		&c.RequiresManualReview, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("failed to scan correlation: %w", err)
	}
	return c, nil
}
