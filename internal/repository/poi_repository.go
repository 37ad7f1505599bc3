package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// ErrInvalidTransition is returned when a POI status change violates the
// discovered -> classified | merged state machine.
var ErrInvalidTransition = fmt.Errorf("poi is not in a classifiable state")

// POIRepository handles database operations for discovered POIs
type POIRepository struct {
	db *sql.DB
}

// NewPOIRepository creates a new POI repository
func NewPOIRepository(db *sql.DB) *POIRepository {
	return &POIRepository{db: db}
}

const poiColumns = `id, latitude, longitude, start_trip_count, end_trip_count, trip_count,
	avg_idle_minutes, total_idle_minutes, accuracy_meters, confidence,
	status, poi_type, matched_terminal_id, matched_customer_id, merged_into_id,
	created_at, updated_at`

// GetPOIs retrieves discovered POIs with filtering and pagination
func (r *POIRepository) GetPOIs(filter models.POIFilter) ([]models.DiscoveredPOI, int64, error) {
	query := "SELECT " + poiColumns + " FROM discovered_pois"

	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.POIType != "" {
		conditions = append(conditions, "poi_type = ?")
		args = append(args, filter.POIType)
	}
	if filter.MinConfidence > 0 {
		conditions = append(conditions, "confidence >= ?")
		args = append(args, filter.MinConfidence)
	}
	if filter.MinTripCount > 0 {
		conditions = append(conditions, "trip_count >= ?")
		args = append(args, filter.MinTripCount)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM discovered_pois"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count POIs: %w", err)
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize
	query += " ORDER BY confidence DESC, trip_count DESC, id LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query POIs: %w", err)
	}
	defer rows.Close()

	var pois []models.DiscoveredPOI
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			return nil, 0, err
		}
		pois = append(pois, p)
	}

	return pois, total, rows.Err()
}

// GetPOIByID retrieves a single POI by ID
func (r *POIRepository) GetPOIByID(id int64) (*models.DiscoveredPOI, error) {
	row := r.db.QueryRow("SELECT "+poiColumns+" FROM discovered_pois WHERE id = ?", id)

	p, err := scanPOI(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get POI: %w", err)
	}

	return &p, nil
}

// Classify transitions a discovered POI to classified with the given type and
// optional registry links. Only POIs in the discovered state may be classified.
func (r *POIRepository) Classify(id int64, req models.ClassifyPOIRequest) (*models.DiscoveredPOI, error) {
	switch req.POIType {
	case models.POITypeTerminal, models.POITypeCustomer, models.POITypeDepot, models.POITypeUnknown:
	default:
		return nil, fmt.Errorf("unknown poi type %q", req.POIType)
	}

	result, err := r.db.Exec(`
		UPDATE discovered_pois
		SET status = ?,
		    poi_type = ?,
		    matched_terminal_id = ?,
		    matched_customer_id = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, models.POIStatusClassified, req.POIType, req.TerminalID, req.CustomerID,
		id, models.POIStatusDiscovered)
	if err != nil {
		return nil, fmt.Errorf("failed to classify POI: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to classify POI: %w", err)
	}
	if affected == 0 {
		existing, err := r.GetPOIByID(id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, nil
		}
		return nil, ErrInvalidTransition
	}

	return r.GetPOIByID(id)
}

func scanPOI(row rowScanner) (models.DiscoveredPOI, error) {
	var p models.DiscoveredPOI
	err := row.Scan(
		&p.ID, &p.Latitude, &p.Longitude, &p.StartTripCount, &p.EndTripCount, &p.TripCount,
		&p.AvgIdleMinutes, &p.TotalIdleMinutes, &p.AccuracyMeters, &p.Confidence,
		&p.Status, &p.POIType, &p.MatchedTerminalID, &p.MatchedCustomerID, &p.MergedIntoID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan POI: %w", err)
	}
	return p, nil
}
