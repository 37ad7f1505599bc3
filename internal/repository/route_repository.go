package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// RouteRepository handles database operations for route patterns
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `id, start_poi_id, end_poi_id, route_type, quality_tier, trip_count,
	avg_distance_km, min_distance_km, max_distance_km,
	avg_travel_minutes, min_travel_minutes, max_travel_minutes, travel_minutes_stddev,
	straight_line_km, deviation_ratio_pct, efficiency_rating,
	primary_vehicle, primary_driver, has_return_leg, created_at`

// GetRoutes retrieves route patterns with filtering and pagination
func (r *RouteRepository) GetRoutes(filter models.RouteFilter) ([]models.RoutePattern, int64, error) {
	query := "SELECT " + routeColumns + " FROM route_patterns"

	var conditions []string
	var args []interface{}

	if filter.RouteType != "" {
		conditions = append(conditions, "route_type = ?")
		args = append(args, filter.RouteType)
	}
	if filter.QualityTier != "" {
		conditions = append(conditions, "quality_tier = ?")
		args = append(args, filter.QualityTier)
	}
	if filter.MinTripCount > 0 {
		conditions = append(conditions, "trip_count >= ?")
		args = append(args, filter.MinTripCount)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM route_patterns"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count route patterns: %w", err)
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize
	query += " ORDER BY trip_count DESC, id LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query route patterns: %w", err)
	}
	defer rows.Close()

	var routes []models.RoutePattern
	for rows.Next() {
		p, err := scanRoute(rows)
		if err != nil {
			return nil, 0, err
		}
		routes = append(routes, p)
	}

	return routes, total, rows.Err()
}

// GetRouteByID retrieves a single route pattern by ID
func (r *RouteRepository) GetRouteByID(id int64) (*models.RoutePattern, error) {
	row := r.db.QueryRow("SELECT "+routeColumns+" FROM route_patterns WHERE id = ?", id)

	p, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route pattern: %w", err)
	}

	return &p, nil
}

func scanRoute(row rowScanner) (models.RoutePattern, error) {
	var p models.RoutePattern
	err := row.Scan(
		&p.ID, &p.StartPOIID, &p.EndPOIID, &p.RouteType, &p.QualityTier, &p.TripCount,
		&p.AvgDistanceKm, &p.MinDistanceKm, &p.MaxDistanceKm,
		&p.AvgTravelMinutes, &p.MinTravelMinutes, &p.MaxTravelMinutes, &p.TravelMinutesStdDev,
		&p.StraightLineKm, &p.DeviationRatioPct, &p.EfficiencyRating,
		&p.PrimaryVehicle, &p.PrimaryDriver, &p.HasReturnLeg, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan route pattern: %w", err)
	}
	return p, nil
}
