package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `id, vehicle, driver, start_time, end_time,
	start_location, end_location, start_lat, start_lon, end_lat, end_lon,
	distance_km, travel_minutes, idle_minutes, created_at`

// GetTrips retrieves trips with filtering and pagination
func (r *TripRepository) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	query := "SELECT " + tripColumns + " FROM trips"

	var conditions []string
	var args []interface{}

	if filter.StartTime > 0 {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "end_time <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.Vehicle != "" {
		conditions = append(conditions, "vehicle = ?")
		args = append(args, filter.Vehicle)
	}
	if filter.Driver != "" {
		conditions = append(conditions, "driver = ?")
		args = append(args, filter.Driver)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM trips"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize
	query += " ORDER BY start_time DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, t)
	}

	return trips, total, rows.Err()
}

// GetTripByID retrieves a single trip by ID
func (r *TripRepository) GetTripByID(id int64) (*models.Trip, error) {
	row := r.db.QueryRow("SELECT "+tripColumns+" FROM trips WHERE id = ?", id)

	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &t, nil
}

// CreateTrips bulk-inserts a batch of trips inside one transaction
func (r *TripRepository) CreateTrips(trips []models.Trip) (int64, error) {
	var inserted int64
	err := database.TransactionOn(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO trips (
				vehicle, driver, start_time, end_time,
				start_location, end_location, start_lat, start_lon, end_lat, end_lon,
				distance_km, travel_minutes, idle_minutes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare trip insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range trips {
			if _, err := stmt.Exec(
				t.Vehicle, t.Driver, t.StartTime, t.EndTime,
				t.StartLocation, t.EndLocation, t.StartLat, t.StartLon, t.EndLat, t.EndLon,
				t.DistanceKm, t.TravelMinutes, t.IdleMinutes,
			); err != nil {
				return fmt.Errorf("failed to insert trip: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID, &t.Vehicle, &t.Driver, &t.StartTime, &t.EndTime,
		&t.StartLocation, &t.EndLocation, &t.StartLat, &t.StartLon, &t.EndLat, &t.EndLon,
		&t.DistanceKm, &t.TravelMinutes, &t.IdleMinutes, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return t, err
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan trip: %w", err)
	}
	return t, nil
}
