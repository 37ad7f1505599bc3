package service

import (
	"fmt"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
)

// TripService handles business logic for trips
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// GetTrips retrieves trips with filtering and pagination
func (s *TripService) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	return s.repo.GetTrips(filter)
}

// GetTripByID retrieves a single trip by ID
func (s *TripService) GetTripByID(id int64) (*models.Trip, error) {
	return s.repo.GetTripByID(id)
}

// IngestTrips validates and bulk-inserts a telemetry batch. Rows with a
// partial coordinate pair are rejected: one coordinate without the other is
// a feed defect, not a missing fix.
func (s *TripService) IngestTrips(trips []models.Trip) (int64, error) {
	for i, t := range trips {
		if t.Vehicle == "" {
			return 0, fmt.Errorf("trip %d: vehicle is required", i)
		}
		if t.EndTime < t.StartTime {
			return 0, fmt.Errorf("trip %d: end time precedes start time", i)
		}
		if (t.StartLat == nil) != (t.StartLon == nil) {
			return 0, fmt.Errorf("trip %d: partial start coordinate pair", i)
		}
		if (t.EndLat == nil) != (t.EndLon == nil) {
			return 0, fmt.Errorf("trip %d: partial end coordinate pair", i)
		}
	}
	return s.repo.CreateTrips(trips)
}
