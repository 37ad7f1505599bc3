package service

import (
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
)

// POIService handles business logic for discovered POIs
type POIService struct {
	repo *repository.POIRepository
}

// NewPOIService creates a new POI service
func NewPOIService(repo *repository.POIRepository) *POIService {
	return &POIService{repo: repo}
}

// GetPOIs retrieves discovered POIs with filtering and pagination
func (s *POIService) GetPOIs(filter models.POIFilter) ([]models.DiscoveredPOI, int64, error) {
	return s.repo.GetPOIs(filter)
}

// GetPOIByID retrieves a single POI by ID
func (s *POIService) GetPOIByID(id int64) (*models.DiscoveredPOI, error) {
	return s.repo.GetPOIByID(id)
}

// ClassifyPOI labels a discovered POI with its real-world type
func (s *POIService) ClassifyPOI(id int64, req models.ClassifyPOIRequest) (*models.DiscoveredPOI, error) {
	return s.repo.Classify(id, req)
}
