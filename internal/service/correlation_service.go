package service

import (
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
)

// CorrelationService handles business logic for correlations
type CorrelationService struct {
	repo *repository.CorrelationRepository
}

// NewCorrelationService creates a new correlation service
func NewCorrelationService(repo *repository.CorrelationRepository) *CorrelationService {
	return &CorrelationService{repo: repo}
}

// GetCorrelations retrieves correlations with filtering and pagination
func (s *CorrelationService) GetCorrelations(filter models.CorrelationFilter) ([]models.Correlation, int64, error) {
	return s.repo.GetCorrelations(filter)
}

// GetCorrelationByID retrieves a single correlation by ID
func (s *CorrelationService) GetCorrelationByID(id int64) (*models.Correlation, error) {
	return s.repo.GetCorrelationByID(id)
}

// GetQualitySummary aggregates stored correlations by quality tier
func (s *CorrelationService) GetQualitySummary() ([]repository.QualitySummary, error) {
	return s.repo.GetQualitySummary()
}
