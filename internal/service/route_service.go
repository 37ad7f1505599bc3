package service

import (
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
)

// RouteService handles business logic for route patterns
type RouteService struct {
	repo *repository.RouteRepository
}

// NewRouteService creates a new route service
func NewRouteService(repo *repository.RouteRepository) *RouteService {
	return &RouteService{repo: repo}
}

// GetRoutes retrieves route patterns with filtering and pagination
func (s *RouteService) GetRoutes(filter models.RouteFilter) ([]models.RoutePattern, int64, error) {
	return s.repo.GetRoutes(filter)
}

// GetRouteByID retrieves a single route pattern by ID
func (s *RouteService) GetRouteByID(id int64) (*models.RoutePattern, error) {
	return s.repo.GetRouteByID(id)
}
