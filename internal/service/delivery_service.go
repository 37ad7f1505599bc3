package service

import (
	"fmt"
	"time"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
)

// DeliveryService handles business logic for delivery records
type DeliveryService struct {
	repo *repository.DeliveryRepository
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(repo *repository.DeliveryRepository) *DeliveryService {
	return &DeliveryService{repo: repo}
}

// GetDeliveries retrieves delivery records with filtering and pagination
func (s *DeliveryService) GetDeliveries(filter models.DeliveryFilter) ([]models.DeliveryRecord, int64, error) {
	return s.repo.GetDeliveries(filter)
}

// IngestDeliveries validates and bulk-inserts a billing batch
func (s *DeliveryService) IngestDeliveries(records []models.DeliveryRecord) (int64, error) {
	for i, d := range records {
		if d.CustomerName == "" {
			return 0, fmt.Errorf("delivery %d: customer name is required", i)
		}
		if _, err := time.Parse("2006-01-02", d.DeliveryDate); err != nil {
			return 0, fmt.Errorf("delivery %d: invalid delivery date %q", i, d.DeliveryDate)
		}
	}
	return s.repo.CreateDeliveries(records)
}
