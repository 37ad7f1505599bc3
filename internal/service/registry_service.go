package service

import (
	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
)

// RegistryService handles business logic for the reference registries
type RegistryService struct {
	repo *repository.RegistryRepository
}

// NewRegistryService creates a new registry service
func NewRegistryService(repo *repository.RegistryRepository) *RegistryService {
	return &RegistryService{repo: repo}
}

// ListTerminals returns all terminals
func (s *RegistryService) ListTerminals() ([]models.Terminal, error) {
	return s.repo.ListTerminals()
}

// ListCustomers returns all customers
func (s *RegistryService) ListCustomers() ([]models.Customer, error) {
	return s.repo.ListCustomers()
}

// LoadTerminals replaces the terminal registry
func (s *RegistryService) LoadTerminals(terminals []models.Terminal) (int64, error) {
	return s.repo.ReplaceTerminals(terminals)
}

// LoadCustomers replaces the customer registry
func (s *RegistryService) LoadCustomers(customers []models.Customer) (int64, error) {
	return s.repo.ReplaceCustomers(customers)
}

// LoadBusinessAliases replaces the business alias table
func (s *RegistryService) LoadBusinessAliases(aliases map[string]string) (int64, error) {
	return s.repo.ReplaceAliases("business_aliases", aliases)
}

// LoadTerminalAliases replaces the terminal alias table
func (s *RegistryService) LoadTerminalAliases(aliases map[string]string) (int64, error) {
	return s.repo.ReplaceAliases("terminal_aliases", aliases)
}
