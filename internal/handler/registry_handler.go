package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/service"
	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// RegistryHandler handles HTTP requests for the reference registries
type RegistryHandler struct {
	service *service.RegistryService
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(service *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{service: service}
}

// GetTerminals handles GET /api/v1/registry/terminals
func (h *RegistryHandler) GetTerminals(c *gin.Context) {
	terminals, err := h.service.ListTerminals()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get terminals", err)
		return
	}
	response.Success(c, terminals)
}

// GetCustomers handles GET /api/v1/registry/customers
func (h *RegistryHandler) GetCustomers(c *gin.Context) {
	customers, err := h.service.ListCustomers()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get customers", err)
		return
	}
	response.Success(c, customers)
}

// LoadTerminals handles PUT /api/v1/registry/terminals
func (h *RegistryHandler) LoadTerminals(c *gin.Context) {
	var terminals []models.Terminal
	if err := c.ShouldBindJSON(&terminals); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid terminal payload", err)
		return
	}

	inserted, err := h.service.LoadTerminals(terminals)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load terminals", err)
		return
	}

	response.Success(c, gin.H{"loaded": inserted})
}

// LoadCustomers handles PUT /api/v1/registry/customers
func (h *RegistryHandler) LoadCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := c.ShouldBindJSON(&customers); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid customer payload", err)
		return
	}

	inserted, err := h.service.LoadCustomers(customers)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load customers", err)
		return
	}

	response.Success(c, gin.H{"loaded": inserted})
}

// aliasPayload maps free-text aliases to canonical names
type aliasPayload map[string]string

// LoadBusinessAliases handles PUT /api/v1/registry/aliases/business
func (h *RegistryHandler) LoadBusinessAliases(c *gin.Context) {
	var aliases aliasPayload
	if err := c.ShouldBindJSON(&aliases); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid alias payload", err)
		return
	}

	inserted, err := h.service.LoadBusinessAliases(aliases)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load business aliases", err)
		return
	}

	response.Success(c, gin.H{"loaded": inserted})
}

// LoadTerminalAliases handles PUT /api/v1/registry/aliases/terminal
func (h *RegistryHandler) LoadTerminalAliases(c *gin.Context) {
	var aliases aliasPayload
	if err := c.ShouldBindJSON(&aliases); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid alias payload", err)
		return
	}

	inserted, err := h.service.LoadTerminalAliases(aliases)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load terminal aliases", err)
		return
	}

	response.Success(c, gin.H{"loaded": inserted})
}
