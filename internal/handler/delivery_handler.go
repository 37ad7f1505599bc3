package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/service"
	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// DeliveryHandler handles HTTP requests for delivery records
type DeliveryHandler struct {
	service *service.DeliveryService
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(service *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// GetDeliveries handles GET /api/v1/deliveries
func (h *DeliveryHandler) GetDeliveries(c *gin.Context) {
	var filter models.DeliveryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	records, total, err := h.service.GetDeliveries(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get delivery records", err)
		return
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	response.Success(c, models.DeliveriesResponse{
		Data:       records,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// IngestDeliveries handles POST /api/v1/deliveries
func (h *DeliveryHandler) IngestDeliveries(c *gin.Context) {
	var records []models.DeliveryRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid delivery payload", err)
		return
	}
	if len(records) == 0 {
		response.Error(c, http.StatusBadRequest, "Empty delivery batch", nil)
		return
	}

	inserted, err := h.service.IngestDeliveries(records)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to ingest delivery records", err)
		return
	}

	response.Success(c, gin.H{"inserted": inserted})
}
