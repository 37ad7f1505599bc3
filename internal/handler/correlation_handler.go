package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/service"
	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// CorrelationHandler handles HTTP requests for correlations
type CorrelationHandler struct {
	service *service.CorrelationService
}

// NewCorrelationHandler creates a new correlation handler
func NewCorrelationHandler(service *service.CorrelationService) *CorrelationHandler {
	return &CorrelationHandler{service: service}
}

// GetCorrelations handles GET /api/v1/correlations
func (h *CorrelationHandler) GetCorrelations(c *gin.Context) {
	var filter models.CorrelationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	correlations, total, err := h.service.GetCorrelations(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get correlations", err)
		return
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	response.Success(c, models.CorrelationsResponse{
		Data:       correlations,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// GetCorrelationByID handles GET /api/v1/correlations/:id
func (h *CorrelationHandler) GetCorrelationByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid correlation ID", err)
		return
	}

	correlation, err := h.service.GetCorrelationByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get correlation", err)
		return
	}
	if correlation == nil {
		response.Error(c, http.StatusNotFound, "Correlation not found", nil)
		return
	}

	// Expose decoded risk flags alongside the stored row
	response.Success(c, gin.H{
		"correlation": correlation,
		"risk_flags":  correlation.RiskFlags(),
	})
}

// GetQualitySummary handles GET /api/v1/correlations/summary
func (h *CorrelationHandler) GetQualitySummary(c *gin.Context) {
	summary, err := h.service.GetQualitySummary()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get quality summary", err)
		return
	}
	response.Success(c, summary)
}
