package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
	"github.com/DGfinder/fleet-correlation-go/internal/service"
	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// POIHandler handles HTTP requests for discovered POIs
type POIHandler struct {
	service *service.POIService
}

// NewPOIHandler creates a new POI handler
func NewPOIHandler(service *service.POIService) *POIHandler {
	return &POIHandler{service: service}
}

// GetPOIs handles GET /api/v1/pois
func (h *POIHandler) GetPOIs(c *gin.Context) {
	var filter models.POIFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	pois, total, err := h.service.GetPOIs(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get POIs", err)
		return
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	response.Success(c, models.POIsResponse{
		Data:       pois,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// GetPOIByID handles GET /api/v1/pois/:id
func (h *POIHandler) GetPOIByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid POI ID", err)
		return
	}

	poi, err := h.service.GetPOIByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get POI", err)
		return
	}
	if poi == nil {
		response.Error(c, http.StatusNotFound, "POI not found", nil)
		return
	}

	response.Success(c, poi)
}

// ClassifyPOI handles POST /api/v1/pois/:id/classify
func (h *POIHandler) ClassifyPOI(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid POI ID", err)
		return
	}

	var req models.ClassifyPOIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid classification payload", err)
		return
	}

	poi, err := h.service.ClassifyPOI(id, req)
	if errors.Is(err, repository.ErrInvalidTransition) {
		response.Error(c, http.StatusConflict, "POI is not in a classifiable state", err)
		return
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to classify POI", err)
		return
	}
	if poi == nil {
		response.Error(c, http.StatusNotFound, "POI not found", nil)
		return
	}

	response.Success(c, poi)
}
