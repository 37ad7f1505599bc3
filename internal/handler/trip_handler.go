package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/service"
	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// TripHandler handles HTTP requests for trips
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// GetTrips handles GET /api/v1/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	var filter models.TripFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	trips, total, err := h.service.GetTrips(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get trips", err)
		return
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	response.Success(c, models.TripsResponse{
		Data:       trips,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// GetTripByID handles GET /api/v1/trips/:id
func (h *TripHandler) GetTripByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid trip ID", err)
		return
	}

	trip, err := h.service.GetTripByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get trip", err)
		return
	}
	if trip == nil {
		response.Error(c, http.StatusNotFound, "Trip not found", nil)
		return
	}

	response.Success(c, trip)
}

// IngestTrips handles POST /api/v1/trips
func (h *TripHandler) IngestTrips(c *gin.Context) {
	var trips []models.Trip
	if err := c.ShouldBindJSON(&trips); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid trip payload", err)
		return
	}
	if len(trips) == 0 {
		response.Error(c, http.StatusBadRequest, "Empty trip batch", nil)
		return
	}

	inserted, err := h.service.IngestTrips(trips)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to ingest trips", err)
		return
	}

	response.Success(c, gin.H{"inserted": inserted})
}

// totalPages computes page count for a paginated envelope
func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
