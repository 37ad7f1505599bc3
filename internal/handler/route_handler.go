package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
	"github.com/DGfinder/fleet-correlation-go/internal/service"
	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// RouteHandler handles HTTP requests for route patterns
type RouteHandler struct {
	service *service.RouteService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(service *service.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// GetRoutes handles GET /api/v1/routes
func (h *RouteHandler) GetRoutes(c *gin.Context) {
	var filter models.RouteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	routes, total, err := h.service.GetRoutes(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get route patterns", err)
		return
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	response.Success(c, models.RoutesResponse{
		Data:       routes,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	})
}

// GetRouteByID handles GET /api/v1/routes/:id
func (h *RouteHandler) GetRouteByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid route ID", err)
		return
	}

	route, err := h.service.GetRouteByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get route pattern", err)
		return
	}
	if route == nil {
		response.Error(c, http.StatusNotFound, "Route pattern not found", nil)
		return
	}

	response.Success(c, route)
}
