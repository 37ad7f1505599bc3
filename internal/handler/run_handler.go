package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/service"
	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// RunHandler handles HTTP requests for batch engine runs
type RunHandler struct {
	service *service.RunService
}

// NewRunHandler creates a new run handler
func NewRunHandler(service *service.RunService) *RunHandler {
	return &RunHandler{service: service}
}

// startRunRequest carries the run kind and its free-form parameters
type startRunRequest struct {
	Kind   string          `json:"kind" binding:"required"`
	Params json.RawMessage `json:"params,omitempty"`
}

// StartRun handles POST /api/v1/runs
func (h *RunHandler) StartRun(c *gin.Context) {
	var req startRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid run payload", err)
		return
	}

	run, err := h.service.StartRun(req.Kind, string(req.Params))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to start run", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "accepted",
		"data":    run,
	})
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid run ID", err)
		return
	}

	run, err := h.service.GetRun(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get run", err)
		return
	}
	if run == nil {
		response.Error(c, http.StatusNotFound, "Run not found", nil)
		return
	}

	response.Success(c, run)
}

// ListRuns handles GET /api/v1/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	kind := c.Query("kind")
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	runs, err := h.service.ListRuns(kind, status, limit)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to list runs", err)
		return
	}

	response.Success(c, runs)
}
