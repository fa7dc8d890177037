package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/racemap/cell-service-go/internal/models"
	"github.com/racemap/cell-service-go/internal/service"
	"github.com/racemap/cell-service-go/pkg/response"
)

// CellHandler handles HTTP requests for cell lookups
type CellHandler struct {
	cellService *service.CellService
}

// NewCellHandler creates a new cell handler
func NewCellHandler(cellService *service.CellService) *CellHandler {
	return &CellHandler{
		cellService: cellService,
	}
}

// GetCell handles GET /cell
func (h *CellHandler) GetCell(c *gin.Context) {
	var params models.CellQueryParams

	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if params.MCC == nil || params.Net == nil || params.Area == nil || params.Cell == nil {
		response.BadRequest(c, "mcc, net, area and cell are required")
		return
	}

	query := models.CellQuery{
		MCC:  *params.MCC,
		Net:  *params.Net,
		Area: *params.Area,
		Cell: *params.Cell,
	}
	if params.Radio != "" {
		radio, ok := models.ParseRadio(params.Radio)
		if !ok {
			response.BadRequest(c, "Invalid radio")
			return
		}
		query.Radio = &radio
	}

	// A failing store degrades to "not found", never to an error status.
	cell, err := h.cellService.GetCell(query)
	if err != nil {
		slog.Warn("cell lookup failed", "error", err)
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, cell)
}

// GetCells handles GET /cells
func (h *CellHandler) GetCells(c *gin.Context) {
	var filter models.CellFilter

	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if radio := c.Query("radio"); radio != "" {
		parsed, ok := models.ParseRadio(radio)
		if !ok {
			response.BadRequest(c, "Invalid radio")
			return
		}
		filter.Radio = &parsed
	}

	result, err := h.cellService.ListCells(filter)
	if err != nil {
		slog.Warn("cell listing failed", "error", err)
		c.JSON(http.StatusOK, models.CellsResponse{Cells: []models.Cell{}})
		return
	}

	c.JSON(http.StatusOK, result)
}

// LookupCells handles POST /cells/lookup
func (h *CellHandler) LookupCells(c *gin.Context) {
	var req models.LookupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cells, err := h.cellService.LookupCells(req.Cells)
	if err != nil {
		slog.Warn("cell batch lookup failed", "error", err)
		c.JSON(http.StatusOK, models.LookupResponse{Cells: make([]*models.Cell, len(req.Cells))})
		return
	}

	c.JSON(http.StatusOK, models.LookupResponse{Cells: cells})
}
