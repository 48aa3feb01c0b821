package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farecalc/internal/service"
)

// ReportHandler handles HTTP requests for the completed trip log.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// TripListResponse wraps the completed trip list.
type TripListResponse struct {
	Trips []service.TripSummary `json:"trips"`
	Count int                   `json:"count"`
}

// ListTrips handles GET /v1/reports/:userId/trips
func (h *ReportHandler) ListTrips(c *gin.Context) {
	trips, err := h.reports.ListTrips(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TripListResponse{Trips: trips, Count: len(trips)})
}
