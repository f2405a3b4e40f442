package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/travelpkg/backend/internal/application/report"
)

// DashboardHandler serves the admin dashboard and storefront notices
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats returns the dashboard snapshot. A degraded snapshot is still a 200.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ImportantNotices lists the notices flagged as important
func (h *DashboardHandler) ImportantNotices(c *gin.Context) {
	notices, err := h.dashboardService.ImportantNotices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notices)
}
