package handler

import (
	"codemarket/internal/adapter/http/dto"
	"codemarket/internal/core/ports"
	"codemarket/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles the per-user dashboard endpoint.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// GetDashboard handles GET /api/v1/dashboard.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	dashboard, err := h.reportingSvc.GetAccountDashboard(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromAccountDashboard(dashboard))
}
