package handler

import (
	"context"
	"errors"
	"io"

	"codemarket/internal/adapter/http/dto"
	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"
	"codemarket/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles payment-request moderation and the platform
// dashboard. All routes require the admin role.
type AdminHandler struct {
	requestSvc   ports.PaymentRequestService
	reportingSvc ports.ReportingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(requestSvc ports.PaymentRequestService, reportingSvc ports.ReportingService) *AdminHandler {
	return &AdminHandler{
		requestSvc:   requestSvc,
		reportingSvc: reportingSvc,
	}
}

// ListPendingRequests handles GET /api/v1/admin/requests.
func (h *AdminHandler) ListPendingRequests(c *gin.Context) {
	requests, err := h.requestSvc.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.FromPaymentRequest(&requests[i]))
	}
	response.OK(c, items)
}

// ApproveRequest handles POST /api/v1/admin/requests/:id/approve.
func (h *AdminHandler) ApproveRequest(c *gin.Context) {
	h.process(c, h.requestSvc.Approve)
}

// RejectRequest handles POST /api/v1/admin/requests/:id/reject.
func (h *AdminHandler) RejectRequest(c *gin.Context) {
	h.process(c, h.requestSvc.Reject)
}

func (h *AdminHandler) process(c *gin.Context, fn func(ctx context.Context, requestID, adminID uuid.UUID, note string) (*domain.PaymentRequest, error)) {
	adminID, ok := authedAccountID(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid request id"))
		return
	}

	var body dto.ProcessRequestBody
	// Note body is optional; an empty body is fine.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&body)

	result, err := fn(c.Request.Context(), requestID, adminID, body.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPaymentRequest(result))
}

// PlatformDashboard handles GET /api/v1/admin/dashboard.
func (h *AdminHandler) PlatformDashboard(c *gin.Context) {
	dashboard, err := h.reportingSvc.GetPlatformDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPlatformDashboard(dashboard))
}
