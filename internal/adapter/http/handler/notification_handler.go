package handler

import (
	"codemarket/internal/adapter/http/dto"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"
	"codemarket/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	notifSvc ports.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifSvc ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

// List handles GET /api/v1/notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.notifSvc.List(c.Request.Context(), accountID, unreadOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, dto.FromNotification(&notifications[i]))
	}
	response.OK(c, items)
}

// MarkRead handles POST /api/v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	notifID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid notification id"))
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), notifID, accountID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"marked": true})
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	if err := h.notifSvc.MarkAllRead(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"marked": true})
}

// UnreadCount handles GET /api/v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	accountID, ok := authedAccountID(c)
	if !ok {
		return
	}

	count, err := h.notifSvc.UnreadCount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.UnreadCountResponse{Count: count})
}
