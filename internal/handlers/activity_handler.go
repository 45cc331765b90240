package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
)

type ActivityHandler struct {
	BaseHandler
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService, logger utils.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
	}
}

// GetRecentActivity lists the student's newest activity rows
func (h *ActivityHandler) GetRecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	activities, err := h.activityService.GetRecent(c.Request.Context(), GetCurrentUserID(c), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: activities})
}

// GetActivityStats returns the per-day activity histogram. The period query
// parameter is in days and gets clamped server-side.
func (h *ActivityHandler) GetActivityStats(c *gin.Context) {
	period, _ := strconv.Atoi(c.DefaultQuery("period", "0"))

	stats, err := h.activityService.GetStats(c.Request.Context(), GetCurrentUserID(c), period)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: stats})
}

// GetNotifications lists notification-tagged activity rows
func (h *ActivityHandler) GetNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread_only") == "true"

	notifications, err := h.activityService.GetNotifications(c.Request.Context(), GetCurrentUserID(c), unreadOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: notifications})
}

// MarkNotificationRead stamps read_at on one of the student's notifications
func (h *ActivityHandler) MarkNotificationRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.activityService.MarkNotificationRead(c.Request.Context(), GetCurrentUserID(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Notification marked as read",
	})
}
