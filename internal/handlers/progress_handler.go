package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetCourseProgress returns the per-lesson progress view for an enrolled
// course
func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	progress, err := h.progressService.GetCourseProgress(c.Request.Context(), GetCurrentUserID(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: progress})
}

// CompleteLesson marks a lesson done and returns the refreshed course
// progress
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	lessonID := h.parseIDParam(c, "lesson_id")
	if lessonID == 0 {
		return
	}

	req, ok := h.bindProgressBody(c)
	if !ok {
		return
	}

	progress, err := h.progressService.MarkLessonComplete(c.Request.Context(), GetCurrentUserID(c), courseID, lessonID, req.TimeSpentSeconds)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Lesson completed",
		Data:    progress,
	})
}

// RecordLessonTime accrues watch time without completing the lesson
func (h *ProgressHandler) RecordLessonTime(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}
	lessonID := h.parseIDParam(c, "lesson_id")
	if lessonID == 0 {
		return
	}

	req, ok := h.bindProgressBody(c)
	if !ok {
		return
	}

	if err := h.progressService.UpdateLessonTime(c.Request.Context(), GetCurrentUserID(c), courseID, lessonID, req.TimeSpentSeconds); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Lesson time recorded",
	})
}

// bindProgressBody tolerates an empty body, defaulting the time to zero
func (h *ProgressHandler) bindProgressBody(c *gin.Context) (*validator.LessonProgressRequest, bool) {
	var req validator.LessonProgressRequest
	if c.Request.ContentLength == 0 {
		return &req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, false
	}
	return &req, true
}
