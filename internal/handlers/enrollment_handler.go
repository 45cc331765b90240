package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// Enroll signs the authenticated student up for a published course
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), GetCurrentUserID(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Status:  statusSuccess,
		Message: "Enrolled successfully",
		Data:    enrollment,
	})
}

// Unenroll removes the enrollment along with its lesson progress
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	if err := h.enrollmentService.Unenroll(c.Request.Context(), GetCurrentUserID(c), courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Unenrolled successfully",
	})
}

// CheckEnrollment reports whether the authenticated student is enrolled
func (h *EnrollmentHandler) CheckEnrollment(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	enrolled, err := h.enrollmentService.IsEnrolled(c.Request.Context(), GetCurrentUserID(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status: statusSuccess,
		Data:   gin.H{"enrolled": enrolled},
	})
}

// GetMyCourses lists the authenticated student's enrollments, most recently
// accessed first
func (h *EnrollmentHandler) GetMyCourses(c *gin.Context) {
	enrollments, err := h.enrollmentService.GetMyCourses(c.Request.Context(), GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: enrollments})
}
