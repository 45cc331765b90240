package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	lessonService services.LessonService
}

func NewCourseHandler(courseService services.CourseService, lessonService services.LessonService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		lessonService: lessonService,
	}
}

// CreateCourse creates a new course owned by the authenticated instructor
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req validator.CourseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req, GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Status:  statusSuccess,
		Message: "Course created successfully",
		Data:    course,
	})
}

// GetCourse returns a single course. Unpublished courses are only visible to
// their owner and admins.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id, GetCurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: course})
}

// ListCourses returns the public published catalog page
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req validator.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	page, err := h.courseService.List(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: page})
}

// GetMyCourses returns the authenticated instructor's own courses in every
// status.
func (h *CourseHandler) GetMyCourses(c *gin.Context) {
	var req validator.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	page, err := h.courseService.GetByInstructor(c.Request.Context(), GetCurrentUserID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: page})
}

// UpdateCourse patches course fields
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.CourseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req, GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Course updated successfully",
		Data:    course,
	})
}

// DeleteCourse removes a course with all its lessons, enrollments and
// progress
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, GetCurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Course deleted successfully",
	})
}

// PublishCourse moves a draft straight to published
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	h.transition(c, h.courseService.Publish)
}

// SubmitCourse moves a draft into the moderation queue
func (h *CourseHandler) SubmitCourse(c *gin.Context) {
	h.transition(c, h.courseService.Submit)
}

// ArchiveCourse retires a published course
func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	h.transition(c, h.courseService.Archive)
}

// GetInstructorStats returns the authenticated instructor's aggregates
func (h *CourseHandler) GetInstructorStats(c *gin.Context) {
	stats, err := h.courseService.GetInstructorStats(c.Request.Context(), GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: stats})
}

func (h *CourseHandler) transition(c *gin.Context, fn func(ctx context.Context, id, userID uint) (*services.CourseResponse, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := fn(c.Request.Context(), id, GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Course status updated",
		Data:    course,
	})
}

// ===== LESSONS =====

// CreateLesson appends a lesson to a course
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req validator.LessonCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lesson, err := h.lessonService.Create(c.Request.Context(), courseID, &req, GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Status:  statusSuccess,
		Message: "Lesson created successfully",
		Data:    lesson,
	})
}

// GetLessons lists a course's lessons in order
func (h *CourseHandler) GetLessons(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	lessons, err := h.lessonService.GetByCourse(c.Request.Context(), courseID, GetCurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: lessons})
}

// UpdateLesson patches a lesson
func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	lessonID := h.parseIDParam(c, "lesson_id")
	if lessonID == 0 {
		return
	}

	var req validator.LessonUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), lessonID, &req, GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Lesson updated successfully",
		Data:    lesson,
	})
}

// DeleteLesson removes a lesson
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	lessonID := h.parseIDParam(c, "lesson_id")
	if lessonID == 0 {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), lessonID, GetCurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Lesson deleted successfully",
	})
}

// ReorderLessons rewrites the order of all lessons in a course
func (h *CourseHandler) ReorderLessons(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req validator.LessonReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lessons, err := h.lessonService.Reorder(c.Request.Context(), courseID, &req, GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Lessons reordered successfully",
		Data:    lessons,
	})
}
