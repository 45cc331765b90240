package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

const (
	defaultAdminPageSize = 20
	maxAdminPageSize     = 100
)

type AdminHandler struct {
	BaseHandler
	adminService  services.AdminService
	courseService services.CourseService
	reportService services.ReportService
}

func NewAdminHandler(adminService services.AdminService, courseService services.CourseService, reportService services.ReportService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   NewBaseHandler(logger),
		adminService:  adminService,
		courseService: courseService,
		reportService: reportService,
	}
}

// GetPlatformStats returns the canonical platform counters
func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.adminService.GetPlatformStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: stats})
}

// ListUsers pages through all accounts
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Search: c.Query("search"),
	}
	filters.Limit, filters.Offset = h.parsePagination(c)

	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}
	if active := c.Query("is_active"); active != "" {
		b := active == "true"
		filters.IsActive = &b
	}

	users, total, err := h.adminService.ListUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: gin.H{
		"users": users,
		"total": total,
	}})
}

// SetUserActive toggles an account's active flag
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.AdminSetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.adminService.SetUserActive(c.Request.Context(), GetCurrentUserID(c), id, req.IsActive); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "User status updated",
	})
}

// DeleteUser removes an account with all dependent rows
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), GetCurrentUser(c), id, c.ClientIP()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "User deleted successfully",
	})
}

// ListCourses pages through courses in every status, moderation queue first
func (h *AdminHandler) ListCourses(c *gin.Context) {
	var req validator.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	page, err := h.courseService.ListForAdmin(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: page})
}

// ApproveCourse publishes a submission from the moderation queue
func (h *AdminHandler) ApproveCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.Approve(c.Request.Context(), id, GetCurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Course approved",
		Data:    course,
	})
}

// RejectCourse sends a submission back to draft with a reason
func (h *AdminHandler) RejectCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.CourseRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.courseService.Reject(c.Request.Context(), id, GetCurrentUserID(c), req.Reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Course rejected",
		Data:    course,
	})
}

// DeleteCourse removes any course regardless of owner
func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.adminService.DeleteCourse(c.Request.Context(), GetCurrentUser(c), id, c.ClientIP()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Course deleted successfully",
	})
}

// ListActivities pages through the platform-wide activity stream
func (h *AdminHandler) ListActivities(c *gin.Context) {
	filters := repositories.ActivityFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)

	if raw := c.Query("student_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			filters.StudentID = &v
		}
	}
	if raw := c.Query("course_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			filters.CourseID = &v
		}
	}
	if raw := c.Query("type"); raw != "" {
		t := models.ActivityType(raw)
		filters.Type = &t
	}
	filters.DateFrom = parseDateQuery(c, "date_from")
	filters.DateTo = parseDateQuery(c, "date_to")

	activities, total, err := h.adminService.ListActivities(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: gin.H{
		"activities": activities,
		"total":      total,
	}})
}

// ListAuditLogs pages through the audit trail
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	filters := repositories.AuditLogFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)

	if action := c.Query("action"); action != "" {
		filters.Action = &action
	}
	if email := c.Query("email"); email != "" {
		filters.Email = &email
	}
	filters.DateFrom = parseDateQuery(c, "date_from")
	filters.DateTo = parseDateQuery(c, "date_to")

	logs, total, err := h.adminService.ListAuditLogs(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: gin.H{
		"audit_logs": logs,
		"total":      total,
	}})
}

// ExportCourseReport streams the course report workbook
func (h *AdminHandler) ExportCourseReport(c *gin.Context) {
	data, err := h.reportService.ExportCourseReport(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("course-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *AdminHandler) parsePagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAdminPageSize)))
	if limit < 1 {
		limit = defaultAdminPageSize
	}
	if limit > maxAdminPageSize {
		limit = maxAdminPageSize
	}
	return limit, (page - 1) * limit
}

func parseDateQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
