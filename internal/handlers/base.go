package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
)

// Every payload travels inside an envelope carrying a status discriminator.
const (
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"
)

type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c.Request.Context()).Info(msg, args...)
}

// parseIDParam reads a positive numeric path parameter. On failure it writes
// the 400 itself and returns 0; callers just bail on zero.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid " + param + " parameter",
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps the service error taxonomy onto HTTP statuses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule": businessRuleError.Rule,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Status:  statusError,
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Status:  statusError,
			Message: "Invalid email or password",
		})
	case errors.Is(err, services.ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Status:  statusError,
			Message: "Account is deactivated",
		})
	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Status:  statusError,
			Message: notFoundMessage(err),
		})
	case services.IsConflictError(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Status:  statusError,
			Message: conflictMessage(err),
		})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  statusError,
			Message: "Internal server error",
		})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, services.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, services.ErrLessonNotFound):
		return "Lesson not found"
	case errors.Is(err, services.ErrCategoryNotFound):
		return "Category not found"
	case errors.Is(err, services.ErrEnrollmentNotFound):
		return "Enrollment not found"
	case errors.Is(err, services.ErrNotificationNotFound):
		return "Notification not found"
	default:
		return "Resource not found"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEmailExists):
		return "Email is already registered"
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return "Already enrolled in this course"
	case errors.Is(err, services.ErrCategoryExists):
		return "Category name already exists"
	default:
		return "Resource conflict"
	}
}
