package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/services"
)

func TestHandleServiceError(t *testing.T) {
	base := NewBaseHandler(testHandlerLogger())

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation errors",
			err:     services.ValidationErrors{{Field: "title", Message: "cannot be blank"}},
			status:  http.StatusBadRequest,
			message: "Validation failed",
		},
		{
			name:    "business rule",
			err:     services.NewBusinessRuleError("self_deletion", "admins cannot delete their own account"),
			status:  http.StatusBadRequest,
			message: "admins cannot delete their own account",
		},
		{
			name:    "permission",
			err:     services.NewPermissionError(1, 2, "course", "update", "not owner"),
			status:  http.StatusForbidden,
			message: "Access denied",
		},
		{
			name:    "bad credentials",
			err:     services.ErrInvalidCredentials,
			status:  http.StatusUnauthorized,
			message: "Invalid email or password",
		},
		{
			name:    "inactive account",
			err:     services.ErrAccountInactive,
			status:  http.StatusUnauthorized,
			message: "Account is deactivated",
		},
		{
			name:    "course not found",
			err:     services.ErrCourseNotFound,
			status:  http.StatusNotFound,
			message: "Course not found",
		},
		{
			name:    "duplicate enrollment",
			err:     services.ErrAlreadyEnrolled,
			status:  http.StatusConflict,
			message: "Already enrolled in this course",
		},
		{
			name:    "unknown error",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			base.handleServiceError(c, tc.err)

			if w.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, w.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Status != statusError {
				t.Errorf("expected status %q, got %q", statusError, resp.Status)
			}
			if resp.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, resp.Message)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	base := NewBaseHandler(testHandlerLogger())

	parse := func(raw string) (uint, int) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		return base.parseIDParam(c, "id"), w.Code
	}

	if id, _ := parse("17"); id != 17 {
		t.Errorf("expected 17, got %d", id)
	}
	for _, raw := range []string{"0", "-4", "abc", ""} {
		if id, status := parse(raw); id != 0 || status != http.StatusBadRequest {
			t.Errorf("expected %q rejected with 400, got id=%d status=%d", raw, id, status)
		}
	}
}
