package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testHandlerLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubAuthService accepts a single known token and rejects everything else.
type stubAuthService struct {
	token string
	user  *models.User
}

func (s *stubAuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	if s.user != nil && token == s.token {
		return s.user, nil
	}
	return nil, services.ErrInvalidCredentials
}

func (s *stubAuthService) Register(ctx context.Context, req *validator.RegisterRequest) (*services.AuthResponse, error) {
	return nil, services.ErrInvalidCredentials
}

func (s *stubAuthService) Login(ctx context.Context, req *validator.LoginRequest) (*services.AuthResponse, error) {
	return nil, services.ErrInvalidCredentials
}

func (s *stubAuthService) GetProfile(ctx context.Context, userID uint) (*services.UserResponse, error) {
	if s.user != nil && userID == s.user.ID {
		return &services.UserResponse{ID: s.user.ID, Email: s.user.Email, Role: s.user.Role}, nil
	}
	return nil, services.ErrUserNotFound
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID uint, req *validator.ProfileUpdateRequest) (*services.UserResponse, error) {
	return nil, services.ErrUserNotFound
}

func (s *stubAuthService) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) (*services.UserResponse, error) {
	return nil, services.ErrUserNotFound
}

func newAuthTestRouter(user *models.User) *gin.Engine {
	auth := NewJWTAuthMiddleware(&stubAuthService{token: "good-token", user: user})
	router := gin.New()

	router.GET("/me", auth.AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetCurrentUserID(c)})
	})
	router.GET("/public", auth.OptionalAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetCurrentUserID(c)})
	})
	router.GET("/admin", auth.AuthMiddleware(), auth.RequireRoleMiddleware(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	student := &models.User{ID: 42, Role: models.RoleStudent, Email: "s@example.com", IsActive: true}
	router := newAuthTestRouter(student)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic abc123", http.StatusUnauthorized},
		{"bearer with empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad-token", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
		{"scheme is case-insensitive", "bearer good-token", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, "/me", tc.header)
			if w.Code != tc.status {
				t.Errorf("expected status %d, got %d (body %s)", tc.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	student := &models.User{ID: 42, Role: models.RoleStudent, IsActive: true}
	router := newAuthTestRouter(student)

	t.Run("anonymous request passes", func(t *testing.T) {
		w := doRequest(router, "/public", "")
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if body := w.Body.String(); body != `{"user_id":0}` {
			t.Errorf("expected anonymous user, got %s", body)
		}
	})

	t.Run("invalid token still passes anonymously", func(t *testing.T) {
		w := doRequest(router, "/public", "Bearer bad-token")
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("valid token attaches the user", func(t *testing.T) {
		w := doRequest(router, "/public", "Bearer good-token")
		if body := w.Body.String(); body != `{"user_id":42}` {
			t.Errorf("expected user 42, got %s", body)
		}
	})
}

func TestRequireRoleMiddleware(t *testing.T) {
	t.Run("wrong role is forbidden", func(t *testing.T) {
		student := &models.User{ID: 1, Role: models.RoleStudent, IsActive: true}
		w := doRequest(newAuthTestRouter(student), "/admin", "Bearer good-token")
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})

	t.Run("matching role passes", func(t *testing.T) {
		admin := &models.User{ID: 2, Role: models.RoleAdmin, IsActive: true}
		w := doRequest(newAuthTestRouter(admin), "/admin", "Bearer good-token")
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}
