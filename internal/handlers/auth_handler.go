package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/learning-platform-service/internal/services"
	"github.com/SAP-F-2025/learning-platform-service/internal/utils"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

const maxAvatarSizeBytes = 5 << 20

var allowedAvatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	uploadDir   string
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger, uploadDir string) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		uploadDir:   uploadDir,
	}
}

// Register creates a new student or instructor account
func (h *AuthHandler) Register(c *gin.Context) {
	var req validator.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	auth, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Status:  statusSuccess,
		Message: "Account created successfully",
		Data:    auth,
	})
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	auth, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Logged in successfully",
		Data:    auth,
	})
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := GetCurrentUserID(c)

	profile, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Status: statusSuccess, Data: profile})
}

// UpdateProfile updates name and bio of the authenticated user
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req validator.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := GetCurrentUserID(c)

	profile, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Profile updated successfully",
		Data:    profile,
	})
}

// UploadAvatar stores the uploaded image under the upload directory and
// saves its public URL on the profile.
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userID := GetCurrentUserID(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Avatar file is required",
		})
		return
	}
	if file.Size > maxAvatarSizeBytes {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Avatar file exceeds the 5MB limit",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExtensions[ext] {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  statusError,
			Message: "Avatar must be a jpg, png or webp image",
		})
		return
	}

	dir := filepath.Join(h.uploadDir, "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.logger.Error("Failed to create upload directory", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  statusError,
			Message: "Failed to store avatar",
		})
		return
	}

	filename := fmt.Sprintf("%d_%s%s", userID, uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, filename)); err != nil {
		h.logger.Error("Failed to save avatar", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  statusError,
			Message: "Failed to store avatar",
		})
		return
	}

	avatarURL := "/uploads/profiles/" + filename
	profile, err := h.authService.UpdateAvatar(c.Request.Context(), userID, avatarURL)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:  statusSuccess,
		Message: "Avatar updated successfully",
		Data:    profile,
	})
}
