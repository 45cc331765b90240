package validator

import "github.com/SAP-F-2025/learning-platform-service/internal/models"

// RegisterRequest is the payload for account creation
type RegisterRequest struct {
	Email     string           `json:"email" validate:"required,email,max=255"`
	Password  string           `json:"password" validate:"required,password_strength"`
	FirstName string           `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string           `json:"last_name" validate:"required,min=1,max=100"`
	Role      *models.UserRole `json:"role" validate:"omitempty,registerable_role"`
}

// LoginRequest is the payload for credential authentication
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest updates the caller's own profile
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
}

// CourseCreateRequest is the payload for creating a course
type CourseCreateRequest struct {
	Title       string             `json:"title" validate:"required,course_title"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	Level       models.CourseLevel `json:"level" validate:"required,course_level"`
	Price       float64            `json:"price" validate:"gte=0"`
	CategoryID  *uint              `json:"category_id"`
	Publish     bool               `json:"publish"`
}

// CourseUpdateRequest is the payload for updating a course
type CourseUpdateRequest struct {
	Title       *string             `json:"title" validate:"omitempty,course_title"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	Level       *models.CourseLevel `json:"level" validate:"omitempty,course_level"`
	Price       *float64            `json:"price" validate:"omitempty,gte=0"`
	CategoryID  *uint               `json:"category_id"`
	Thumbnail   *string             `json:"thumbnail_url" validate:"omitempty,url,max=500"`
}

// CourseRejectRequest carries the mandatory rejection reason
type CourseRejectRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=2000"`
}

// CourseListRequest captures catalog listing query parameters
type CourseListRequest struct {
	CategoryID *uint               `form:"category_id"`
	Level      *models.CourseLevel `form:"level" validate:"omitempty,course_level"`
	Search     string              `form:"search" validate:"omitempty,max=200"`
	Page       int                 `form:"page" validate:"omitempty,min=1"`
	Limit      int                 `form:"limit" validate:"omitempty,min=1,max=100"`
	SortBy     string              `form:"sort_by" validate:"omitempty,oneof=created_at title price enrollment_count"`
	SortOrder  string              `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// LessonCreateRequest is the payload for adding a lesson to a course
type LessonCreateRequest struct {
	Title           string  `json:"title" validate:"required,min=1,max=200"`
	Content         *string `json:"content" validate:"omitempty,max=50000"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url,max=500"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0,lte=600"`
	IsPreview       bool    `json:"is_preview"`
}

// LessonUpdateRequest is the payload for updating a lesson
type LessonUpdateRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content         *string `json:"content" validate:"omitempty,max=50000"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url,max=500"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0,lte=600"`
	IsPreview       *bool   `json:"is_preview"`
}

// LessonReorderRequest carries the full ordered lesson ID list for a course
type LessonReorderRequest struct {
	LessonIDs []uint `json:"lesson_ids" validate:"required,min=1,dive,required"`
}

// CategoryCreateRequest is the payload for creating a category
type CategoryCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CategoryUpdateRequest is the payload for updating a category
type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// LessonProgressRequest carries the time accumulator delta for progress writes
type LessonProgressRequest struct {
	TimeSpentSeconds int `json:"time_spent_seconds" validate:"gte=0,lte=86400"`
}

// AdminSetActiveRequest toggles a user account
type AdminSetActiveRequest struct {
	IsActive bool `json:"is_active"`
}
