package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

// ===== AUTH =====

type AuthService interface {
	Register(ctx context.Context, req *validator.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *validator.LoginRequest) (*AuthResponse, error)

	// VerifyToken parses a bearer token and re-fetches the user row so
	// deactivation takes effect on the next request.
	VerifyToken(ctx context.Context, token string) (*models.User, error)

	GetProfile(ctx context.Context, userID uint) (*UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req *validator.ProfileUpdateRequest) (*UserResponse, error)
	UpdateAvatar(ctx context.Context, userID uint, avatarURL string) (*UserResponse, error)
}

// ===== CATALOG =====

type CourseService interface {
	Create(ctx context.Context, req *validator.CourseCreateRequest, instructorID uint) (*CourseResponse, error)
	GetByID(ctx context.Context, id uint, viewer *models.User) (*CourseResponse, error)
	Update(ctx context.Context, id uint, req *validator.CourseUpdateRequest, userID uint) (*CourseResponse, error)
	Delete(ctx context.Context, id uint, userID uint) error

	List(ctx context.Context, req *validator.CourseListRequest) (*CourseListResponse, error)
	ListForAdmin(ctx context.Context, req *validator.CourseListRequest) (*CourseListResponse, error)
	GetByInstructor(ctx context.Context, instructorID uint, req *validator.CourseListRequest) (*CourseListResponse, error)

	Publish(ctx context.Context, id uint, userID uint) (*CourseResponse, error)
	Submit(ctx context.Context, id uint, userID uint) (*CourseResponse, error)
	Approve(ctx context.Context, id uint, adminID uint) (*CourseResponse, error)
	Reject(ctx context.Context, id uint, adminID uint, reason string) (*CourseResponse, error)
	Archive(ctx context.Context, id uint, userID uint) (*CourseResponse, error)

	GetInstructorStats(ctx context.Context, instructorID uint) (*repositories.InstructorStats, error)
}

type CategoryService interface {
	Create(ctx context.Context, req *validator.CategoryCreateRequest, userID uint) (*models.Category, error)
	Update(ctx context.Context, id uint, req *validator.CategoryUpdateRequest, userID uint) (*models.Category, error)
	Delete(ctx context.Context, id uint, userID uint) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

type LessonService interface {
	Create(ctx context.Context, courseID uint, req *validator.LessonCreateRequest, userID uint) (*models.Lesson, error)
	Update(ctx context.Context, lessonID uint, req *validator.LessonUpdateRequest, userID uint) (*models.Lesson, error)
	Delete(ctx context.Context, lessonID uint, userID uint) error
	GetByCourse(ctx context.Context, courseID uint, viewer *models.User) ([]*models.Lesson, error)
	Reorder(ctx context.Context, courseID uint, req *validator.LessonReorderRequest, userID uint) ([]*models.Lesson, error)
}

// ===== ENROLLMENT =====

type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID uint) (*EnrollmentResponse, error)
	Unenroll(ctx context.Context, studentID, courseID uint) error
	IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error)
	GetMyCourses(ctx context.Context, studentID uint) ([]*EnrollmentResponse, error)
}

// ===== PROGRESS =====

type ProgressService interface {
	GetCourseProgress(ctx context.Context, studentID, courseID uint) (*CourseProgressResponse, error)
	MarkLessonComplete(ctx context.Context, studentID, courseID, lessonID uint, timeSpentSeconds int) (*CourseProgressResponse, error)
	UpdateLessonTime(ctx context.Context, studentID, courseID, lessonID uint, timeSpentSeconds int) error
}

// ===== ACTIVITY =====

type ActivityService interface {
	GetRecent(ctx context.Context, studentID uint, limit int) ([]*models.StudentActivity, error)
	GetStats(ctx context.Context, studentID uint, periodDays int) (*ActivityStatsResponse, error)
	GetNotifications(ctx context.Context, studentID uint, unreadOnly bool) ([]*models.StudentActivity, error)
	MarkNotificationRead(ctx context.Context, studentID, notificationID uint) error
}

// ===== ADMIN =====

type AdminService interface {
	GetPlatformStats(ctx context.Context) (*repositories.PlatformStats, error)
	ListUsers(ctx context.Context, filters repositories.UserFilters) ([]*UserResponse, int64, error)
	SetUserActive(ctx context.Context, adminID, userID uint, active bool) error
	DeleteUser(ctx context.Context, admin *models.User, userID uint, ipAddress string) error
	DeleteCourse(ctx context.Context, admin *models.User, courseID uint, ipAddress string) error
	ListActivities(ctx context.Context, filters repositories.ActivityFilters) ([]*models.StudentActivity, int64, error)
	ListAuditLogs(ctx context.Context, filters repositories.AuditLogFilters) ([]*models.AuditLog, int64, error)
}

// ReportService renders admin exports
type ReportService interface {
	// ExportCourseReport renders the per-course xlsx report and returns the
	// file bytes.
	ExportCourseReport(ctx context.Context) ([]byte, error)
}

// ===== RESPONSE DTOS =====

// UserResponse is the safe user projection (no password hash)
type UserResponse struct {
	ID        uint            `json:"id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	FullName  string          `json:"full_name"`
	Bio       *string         `json:"bio,omitempty"`
	AvatarURL *string         `json:"avatar_url,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuthResponse pairs the user with a freshly issued token
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// CourseResponse is the course projection returned to clients
type CourseResponse struct {
	ID              uint                `json:"id"`
	Title           string              `json:"title"`
	Slug            string              `json:"slug"`
	Description     *string             `json:"description,omitempty"`
	Status          models.CourseStatus `json:"status"`
	Level           models.CourseLevel  `json:"level"`
	Price           float64             `json:"price"`
	InstructorID    uint                `json:"instructor_id"`
	InstructorName  string              `json:"instructor_name"`
	CategoryID      *uint               `json:"category_id,omitempty"`
	CategoryName    *string             `json:"category_name,omitempty"`
	EnrollmentCount int                 `json:"enrollment_count"`
	LessonCount     int                 `json:"lesson_count"`
	TotalDuration   int                 `json:"total_duration_minutes"`
	ThumbnailURL    *string             `json:"thumbnail_url,omitempty"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	Lessons         []*models.Lesson    `json:"lessons,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CourseListResponse is a paginated course page
type CourseListResponse struct {
	Courses    []*CourseResponse `json:"courses"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// EnrollmentResponse joins the enrollment row with its course projection
type EnrollmentResponse struct {
	ID             uint            `json:"id"`
	Course         *CourseResponse `json:"course"`
	Progress       float64         `json:"progress"`
	EnrolledAt     time.Time       `json:"enrolled_at"`
	LastAccessedAt *time.Time      `json:"last_accessed_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// LessonProgressItem is one lesson row in the per-course progress view
type LessonProgressItem struct {
	Lesson           *models.Lesson `json:"lesson"`
	IsCompleted      bool           `json:"is_completed"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// CourseProgressResponse is the full progress view for one enrollment
type CourseProgressResponse struct {
	CourseID         uint                  `json:"course_id"`
	Progress         float64               `json:"progress"`
	CompletedLessons int                   `json:"completed_lessons"`
	TotalLessons     int                   `json:"total_lessons"`
	CompletedAt      *time.Time            `json:"completed_at,omitempty"`
	Lessons          []*LessonProgressItem `json:"lessons"`
}

// ActivityStatsResponse is the per-day activity histogram
type ActivityStatsResponse struct {
	PeriodDays int                              `json:"period_days"`
	Days       []*repositories.ActivityDayCount `json:"days"`
	Total      int64                            `json:"total"`
}

// ===== SERVICE MANAGER =====

// ServiceManager provides access to all services with lifecycle management
type ServiceManager interface {
	Auth() AuthService
	Course() CourseService
	Category() CategoryService
	Lesson() LessonService
	Enrollment() EnrollmentService
	Progress() ProgressService
	Activity() ActivityService
	Admin() AdminService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
