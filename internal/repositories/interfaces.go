package repositories

import (
	"time"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Status       *models.CourseStatus `json:"status"`
	Level        *models.CourseLevel  `json:"level"`
	CategoryID   *uint                `json:"category_id"`
	InstructorID *uint                `json:"instructor_id"`
	Search       string               `json:"search"` // case-insensitive substring on title/description
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
	SortBy       string               `json:"sort_by"`    // "created_at", "title", "price", "enrollment_count"
	SortOrder    string               `json:"sort_order"` // "asc", "desc"
}

type UserFilters struct {
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
	Search   string           `json:"search"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type ActivityFilters struct {
	StudentID *uint                `json:"student_id"`
	CourseID  *uint                `json:"course_id"`
	Type      *models.ActivityType `json:"type"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

type AuditLogFilters struct {
	Action   *string    `json:"action"`
	Email    *string    `json:"email"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// PlatformStats is the canonical admin stats payload: active users only,
// published courses only.
type PlatformStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalStudents    int64 `json:"total_students"`
	TotalInstructors int64 `json:"total_instructors"`
	TotalCourses     int64 `json:"total_courses"`
	TotalEnrollments int64 `json:"total_enrollments"`
	CompletedCourses int64 `json:"completed_courses"`
}

type InstructorStats struct {
	TotalCourses     int     `json:"total_courses"`
	PublishedCourses int     `json:"published_courses"`
	DraftCourses     int     `json:"draft_courses"`
	TotalEnrollments int     `json:"total_enrollments"`
	AverageProgress  float64 `json:"average_progress"`
}

// ActivityDayCount is one bucket of the per-day activity histogram.
type ActivityDayCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// CourseReportRow is one line of the admin course report export.
type CourseReportRow struct {
	CourseID        uint    `json:"course_id"`
	Title           string  `json:"title"`
	Status          string  `json:"status"`
	InstructorName  string  `json:"instructor_name"`
	CategoryName    string  `json:"category_name"`
	Price           float64 `json:"price"`
	EnrollmentCount int     `json:"enrollment_count"`
	AverageProgress float64 `json:"average_progress"`
}

// LessonWithProgress is one row of the per-course progress view: every lesson
// left-joined with the student's lesson_progress, ordered by order_index.
type LessonWithProgress struct {
	Lesson           models.Lesson `json:"lesson"`
	IsCompleted      bool          `json:"is_completed"`
	TimeSpentSeconds int           `json:"time_spent_seconds"`
	CompletedAt      *time.Time    `json:"completed_at"`
}
