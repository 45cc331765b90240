package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
)

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.CourseStatus, reason *string) error

	// Delete removes the course row only; cascade deletion of lessons,
	// enrollments and activities happens in the service transaction.
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// List applies filters to both the count and the page query.
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)

	// ListForAdmin returns all statuses ordered by status priority
	// (pending, published, draft, rest) then recency.
	ListForAdmin(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)

	GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint, filters CourseFilters) ([]*models.Course, int64, error)

	IncrementEnrollmentCount(ctx context.Context, tx *gorm.DB, id uint, delta int) error

	GetInstructorStats(ctx context.Context, tx *gorm.DB, instructorID uint) (*InstructorStats, error)
	GetReportRows(ctx context.Context, tx *gorm.DB) ([]*CourseReportRow, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status models.CourseStatus) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.Category) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error)
}

type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Lesson, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error
	NextOrderIndex(ctx context.Context, tx *gorm.DB, courseID uint) (int, error)
	Reorder(ctx context.Context, tx *gorm.DB, courseID uint, lessonIDs []uint) error
}
