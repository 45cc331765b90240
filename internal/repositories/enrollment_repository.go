package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, error)
	Exists(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// GetByStudent joins course, category and instructor for the dashboard,
	// ordered by last_accessed_at descending.
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Enrollment, error)

	UpdateProgress(ctx context.Context, tx *gorm.DB, id uint, progress float64, completedAt *bool) error
	TouchLastAccessed(ctx context.Context, tx *gorm.DB, id uint) error

	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error
	DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
	CountCompleted(ctx context.Context, tx *gorm.DB) (int64, error)
}

type LessonProgressRepository interface {
	GetByEnrollmentAndLesson(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint) (*models.LessonProgress, error)

	// UpsertComplete marks a lesson complete and adds timeSpent to the
	// accumulator. Completion is one-way; time is additive, not idempotent.
	UpsertComplete(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint, timeSpent int) (*models.LessonProgress, error)

	// UpsertTime adds timeSpent without touching the completion flag.
	// Returns true when this call created the row (first access).
	UpsertTime(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint, timeSpent int) (bool, error)

	CountCompleted(ctx context.Context, tx *gorm.DB, enrollmentID uint) (int64, error)
	GetLessonsWithProgress(ctx context.Context, tx *gorm.DB, enrollmentID, courseID uint) ([]*LessonWithProgress, error)
	DeleteByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) error

	// DeleteByCourse removes progress rows for every enrollment of the
	// course. Used by the course delete cascade.
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error

	// DeleteByStudent removes progress rows for every enrollment of the
	// student. Used by the user delete cascade.
	DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error
}
