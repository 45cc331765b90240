package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
)

type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, activity *models.StudentActivity) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentActivity, error)
	List(ctx context.Context, tx *gorm.DB, filters ActivityFilters) ([]*models.StudentActivity, int64, error)

	// GetRecent returns the newest rows for a student, newest first.
	GetRecent(ctx context.Context, tx *gorm.DB, studentID uint, limit int) ([]*models.StudentActivity, error)

	// GetDailyCounts buckets a student's activity per calendar day over the
	// last periodDays days. periodDays is always bound as a parameter.
	GetDailyCounts(ctx context.Context, tx *gorm.DB, studentID uint, periodDays int) ([]*ActivityDayCount, error)

	// GetNotifications returns notification-tagged rows for a student.
	GetNotifications(ctx context.Context, tx *gorm.DB, studentID uint, unreadOnly bool, limit int) ([]*models.StudentActivity, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id, studentID uint) error

	ExistsForPair(ctx context.Context, tx *gorm.DB, studentID, courseID uint, activityType models.ActivityType) (bool, error)

	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error
	DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error
}
