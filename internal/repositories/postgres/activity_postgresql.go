package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
)

type ActivityPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *ActivityPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *ActivityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, activity *models.StudentActivity) error {
	if err := a.getDB(tx).WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (a *ActivityPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentActivity, error) {
	var activity models.StudentActivity
	if err := a.getDB(tx).WithContext(ctx).First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &activity, nil
}

func (a *ActivityPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ActivityFilters) ([]*models.StudentActivity, int64, error) {
	query := a.getDB(tx).WithContext(ctx).Model(&models.StudentActivity{})
	query = a.helpers.ApplyActivityFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	var activities []*models.StudentActivity
	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, total, nil
}

func (a *ActivityPostgreSQL) GetRecent(ctx context.Context, tx *gorm.DB, studentID uint, limit int) ([]*models.StudentActivity, error) {
	var activities []*models.StudentActivity
	err := a.getDB(tx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}
	return activities, nil
}

// GetDailyCounts buckets activity per calendar day over the trailing window.
// The window length is always a bound parameter, never interpolated.
func (a *ActivityPostgreSQL) GetDailyCounts(ctx context.Context, tx *gorm.DB, studentID uint, periodDays int) ([]*repositories.ActivityDayCount, error) {
	since := time.Now().AddDate(0, 0, -periodDays)

	var counts []*repositories.ActivityDayCount
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.StudentActivity{}).
		Select("DATE_TRUNC('day', created_at) as day, COUNT(*) as count").
		Where("student_id = ? AND created_at >= ?", studentID, since).
		Group("DATE_TRUNC('day', created_at)").
		Order("day ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily activity counts: %w", err)
	}
	return counts, nil
}

// notificationTypes are the activity rows the notification feed surfaces;
// everything else is plain history.
var notificationTypes = []models.ActivityType{
	models.ActivityStatusNotification,
	models.ActivityCourseCompleted,
}

func (a *ActivityPostgreSQL) GetNotifications(ctx context.Context, tx *gorm.DB, studentID uint, unreadOnly bool, limit int) ([]*models.StudentActivity, error) {
	query := a.getDB(tx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("activity_type IN ?", notificationTypes)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var activities []*models.StudentActivity
	err := query.Order("created_at DESC").Limit(limit).Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return activities, nil
}

// MarkRead stamps read_at once; already-read notifications are left alone.
// Scoping by student_id keeps users out of each other's feeds, and the type
// filter keeps plain activity rows (lesson_started etc.) unstampable.
func (a *ActivityPostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, id, studentID uint) error {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.StudentActivity{}).
		Where("id = ? AND student_id = ? AND activity_type IN ? AND read_at IS NULL", id, studentID, notificationTypes).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish missing from already-read.
		var count int64
		err := a.getDB(tx).WithContext(ctx).
			Model(&models.StudentActivity{}).
			Where("id = ? AND student_id = ? AND activity_type IN ?", id, studentID, notificationTypes).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check notification: %w", err)
		}
		if count == 0 {
			return repositories.ErrNotFound
		}
	}
	return nil
}

func (a *ActivityPostgreSQL) ExistsForPair(ctx context.Context, tx *gorm.DB, studentID, courseID uint, activityType models.ActivityType) (bool, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.StudentActivity{}).
		Where("student_id = ? AND course_id = ? AND activity_type = ?", studentID, courseID, activityType).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check activity existence: %w", err)
	}
	return count > 0, nil
}

func (a *ActivityPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	err := a.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.StudentActivity{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete activities for course: %w", err)
	}
	return nil
}

func (a *ActivityPostgreSQL) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error {
	err := a.getDB(tx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.StudentActivity{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete activities for student: %w", err)
	}
	return nil
}
