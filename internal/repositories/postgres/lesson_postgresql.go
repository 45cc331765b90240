package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/cache"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
)

type LessonPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewLessonPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.LessonRepository {
	return &LessonPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (l *LessonPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

// invalidateCourse drops the cached course detail view, which embeds lessons
func (l *LessonPostgreSQL) invalidateCourse(ctx context.Context, courseID uint) {
	cache.SafeDelete(ctx, l.cacheManager.Course,
		fmt.Sprintf("id:%d", courseID),
		fmt.Sprintf("details:%d", courseID))
}

func (l *LessonPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if err := l.getDB(tx).WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	l.invalidateCourse(ctx, lesson.CourseID)
	return nil
}

func (l *LessonPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.getDB(tx).WithContext(ctx).First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (l *LessonPostgreSQL) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	result := l.getDB(tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", lesson.ID).
		Updates(map[string]interface{}{
			"title":            lesson.Title,
			"content":          lesson.Content,
			"video_url":        lesson.VideoURL,
			"duration_minutes": lesson.DurationMinutes,
			"is_preview":       lesson.IsPreview,
			"updated_at":       lesson.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	l.invalidateCourse(ctx, lesson.CourseID)
	return nil
}

func (l *LessonPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var lesson models.Lesson
	if err := l.getDB(tx).WithContext(ctx).Select("id, course_id").First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get lesson before delete: %w", err)
	}

	if err := l.getDB(tx).WithContext(ctx).Delete(&models.Lesson{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	l.invalidateCourse(ctx, lesson.CourseID)
	return nil
}

func (l *LessonPostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	err := l.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("order_index ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (l *LessonPostgreSQL) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := l.getDB(tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

func (l *LessonPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	err := l.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.Lesson{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete lessons for course: %w", err)
	}
	l.invalidateCourse(ctx, courseID)
	return nil
}

// NextOrderIndex returns max(order_index)+1 for a course, starting at 1
func (l *LessonPostgreSQL) NextOrderIndex(ctx context.Context, tx *gorm.DB, courseID uint) (int, error) {
	var max *int
	err := l.getDB(tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Select("MAX(order_index)").
		Where("course_id = ?", courseID).
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max order index: %w", err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// Reorder rewrites the order_index of every lesson in lessonIDs to its
// position in the slice. Callers run this inside a transaction after
// validating the ID set.
func (l *LessonPostgreSQL) Reorder(ctx context.Context, tx *gorm.DB, courseID uint, lessonIDs []uint) error {
	db := l.getDB(tx).WithContext(ctx)
	for i, lessonID := range lessonIDs {
		result := db.Model(&models.Lesson{}).
			Where("id = ? AND course_id = ?", lessonID, courseID).
			Update("order_index", i+1)
		if result.Error != nil {
			return fmt.Errorf("failed to reorder lesson %d: %w", lessonID, result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
	}

	l.invalidateCourse(ctx, courseID)
	return nil
}
