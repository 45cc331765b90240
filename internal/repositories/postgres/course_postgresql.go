package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/cache"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// Create creates a new course and invalidates list caches
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, fmt.Sprintf("instructor:%d:*", course.InstructorID))
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "list:*")

	return nil
}

// GetByID retrieves a course with its instructor and category, cached
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		err := c.getDB(tx).WithContext(ctx).
			Preload("Instructor").
			Preload("Category").
			First(&dbCourse, id).Error
		if err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &course, nil
}

// GetByIDWithDetails retrieves a course with lessons ordered by position
func (c *CoursePostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	cacheKey := fmt.Sprintf("details:%d", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		err := c.getDB(tx).WithContext(ctx).
			Preload("Instructor").
			Preload("Category").
			Preload("Lessons", func(db *gorm.DB) *gorm.DB {
				return db.Order("lessons.order_index ASC")
			}).
			First(&dbCourse, id).Error
		if err != nil {
			return nil, err
		}

		c.calculateComputedFields(&dbCourse)
		return &dbCourse, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &course, nil
}

func (c *CoursePostgreSQL) calculateComputedFields(course *models.Course) {
	course.LessonCount = len(course.Lessons)
	total := 0
	for _, lesson := range course.Lessons {
		total += lesson.DurationMinutes
	}
	course.TotalDuration = total
}

// Update updates mutable course fields and invalidates cache
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", course.ID).
		Updates(map[string]interface{}{
			"title":         course.Title,
			"slug":          course.Slug,
			"description":   course.Description,
			"level":         course.Level,
			"price":         course.Price,
			"category_id":   course.CategoryID,
			"thumbnail_url": course.ThumbnailURL,
			"updated_at":    course.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, course.InstructorID)
	return nil
}

// UpdateStatus transitions the course lifecycle state. A nil reason clears
// any previous rejection reason.
func (c *CoursePostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.CourseStatus, reason *string) error {
	var course models.Course
	if err := c.getDB(tx).WithContext(ctx).Select("id, instructor_id").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get course before status update: %w", err)
	}

	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"rejection_reason": reason,
			"updated_at":       time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update course status: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id, course.InstructorID)
	return nil
}

// Delete hard deletes a course row
func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var course models.Course
	if err := c.getDB(tx).WithContext(ctx).Select("id, instructor_id").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get course before delete: %w", err)
	}

	if err := c.getDB(tx).WithContext(ctx).Delete(&models.Course{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id, course.InstructorID)
	return nil
}

// List returns a filtered page and the total matching that same filter set
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return c.list(ctx, tx, filters, false)
}

// ListForAdmin surfaces pending courses first so review queues do not
// require a separate endpoint.
func (c *CoursePostgreSQL) ListForAdmin(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return c.list(ctx, tx, filters, true)
}

func (c *CoursePostgreSQL) list(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters, adminOrder bool) ([]*models.Course, int64, error) {
	query := c.getDB(tx).WithContext(ctx).Model(&models.Course{})
	query = c.helpers.ApplyCourseFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query = query.Preload("Instructor").Preload("Category")

	if adminOrder {
		// Status values are compile-time constants, not user input.
		query = query.Order("CASE status WHEN 'pending' THEN 0 WHEN 'published' THEN 1 WHEN 'draft' THEN 2 ELSE 3 END, created_at DESC")
		if filters.Limit > 0 {
			query = query.Limit(filters.Limit)
		}
		if filters.Offset > 0 {
			query = query.Offset(filters.Offset)
		}
	} else {
		query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	}

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

func (c *CoursePostgreSQL) GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	filters.InstructorID = &instructorID
	return c.list(ctx, tx, filters, false)
}

// IncrementEnrollmentCount adjusts the denormalized counter. Callers run this
// inside the same transaction as the enrollment insert or delete.
func (c *CoursePostgreSQL) IncrementEnrollmentCount(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Update("enrollment_count", gorm.Expr("enrollment_count + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to update enrollment count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.SafeDelete(ctx, c.cacheManager.Course,
		fmt.Sprintf("id:%d", id),
		fmt.Sprintf("details:%d", id))
	return nil
}

// GetInstructorStats aggregates course and enrollment numbers for one
// instructor, cached under the stats prefix.
func (c *CoursePostgreSQL) GetInstructorStats(ctx context.Context, tx *gorm.DB, instructorID uint) (*repositories.InstructorStats, error) {
	cacheKey := fmt.Sprintf("instructor:%d:overview", instructorID)
	var stats repositories.InstructorStats

	err := c.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := c.getDB(tx).WithContext(ctx)
		var result repositories.InstructorStats

		type statusCount struct {
			Status models.CourseStatus
			Count  int
		}
		var byStatus []statusCount
		err := db.Model(&models.Course{}).
			Select("status, COUNT(*) as count").
			Where("instructor_id = ?", instructorID).
			Group("status").
			Scan(&byStatus).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count courses by status: %w", err)
		}
		for _, sc := range byStatus {
			result.TotalCourses += sc.Count
			switch sc.Status {
			case models.StatusPublished:
				result.PublishedCourses = sc.Count
			case models.StatusDraft:
				result.DraftCourses = sc.Count
			}
		}

		var enrollments int64
		err = db.Model(&models.Enrollment{}).
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.instructor_id = ?", instructorID).
			Count(&enrollments).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count instructor enrollments: %w", err)
		}
		result.TotalEnrollments = int(enrollments)

		var avg *float64
		err = db.Model(&models.Enrollment{}).
			Select("AVG(enrollments.progress)").
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.instructor_id = ?", instructorID).
			Scan(&avg).Error
		if err != nil {
			return nil, fmt.Errorf("failed to compute average progress: %w", err)
		}
		if avg != nil {
			result.AverageProgress = *avg
		}

		return &result, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetReportRows collects the flattened per-course rows for the admin export
func (c *CoursePostgreSQL) GetReportRows(ctx context.Context, tx *gorm.DB) ([]*repositories.CourseReportRow, error) {
	var rows []*repositories.CourseReportRow
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Select(`courses.id as course_id,
			courses.title,
			courses.status,
			users.first_name || ' ' || users.last_name as instructor_name,
			COALESCE(categories.name, '') as category_name,
			courses.price,
			courses.enrollment_count,
			COALESCE(AVG(enrollments.progress), 0) as average_progress`).
		Joins("JOIN users ON users.id = courses.instructor_id").
		Joins("LEFT JOIN categories ON categories.id = courses.category_id").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Group("courses.id, courses.title, courses.status, users.first_name, users.last_name, categories.name, courses.price, courses.enrollment_count").
		Order("courses.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build course report: %w", err)
	}
	return rows, nil
}

func (c *CoursePostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, status models.CourseStatus) (int64, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count courses by status: %w", err)
	}
	return count, nil
}
