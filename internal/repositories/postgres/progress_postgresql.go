package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
)

type LessonProgressPostgreSQL struct {
	db *gorm.DB
}

func NewLessonProgressPostgreSQL(db *gorm.DB) repositories.LessonProgressRepository {
	return &LessonProgressPostgreSQL{db: db}
}

func (p *LessonProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *LessonProgressPostgreSQL) GetByEnrollmentAndLesson(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint) (*models.LessonProgress, error) {
	var progress models.LessonProgress
	err := p.getDB(tx).WithContext(ctx).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lesson progress: %w", err)
	}
	return &progress, nil
}

// UpsertComplete marks a lesson complete and adds timeSpent to the
// accumulator in one statement. completed_at is only stamped on the first
// completion; re-completions keep the original timestamp.
func (p *LessonProgressPostgreSQL) UpsertComplete(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint, timeSpent int) (*models.LessonProgress, error) {
	db := p.getDB(tx).WithContext(ctx)
	now := time.Now()

	progress := models.LessonProgress{
		EnrollmentID:     enrollmentID,
		LessonID:         lessonID,
		IsCompleted:      true,
		TimeSpentSeconds: timeSpent,
		CompletedAt:      &now,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_completed":       true,
			"time_spent_seconds": gorm.Expr("lesson_progress.time_spent_seconds + ?", timeSpent),
			"completed_at":       gorm.Expr("COALESCE(lesson_progress.completed_at, ?)", now),
			"updated_at":         now,
		}),
	}).Create(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert lesson completion: %w", err)
	}

	// Re-read so the caller sees the merged row, not the insert candidate.
	return p.GetByEnrollmentAndLesson(ctx, tx, enrollmentID, lessonID)
}

// UpsertTime adds timeSpent without touching the completion flag. The
// returned bool is true when this call created the row, which signals the
// student's first access to the lesson.
func (p *LessonProgressPostgreSQL) UpsertTime(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint, timeSpent int) (bool, error) {
	db := p.getDB(tx).WithContext(ctx)
	now := time.Now()

	result := db.Model(&models.LessonProgress{}).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		Updates(map[string]interface{}{
			"time_spent_seconds": gorm.Expr("time_spent_seconds + ?", timeSpent),
			"updated_at":         now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to add lesson time: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	progress := models.LessonProgress{
		EnrollmentID:     enrollmentID,
		LessonID:         lessonID,
		TimeSpentSeconds: timeSpent,
	}
	if err := db.Create(&progress).Error; err != nil {
		// Lost a race with a concurrent insert; retry as an update.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			_, retryErr := p.UpsertTime(ctx, tx, enrollmentID, lessonID, timeSpent)
			return false, retryErr
		}
		return false, fmt.Errorf("failed to create lesson progress: %w", err)
	}

	return true, nil
}

func (p *LessonProgressPostgreSQL) CountCompleted(ctx context.Context, tx *gorm.DB, enrollmentID uint) (int64, error) {
	var count int64
	err := p.getDB(tx).WithContext(ctx).
		Model(&models.LessonProgress{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollmentID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	return count, nil
}

// GetLessonsWithProgress returns every lesson of the course left-joined with
// the student's progress rows, in course order. Lessons never touched come
// back with zero values.
func (p *LessonProgressPostgreSQL) GetLessonsWithProgress(ctx context.Context, tx *gorm.DB, enrollmentID, courseID uint) ([]*repositories.LessonWithProgress, error) {
	db := p.getDB(tx).WithContext(ctx)

	var lessons []models.Lesson
	err := db.Where("course_id = ?", courseID).
		Order("order_index ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	var rows []models.LessonProgress
	err = db.Where("enrollment_id = ?", enrollmentID).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson progress: %w", err)
	}

	byLesson := make(map[uint]*models.LessonProgress, len(rows))
	for i := range rows {
		byLesson[rows[i].LessonID] = &rows[i]
	}

	result := make([]*repositories.LessonWithProgress, 0, len(lessons))
	for _, lesson := range lessons {
		entry := &repositories.LessonWithProgress{Lesson: lesson}
		if row, ok := byLesson[lesson.ID]; ok {
			entry.IsCompleted = row.IsCompleted
			entry.TimeSpentSeconds = row.TimeSpentSeconds
			entry.CompletedAt = row.CompletedAt
		}
		result = append(result, entry)
	}

	return result, nil
}

func (p *LessonProgressPostgreSQL) DeleteByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) error {
	err := p.getDB(tx).WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Delete(&models.LessonProgress{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete lesson progress: %w", err)
	}
	return nil
}

func (p *LessonProgressPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	err := p.getDB(tx).WithContext(ctx).
		Where("enrollment_id IN (?)",
			p.getDB(tx).Model(&models.Enrollment{}).Select("id").Where("course_id = ?", courseID)).
		Delete(&models.LessonProgress{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete lesson progress for course: %w", err)
	}
	return nil
}

func (p *LessonProgressPostgreSQL) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error {
	err := p.getDB(tx).WithContext(ctx).
		Where("enrollment_id IN (?)",
			p.getDB(tx).Model(&models.Enrollment{}).Select("id").Where("student_id = ?", studentID)).
		Delete(&models.LessonProgress{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete lesson progress for student: %w", err)
	}
	return nil
}
