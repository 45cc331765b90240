package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/events"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

type progressService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) ProgressService {
	return &progressService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

func (s *progressService) GetCourseProgress(ctx context.Context, studentID, courseID uint) (*CourseProgressResponse, error) {
	enrollment, err := s.getEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return s.buildProgressResponse(ctx, enrollment, courseID)
}

// MarkLessonComplete upserts the completion row, recomputes the enrollment
// percentage and, on the crossing into 100, stamps completed_at and appends
// the course_completed activity. The whole group runs in one transaction.
// Time is additive: repeated calls keep accruing the accumulator.
func (s *progressService) MarkLessonComplete(ctx context.Context, studentID, courseID, lessonID uint, timeSpentSeconds int) (*CourseProgressResponse, error) {
	if timeSpentSeconds < 0 {
		return nil, validator.ValidationErrors{{
			Field:   "time_spent_seconds",
			Message: "must not be negative",
			Value:   timeSpentSeconds,
			Rule:    "gte",
		}}
	}

	enrollment, err := s.getEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.requireLessonInCourse(ctx, lessonID, courseID); err != nil {
		return nil, err
	}

	var (
		newProgress   float64
		justCompleted bool
	)

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.LessonProgress().UpsertComplete(ctx, nil, enrollment.ID, lessonID, timeSpentSeconds); err != nil {
			return err
		}

		completed, err := txRepo.LessonProgress().CountCompleted(ctx, nil, enrollment.ID)
		if err != nil {
			return fmt.Errorf("failed to count completed lessons: %w", err)
		}
		total, err := txRepo.Lesson().CountByCourse(ctx, nil, courseID)
		if err != nil {
			return fmt.Errorf("failed to count lessons: %w", err)
		}

		newProgress = computeProgress(completed, total)

		// Completion fires only on the crossing into 100, and never twice:
		// an already stamped completed_at suppresses the side effect.
		justCompleted = newProgress >= 100 && enrollment.Progress < 100 && enrollment.CompletedAt == nil

		var completeFlag *bool
		if justCompleted {
			flag := true
			completeFlag = &flag
		}

		if err := txRepo.Enrollment().UpdateProgress(ctx, nil, enrollment.ID, newProgress, completeFlag); err != nil {
			return err
		}
		if err := txRepo.Enrollment().TouchLastAccessed(ctx, nil, enrollment.ID); err != nil {
			return err
		}

		if justCompleted {
			// Unenroll and re-enroll resets the enrollment row, so the
			// crossing can fire again for the same pair. The feed keeps a
			// single course_completed row per (student, course).
			already, err := txRepo.Activity().ExistsForPair(ctx, nil, studentID, courseID, models.ActivityCourseCompleted)
			if err != nil {
				return err
			}
			if !already {
				if err := s.appendActivity(ctx, txRepo, studentID, courseID, nil, models.ActivityCourseCompleted); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Telemetry outside the transaction is best-effort.
	s.logLessonActivity(ctx, studentID, courseID, lessonID, models.ActivityLessonCompleted)

	s.publishProgressEvent(ctx, events.EventLessonCompleted, studentID, courseID, &lessonID, newProgress)
	if justCompleted {
		s.logger.Info("Course completed", "student_id", studentID, "course_id", courseID)
		s.publishProgressEvent(ctx, events.EventCourseCompleted, studentID, courseID, nil, newProgress)
	}

	enrollment, err = s.getEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return s.buildProgressResponse(ctx, enrollment, courseID)
}

// UpdateLessonTime is the non-completing variant. First access to a lesson
// emits a lesson_started activity.
func (s *progressService) UpdateLessonTime(ctx context.Context, studentID, courseID, lessonID uint, timeSpentSeconds int) error {
	if timeSpentSeconds < 0 {
		return validator.ValidationErrors{{
			Field:   "time_spent_seconds",
			Message: "must not be negative",
			Value:   timeSpentSeconds,
			Rule:    "gte",
		}}
	}

	enrollment, err := s.getEnrollment(ctx, studentID, courseID)
	if err != nil {
		return err
	}

	if err := s.requireLessonInCourse(ctx, lessonID, courseID); err != nil {
		return err
	}

	var firstAccess bool
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		created, err := txRepo.LessonProgress().UpsertTime(ctx, nil, enrollment.ID, lessonID, timeSpentSeconds)
		if err != nil {
			return err
		}
		firstAccess = created

		return txRepo.Enrollment().TouchLastAccessed(ctx, nil, enrollment.ID)
	})
	if err != nil {
		return err
	}

	if firstAccess {
		s.logLessonActivity(ctx, studentID, courseID, lessonID, models.ActivityLessonStarted)
	}

	return nil
}

// ===== HELPERS =====

// computeProgress returns round(100*completed/total), 0 for empty courses
func computeProgress(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(100 * float64(completed) / float64(total))
}

func (s *progressService) getEnrollment(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, s.db, studentID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return enrollment, nil
}

func (s *progressService) requireLessonInCourse(ctx context.Context, lessonID, courseID uint) error {
	lesson, err := s.repo.Lesson().GetByID(ctx, s.db, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson.CourseID != courseID {
		return ErrLessonNotFound
	}
	return nil
}

func (s *progressService) buildProgressResponse(ctx context.Context, enrollment *models.Enrollment, courseID uint) (*CourseProgressResponse, error) {
	rows, err := s.repo.LessonProgress().GetLessonsWithProgress(ctx, s.db, enrollment.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course progress: %w", err)
	}

	items := make([]*LessonProgressItem, 0, len(rows))
	completed := 0
	for _, row := range rows {
		lesson := row.Lesson
		items = append(items, &LessonProgressItem{
			Lesson:           &lesson,
			IsCompleted:      row.IsCompleted,
			TimeSpentSeconds: row.TimeSpentSeconds,
			CompletedAt:      row.CompletedAt,
		})
		if row.IsCompleted {
			completed++
		}
	}

	return &CourseProgressResponse{
		CourseID:         courseID,
		Progress:         enrollment.Progress,
		CompletedLessons: completed,
		TotalLessons:     len(rows),
		CompletedAt:      enrollment.CompletedAt,
		Lessons:          items,
	}, nil
}

// appendActivity writes an activity row inside the caller's transaction
func (s *progressService) appendActivity(ctx context.Context, txRepo repositories.Repository, studentID, courseID uint, lessonID *uint, activityType models.ActivityType) error {
	activity := &models.StudentActivity{
		StudentID:    studentID,
		CourseID:     courseID,
		LessonID:     lessonID,
		ActivityType: activityType,
	}
	return txRepo.Activity().Create(ctx, nil, activity)
}

// logLessonActivity is best-effort telemetry outside transactions
func (s *progressService) logLessonActivity(ctx context.Context, studentID, courseID, lessonID uint, activityType models.ActivityType) {
	metadata, err := json.Marshal(map[string]interface{}{
		"lesson_id": lessonID,
	})
	if err != nil {
		return
	}

	activity := &models.StudentActivity{
		StudentID:    studentID,
		CourseID:     courseID,
		LessonID:     &lessonID,
		ActivityType: activityType,
		Metadata:     datatypes.JSON(metadata),
	}
	if err := s.repo.Activity().Create(ctx, s.db, activity); err != nil {
		s.logger.Warn("Failed to log lesson activity",
			"error", err,
			"activity_type", activityType,
			"lesson_id", lessonID)
	}
}

func (s *progressService) publishProgressEvent(ctx context.Context, eventType string, studentID, courseID uint, lessonID *uint, progress float64) {
	event := events.NewEvent(eventType, events.ProgressEvent{
		StudentID: studentID,
		CourseID:  courseID,
		LessonID:  lessonID,
		Progress:  progress,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicProgressEvents, event); err != nil {
		s.logger.Warn("Failed to publish progress event", "error", err, "event_type", eventType)
	}
}
