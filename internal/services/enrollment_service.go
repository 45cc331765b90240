package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/events"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

type enrollmentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// Enroll creates the enrollment row and bumps the denormalized counter in
// one transaction so the counter can never drift from the rows.
func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (*EnrollmentResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateEnrollmentTarget(course.Status); len(errs) > 0 {
		return nil, errs
	}

	enrollment := &models.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Enrollment().Exists(ctx, nil, studentID, courseID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if exists {
			return ErrAlreadyEnrolled
		}

		if err := txRepo.Enrollment().Create(ctx, nil, enrollment); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("failed to create enrollment: %w", err)
		}

		return txRepo.Course().IncrementEnrollmentCount(ctx, nil, courseID, 1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student enrolled", "student_id", studentID, "course_id", courseID)

	s.logEnrollActivity(ctx, studentID, course)
	s.publishEnrollmentEvent(ctx, events.EventCourseEnrolled, enrollment)

	enrollment.Course = *course
	return toEnrollmentResponse(enrollment), nil
}

// Unenroll removes the enrollment, its progress rows and the counter
// increment in one transaction. Prior lesson progress is lost on purpose: a
// re-enrollment starts a fresh row.
func (s *enrollmentService) Unenroll(ctx context.Context, studentID, courseID uint) error {
	enrollment, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, s.db, studentID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to get enrollment: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.LessonProgress().DeleteByEnrollment(ctx, nil, enrollment.ID); err != nil {
			return err
		}
		if err := txRepo.Enrollment().Delete(ctx, nil, enrollment.ID); err != nil {
			return err
		}
		return txRepo.Course().IncrementEnrollmentCount(ctx, nil, courseID, -1)
	})
	if err != nil {
		return fmt.Errorf("failed to unenroll: %w", err)
	}

	s.logger.Info("Student unenrolled", "student_id", studentID, "course_id", courseID)

	s.publishEnrollmentEvent(ctx, events.EventCourseUnenrolled, enrollment)
	return nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	exists, err := s.repo.Enrollment().Exists(ctx, s.db, studentID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

func (s *enrollmentService) GetMyCourses(ctx context.Context, studentID uint) ([]*EnrollmentResponse, error) {
	enrollments, err := s.repo.Enrollment().GetByStudent(ctx, s.db, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	responses := make([]*EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, toEnrollmentResponse(enrollment))
	}
	return responses, nil
}

// logEnrollActivity is best-effort telemetry
func (s *enrollmentService) logEnrollActivity(ctx context.Context, studentID uint, course *models.Course) {
	metadata, err := json.Marshal(map[string]interface{}{
		"course_title": course.Title,
	})
	if err != nil {
		return
	}

	activity := &models.StudentActivity{
		StudentID:    studentID,
		CourseID:     course.ID,
		ActivityType: models.ActivityCourseEnrolled,
		Metadata:     datatypes.JSON(metadata),
	}
	if err := s.repo.Activity().Create(ctx, s.db, activity); err != nil {
		s.logger.Warn("Failed to log enrollment activity", "error", err, "course_id", course.ID)
	}
}

func (s *enrollmentService) publishEnrollmentEvent(ctx context.Context, eventType string, enrollment *models.Enrollment) {
	event := events.NewEvent(eventType, events.EnrollmentEvent{
		EnrollmentID: enrollment.ID,
		StudentID:    enrollment.StudentID,
		CourseID:     enrollment.CourseID,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicEnrollmentEvents, event); err != nil {
		s.logger.Warn("Failed to publish enrollment event", "error", err, "event_type", eventType)
	}
}

func toEnrollmentResponse(enrollment *models.Enrollment) *EnrollmentResponse {
	resp := &EnrollmentResponse{
		ID:             enrollment.ID,
		Progress:       enrollment.Progress,
		EnrolledAt:     enrollment.EnrolledAt,
		LastAccessedAt: enrollment.LastAccessedAt,
		CompletedAt:    enrollment.CompletedAt,
	}
	if enrollment.Course.ID != 0 {
		resp.Course = toCourseResponse(&enrollment.Course)
	}
	return resp
}
