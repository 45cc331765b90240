package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/events"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

type courseService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *validator.CourseCreateRequest, instructorID uint) (*CourseResponse, error) {
	s.logger.Info("Creating course", "instructor_id", instructorID, "title", req.Title)

	if errors := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errors) > 0 {
		return nil, errors
	}

	instructor, err := s.repo.User().GetByID(ctx, s.db, instructorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load instructor: %w", err)
	}
	if instructor.Role != models.RoleInstructor && instructor.Role != models.RoleAdmin {
		return nil, NewPermissionError(instructorID, 0, "course", "create", "insufficient role permissions")
	}

	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, s.db, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
	}

	status := models.StatusDraft
	if req.Publish {
		// Publishing at creation obeys the same transition rules as the
		// publish endpoint; a course with no lessons cannot go live.
		if errors := s.validator.GetBusinessValidator().ValidateStatusTransition(models.StatusDraft, models.StatusPublished, 0); len(errors) > 0 {
			return nil, errors
		}
		status = models.StatusPublished
	}

	course := &models.Course{
		Title:        req.Title,
		Slug:         models.Slugify(req.Title),
		Description:  req.Description,
		Status:       status,
		Level:        req.Level,
		Price:        req.Price,
		InstructorID: instructorID,
		CategoryID:   req.CategoryID,
	}

	if err := s.repo.Course().Create(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "status", course.Status)

	if course.Status == models.StatusPublished {
		s.publishCourseEvent(ctx, events.EventCoursePublished, course, nil)
	}

	return s.getCourseResponse(ctx, course.ID)
}

func (s *courseService) GetByID(ctx context.Context, id uint, viewer *models.User) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	// Unpublished courses are only visible to the owner and admins.
	if course.Status != models.StatusPublished && !s.canView(course, viewer) {
		return nil, ErrCourseNotFound
	}

	return toCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *validator.CourseUpdateRequest, userID uint) (*CourseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, user, err := s.loadCourseAndActor(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(course, user) {
		return nil, NewPermissionError(userID, id, "course", "update", "not owner or insufficient permissions")
	}

	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, s.db, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		course.CategoryID = req.CategoryID
	}

	if req.Title != nil {
		course.Title = *req.Title
		course.Slug = models.Slugify(*req.Title)
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Thumbnail != nil {
		course.ThumbnailURL = req.Thumbnail
	}
	course.UpdatedAt = time.Now()

	if err := s.repo.Course().Update(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return s.getCourseResponse(ctx, id)
}

// Delete cascades in one transaction: progress, enrollments, activities,
// lessons, then the course row.
func (s *courseService) Delete(ctx context.Context, id uint, userID uint) error {
	course, user, err := s.loadCourseAndActor(ctx, id, userID)
	if err != nil {
		return err
	}
	if !s.canEdit(course, user) {
		return NewPermissionError(userID, id, "course", "delete", "not owner or insufficient permissions")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.LessonProgress().DeleteByCourse(ctx, nil, id); err != nil {
			return err
		}
		if err := txRepo.Enrollment().DeleteByCourse(ctx, nil, id); err != nil {
			return err
		}
		if err := txRepo.Activity().DeleteByCourse(ctx, nil, id); err != nil {
			return err
		}
		if err := txRepo.Lesson().DeleteByCourse(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.Course().Delete(ctx, nil, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("Course deleted", "course_id", id, "deleted_by", userID)
	return nil
}

// ===== LISTING =====

func (s *courseService) List(ctx context.Context, req *validator.CourseListRequest) (*CourseListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	filters := s.buildFilters(req)
	published := models.StatusPublished
	filters.Status = &published

	courses, total, err := s.repo.Course().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return s.buildListResponse(courses, total, filters), nil
}

func (s *courseService) ListForAdmin(ctx context.Context, req *validator.CourseListRequest) (*CourseListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	filters := s.buildFilters(req)

	courses, total, err := s.repo.Course().ListForAdmin(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return s.buildListResponse(courses, total, filters), nil
}

func (s *courseService) GetByInstructor(ctx context.Context, instructorID uint, req *validator.CourseListRequest) (*CourseListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	filters := s.buildFilters(req)

	courses, total, err := s.repo.Course().GetByInstructor(ctx, s.db, instructorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}

	return s.buildListResponse(courses, total, filters), nil
}

// ===== LIFECYCLE TRANSITIONS =====

func (s *courseService) Publish(ctx context.Context, id uint, userID uint) (*CourseResponse, error) {
	return s.transition(ctx, id, userID, models.StatusPublished, nil, false)
}

func (s *courseService) Submit(ctx context.Context, id uint, userID uint) (*CourseResponse, error) {
	return s.transition(ctx, id, userID, models.StatusPending, nil, false)
}

func (s *courseService) Approve(ctx context.Context, id uint, adminID uint) (*CourseResponse, error) {
	return s.transition(ctx, id, adminID, models.StatusPublished, nil, true)
}

func (s *courseService) Reject(ctx context.Context, id uint, adminID uint, reason string) (*CourseResponse, error) {
	course, admin, err := s.loadCourseAndActor(ctx, id, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != models.RoleAdmin {
		return nil, NewPermissionError(adminID, id, "course", "reject", "admin role required")
	}

	if errs := s.validator.GetBusinessValidator().ValidateRejection(course.Status, reason); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Course().UpdateStatus(ctx, s.db, id, models.StatusDraft, &reason); err != nil {
		return nil, fmt.Errorf("failed to reject course: %w", err)
	}

	s.logger.Info("Course rejected", "course_id", id, "admin_id", adminID)

	s.notifyInstructor(ctx, course, models.StatusDraft, &reason)
	s.publishCourseEvent(ctx, events.EventCourseRejected, course, &reason)

	return s.getCourseResponse(ctx, id)
}

func (s *courseService) Archive(ctx context.Context, id uint, userID uint) (*CourseResponse, error) {
	return s.transition(ctx, id, userID, models.StatusArchived, nil, false)
}

func (s *courseService) GetInstructorStats(ctx context.Context, instructorID uint) (*repositories.InstructorStats, error) {
	return s.repo.Course().GetInstructorStats(ctx, s.db, instructorID)
}

// transition applies a validated status change. adminOnly gates the approve
// path; publish/submit/archive are owner-or-admin.
func (s *courseService) transition(ctx context.Context, id, userID uint, newStatus models.CourseStatus, reason *string, adminOnly bool) (*CourseResponse, error) {
	course, user, err := s.loadCourseAndActor(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if adminOnly {
		if user.Role != models.RoleAdmin {
			return nil, NewPermissionError(userID, id, "course", "approve", "admin role required")
		}
	} else if !s.canEdit(course, user) {
		return nil, NewPermissionError(userID, id, "course", "update_status", "not owner or insufficient permissions")
	}

	lessonCount, err := s.repo.Lesson().CountByCourse(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(course.Status, newStatus, int(lessonCount)); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Course().UpdateStatus(ctx, s.db, id, newStatus, reason); err != nil {
		return nil, fmt.Errorf("failed to update course status: %w", err)
	}

	s.logger.Info("Course status changed",
		"course_id", id,
		"from", course.Status,
		"to", newStatus,
		"changed_by", userID)

	if user.Role == models.RoleAdmin && user.ID != course.InstructorID {
		s.notifyInstructor(ctx, course, newStatus, reason)
	}

	switch newStatus {
	case models.StatusPublished:
		s.publishCourseEvent(ctx, events.EventCoursePublished, course, nil)
	case models.StatusPending:
		s.publishCourseEvent(ctx, events.EventCourseSubmitted, course, nil)
	case models.StatusArchived:
		s.publishCourseEvent(ctx, events.EventCourseArchived, course, nil)
	}

	return s.getCourseResponse(ctx, id)
}
