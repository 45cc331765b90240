package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

type lessonService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLessonService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) LessonService {
	return &lessonService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *lessonService) Create(ctx context.Context, courseID uint, req *validator.LessonCreateRequest, userID uint) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.requireEditable(ctx, courseID, userID, "add_lesson")
	if err != nil {
		return nil, err
	}

	var lesson *models.Lesson
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		orderIndex, err := txRepo.Lesson().NextOrderIndex(ctx, nil, course.ID)
		if err != nil {
			return fmt.Errorf("failed to compute order index: %w", err)
		}

		lesson = &models.Lesson{
			CourseID:        course.ID,
			Title:           req.Title,
			Content:         req.Content,
			VideoURL:        req.VideoURL,
			OrderIndex:      orderIndex,
			DurationMinutes: req.DurationMinutes,
			IsPreview:       req.IsPreview,
		}
		return txRepo.Lesson().Create(ctx, nil, lesson)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lesson created", "lesson_id", lesson.ID, "course_id", courseID)
	return lesson, nil
}

func (s *lessonService) Update(ctx context.Context, lessonID uint, req *validator.LessonUpdateRequest, userID uint) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, s.db, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	if _, err := s.requireEditable(ctx, lesson.CourseID, userID, "update_lesson"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Content != nil {
		lesson.Content = req.Content
	}
	if req.VideoURL != nil {
		lesson.VideoURL = req.VideoURL
	}
	if req.DurationMinutes != nil {
		lesson.DurationMinutes = *req.DurationMinutes
	}
	if req.IsPreview != nil {
		lesson.IsPreview = *req.IsPreview
	}
	lesson.UpdatedAt = time.Now()

	if err := s.repo.Lesson().Update(ctx, s.db, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}

	return lesson, nil
}

func (s *lessonService) Delete(ctx context.Context, lessonID uint, userID uint) error {
	lesson, err := s.repo.Lesson().GetByID(ctx, s.db, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to get lesson: %w", err)
	}

	if _, err := s.requireEditable(ctx, lesson.CourseID, userID, "delete_lesson"); err != nil {
		return err
	}

	if err := s.repo.Lesson().Delete(ctx, s.db, lessonID); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	s.logger.Info("Lesson deleted", "lesson_id", lessonID, "deleted_by", userID)
	return nil
}

func (s *lessonService) GetByCourse(ctx context.Context, courseID uint, viewer *models.User) ([]*models.Lesson, error) {
	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if course.Status != models.StatusPublished {
		allowed := viewer != nil && (viewer.Role == models.RoleAdmin || course.InstructorID == viewer.ID)
		if !allowed {
			return nil, ErrCourseNotFound
		}
	}

	return s.repo.Lesson().GetByCourse(ctx, s.db, courseID)
}

// Reorder validates that the submitted IDs are exactly the course's lessons,
// then rewrites order_index in one transaction.
func (s *lessonService) Reorder(ctx context.Context, courseID uint, req *validator.LessonReorderRequest, userID uint) ([]*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.requireEditable(ctx, courseID, userID, "reorder_lessons"); err != nil {
		return nil, err
	}

	existing, err := s.repo.Lesson().GetByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	if len(req.LessonIDs) != len(existing) {
		return nil, NewBusinessRuleError("lesson_reorder", "lesson list must contain every lesson of the course exactly once")
	}
	known := make(map[uint]bool, len(existing))
	for _, lesson := range existing {
		known[lesson.ID] = true
	}
	seen := make(map[uint]bool, len(req.LessonIDs))
	for _, id := range req.LessonIDs {
		if !known[id] || seen[id] {
			return nil, NewBusinessRuleError("lesson_reorder", "lesson list must contain every lesson of the course exactly once")
		}
		seen[id] = true
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Lesson().Reorder(ctx, nil, courseID, req.LessonIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reorder lessons: %w", err)
	}

	return s.repo.Lesson().GetByCourse(ctx, s.db, courseID)
}

// requireEditable loads the course and checks owner-or-admin on it
func (s *lessonService) requireEditable(ctx context.Context, courseID, userID uint, action string) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role != models.RoleAdmin && course.InstructorID != user.ID {
		return nil, NewPermissionError(userID, courseID, "course", action, "not owner or insufficient permissions")
	}

	return course, nil
}
