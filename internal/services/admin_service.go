package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/cache"
	"github.com/SAP-F-2025/learning-platform-service/internal/events"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
)

type adminService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	cacheManager   *cache.CacheManager
	eventPublisher events.EventPublisher
}

func NewAdminService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager, publisher events.EventPublisher) AdminService {
	return &adminService{
		repo:           repo,
		db:             db,
		logger:         logger,
		cacheManager:   cacheManager,
		eventPublisher: publisher,
	}
}

// GetPlatformStats counts active users per role, published courses and
// enrollment totals. Every surface showing platform stats goes through here
// so the numbers never disagree.
func (s *adminService) GetPlatformStats(ctx context.Context) (*repositories.PlatformStats, error) {
	stats := &repositories.PlatformStats{}

	var err error
	if stats.TotalStudents, err = s.repo.User().CountByRole(ctx, s.db, models.RoleStudent, true); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if stats.TotalInstructors, err = s.repo.User().CountByRole(ctx, s.db, models.RoleInstructor, true); err != nil {
		return nil, fmt.Errorf("failed to count instructors: %w", err)
	}
	var admins int64
	if admins, err = s.repo.User().CountByRole(ctx, s.db, models.RoleAdmin, true); err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	stats.TotalUsers = stats.TotalStudents + stats.TotalInstructors + admins

	if stats.TotalCourses, err = s.repo.Course().CountByStatus(ctx, s.db, models.StatusPublished); err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if stats.TotalEnrollments, err = s.repo.Enrollment().CountAll(ctx, s.db); err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	if stats.CompletedCourses, err = s.repo.Enrollment().CountCompleted(ctx, s.db); err != nil {
		return nil, fmt.Errorf("failed to count completed enrollments: %w", err)
	}

	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, filters repositories.UserFilters) ([]*UserResponse, int64, error) {
	users, total, err := s.repo.User().List(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}
	return responses, total, nil
}

func (s *adminService) SetUserActive(ctx context.Context, adminID, userID uint, active bool) error {
	if adminID == userID {
		return NewBusinessRuleError("self_deactivation", "admins cannot deactivate their own account")
	}

	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsActive == active {
		return nil
	}

	if err := s.repo.User().SetActive(ctx, s.db, userID, active); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user status: %w", err)
	}

	s.logger.Info("User active status changed",
		"user_id", userID,
		"active", active,
		"admin_id", adminID)

	if !active {
		event := events.NewEvent(events.EventUserDeactivated, events.UserEvent{
			UserID: userID,
			Email:  user.Email,
			Role:   string(user.Role),
		})
		if err := s.eventPublisher.Publish(ctx, events.TopicUserEvents, event); err != nil {
			s.logger.Warn("Failed to publish user event", "error", err, "user_id", userID)
		}
	}

	return nil
}

// DeleteUser removes the account and everything hanging off it in one
// transaction. Enrollment counters on affected courses are left untouched;
// they track lifetime sign-ups, not live membership.
func (s *adminService) DeleteUser(ctx context.Context, admin *models.User, userID uint, ipAddress string) error {
	if admin.ID == userID {
		return NewBusinessRuleError("self_deletion", "admins cannot delete their own account")
	}

	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.LessonProgress().DeleteByStudent(ctx, nil, userID); err != nil {
			return err
		}
		if err := txRepo.Enrollment().DeleteByStudent(ctx, nil, userID); err != nil {
			return err
		}
		if err := txRepo.Activity().DeleteByStudent(ctx, nil, userID); err != nil {
			return err
		}
		return txRepo.User().Delete(ctx, nil, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", userID, "admin_id", admin.ID)
	s.writeAuditLog(ctx, "user_deleted", admin.Email,
		fmt.Sprintf("deleted user %d (%s)", userID, user.Email), ipAddress)
	return nil
}

func (s *adminService) DeleteCourse(ctx context.Context, admin *models.User, courseID uint, ipAddress string) error {
	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.LessonProgress().DeleteByCourse(ctx, nil, courseID); err != nil {
			return err
		}
		if err := txRepo.Enrollment().DeleteByCourse(ctx, nil, courseID); err != nil {
			return err
		}
		if err := txRepo.Activity().DeleteByCourse(ctx, nil, courseID); err != nil {
			return err
		}
		if err := txRepo.Lesson().DeleteByCourse(ctx, nil, courseID); err != nil {
			return err
		}
		return txRepo.Course().Delete(ctx, nil, courseID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, s.cacheManager, courseID, course.InstructorID)

	s.logger.Info("Course deleted by admin", "course_id", courseID, "admin_id", admin.ID)
	s.writeAuditLog(ctx, "course_deleted", admin.Email,
		fmt.Sprintf("deleted course %d (%s)", courseID, course.Title), ipAddress)
	return nil
}

func (s *adminService) ListActivities(ctx context.Context, filters repositories.ActivityFilters) ([]*models.StudentActivity, int64, error) {
	activities, total, err := s.repo.Activity().List(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, total, nil
}

func (s *adminService) ListAuditLogs(ctx context.Context, filters repositories.AuditLogFilters) ([]*models.AuditLog, int64, error) {
	logs, total, err := s.repo.AuditLog().List(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

// writeAuditLog records the admin action after the fact. A failed insert is
// logged but never surfaced to the caller.
func (s *adminService) writeAuditLog(ctx context.Context, action, email, details, ipAddress string) {
	entry := &models.AuditLog{
		Action:  action,
		Email:   email,
		Details: &details,
	}
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	if err := s.repo.AuditLog().Create(ctx, s.db, entry); err != nil {
		s.logger.Warn("Failed to write audit log", "error", err, "action", action)
	}
}
