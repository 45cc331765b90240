package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
)

const (
	defaultActivityLimit     = 10
	maxActivityLimit         = 50
	defaultStatsPeriodDays   = 7
	maxStatsPeriodDays       = 90
	defaultNotificationLimit = 20
)

type activityService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewActivityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *activityService) GetRecent(ctx context.Context, studentID uint, limit int) ([]*models.StudentActivity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	activities, err := s.repo.Activity().GetRecent(ctx, s.db, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	return activities, nil
}

// GetStats buckets the student's activity per calendar day. The period is
// clamped to [1, 90] days; days with no activity are absent from the result.
func (s *activityService) GetStats(ctx context.Context, studentID uint, periodDays int) (*ActivityStatsResponse, error) {
	if periodDays <= 0 {
		periodDays = defaultStatsPeriodDays
	}
	if periodDays > maxStatsPeriodDays {
		periodDays = maxStatsPeriodDays
	}

	days, err := s.repo.Activity().GetDailyCounts(ctx, s.db, studentID, periodDays)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity stats: %w", err)
	}

	var total int64
	for _, day := range days {
		total += day.Count
	}

	return &ActivityStatsResponse{
		PeriodDays: periodDays,
		Days:       days,
		Total:      total,
	}, nil
}

func (s *activityService) GetNotifications(ctx context.Context, studentID uint, unreadOnly bool) ([]*models.StudentActivity, error) {
	notifications, err := s.repo.Activity().GetNotifications(ctx, s.db, studentID, unreadOnly, defaultNotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead is idempotent: marking an already-read notification
// succeeds without touching its read_at timestamp.
func (s *activityService) MarkNotificationRead(ctx context.Context, studentID, notificationID uint) error {
	err := s.repo.Activity().MarkRead(ctx, s.db, notificationID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
