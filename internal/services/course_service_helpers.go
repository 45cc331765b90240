package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-platform-service/internal/events"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

// ===== PERMISSION HELPERS =====

func (s *courseService) canView(course *models.Course, viewer *models.User) bool {
	if viewer == nil {
		return false
	}
	return viewer.Role == models.RoleAdmin || course.InstructorID == viewer.ID
}

func (s *courseService) canEdit(course *models.Course, user *models.User) bool {
	return user.Role == models.RoleAdmin || course.InstructorID == user.ID
}

// loadCourseAndActor fetches the course and acting user in one place so
// every mutation path shares the same not-found translation.
func (s *courseService) loadCourseAndActor(ctx context.Context, courseID, userID uint) (*models.Course, *models.User, error) {
	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrCourseNotFound
		}
		return nil, nil, fmt.Errorf("failed to get course: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	return course, user, nil
}

// ===== LISTING HELPERS =====

func (s *courseService) buildFilters(req *validator.CourseListRequest) repositories.CourseFilters {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	return repositories.CourseFilters{
		Level:      req.Level,
		CategoryID: req.CategoryID,
		Search:     req.Search,
		Limit:      limit,
		Offset:     (page - 1) * limit,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
}

func (s *courseService) buildListResponse(courses []*models.Course, total int64, filters repositories.CourseFilters) *CourseListResponse {
	responses := make([]*CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, toCourseResponse(course))
	}

	limit := filters.Limit
	if limit < 1 {
		limit = 10
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &CourseListResponse{
		Courses:    responses,
		Total:      total,
		Page:       filters.Offset/limit + 1,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func (s *courseService) getCourseResponse(ctx context.Context, id uint) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByIDWithDetails(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to reload course: %w", err)
	}
	return toCourseResponse(course), nil
}

func toCourseResponse(course *models.Course) *CourseResponse {
	resp := &CourseResponse{
		ID:              course.ID,
		Title:           course.Title,
		Slug:            course.Slug,
		Description:     course.Description,
		Status:          course.Status,
		Level:           course.Level,
		Price:           course.Price,
		InstructorID:    course.InstructorID,
		CategoryID:      course.CategoryID,
		EnrollmentCount: course.EnrollmentCount,
		LessonCount:     course.LessonCount,
		TotalDuration:   course.TotalDuration,
		ThumbnailURL:    course.ThumbnailURL,
		RejectionReason: course.RejectionReason,
		CreatedAt:       course.CreatedAt,
		UpdatedAt:       course.UpdatedAt,
	}

	if course.Instructor.ID != 0 {
		resp.InstructorName = course.Instructor.FullName()
	}
	if course.Category != nil {
		resp.CategoryName = &course.Category.Name
	}
	if len(course.Lessons) > 0 {
		lessons := make([]*models.Lesson, len(course.Lessons))
		for i := range course.Lessons {
			lessons[i] = &course.Lessons[i]
		}
		resp.Lessons = lessons
		if resp.LessonCount == 0 {
			resp.LessonCount = len(lessons)
		}
	}

	return resp
}

// ===== SIDE EFFECTS =====

// notifyInstructor appends a notification-tagged activity row for the course
// owner. Best-effort: failures are logged, never surfaced.
func (s *courseService) notifyInstructor(ctx context.Context, course *models.Course, newStatus models.CourseStatus, reason *string) {
	metadata, err := json.Marshal(map[string]interface{}{
		"course_title": course.Title,
		"new_status":   newStatus,
		"reason":       reason,
	})
	if err != nil {
		s.logger.Warn("Failed to marshal notification metadata", "error", err)
		return
	}

	activity := &models.StudentActivity{
		StudentID:    course.InstructorID,
		CourseID:     course.ID,
		ActivityType: models.ActivityStatusNotification,
		Metadata:     datatypes.JSON(metadata),
	}
	if err := s.repo.Activity().Create(ctx, s.db, activity); err != nil {
		s.logger.Warn("Failed to write status notification", "error", err, "course_id", course.ID)
	}
}

// publishCourseEvent is best-effort; broker failures never fail the request.
func (s *courseService) publishCourseEvent(ctx context.Context, eventType string, course *models.Course, reason *string) {
	event := events.NewEvent(eventType, events.CourseStatusEvent{
		CourseID:     course.ID,
		Title:        course.Title,
		InstructorID: course.InstructorID,
		Status:       string(course.Status),
		Reason:       reason,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicCourseEvents, event); err != nil {
		s.logger.Warn("Failed to publish course event", "error", err, "event_type", eventType)
	}
}
