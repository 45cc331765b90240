package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event topics consumed by downstream services.
const (
	TopicCourseEvents     = "learning.course_events"
	TopicEnrollmentEvents = "learning.enrollment_events"
	TopicProgressEvents   = "learning.progress_events"
	TopicUserEvents       = "learning.user_events"
)

// Event types.
const (
	EventCourseSubmitted  = "course.submitted"
	EventCoursePublished  = "course.published"
	EventCourseRejected   = "course.rejected"
	EventCourseArchived   = "course.archived"
	EventCourseEnrolled   = "enrollment.created"
	EventCourseUnenrolled = "enrollment.removed"
	EventLessonCompleted  = "progress.lesson_completed"
	EventCourseCompleted  = "progress.course_completed"
	EventUserRegistered   = "user.registered"
	EventUserDeactivated  = "user.deactivated"
)

// Event is the envelope written to the broker. Data carries the
// type-specific payload.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with the service identity stamped on it.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "learning-platform-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher abstracts the message broker. Publishing is fire-and-forget
// from the caller's perspective; failures are logged, not returned to users.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// CourseStatusEvent is the payload for course lifecycle events.
type CourseStatusEvent struct {
	CourseID     uint    `json:"course_id"`
	Title        string  `json:"title"`
	InstructorID uint    `json:"instructor_id"`
	Status       string  `json:"status"`
	Reason       *string `json:"reason,omitempty"`
}

// EnrollmentEvent is the payload for enrollment create/remove events.
type EnrollmentEvent struct {
	EnrollmentID uint `json:"enrollment_id"`
	StudentID    uint `json:"student_id"`
	CourseID     uint `json:"course_id"`
}

// ProgressEvent is the payload for lesson and course completion events.
type ProgressEvent struct {
	StudentID uint    `json:"student_id"`
	CourseID  uint    `json:"course_id"`
	LessonID  *uint   `json:"lesson_id,omitempty"`
	Progress  float64 `json:"progress"`
}

// UserEvent is the payload for account lifecycle events.
type UserEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
