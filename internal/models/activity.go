package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityLessonStarted      ActivityType = "lesson_started"
	ActivityLessonCompleted    ActivityType = "lesson_completed"
	ActivityCourseEnrolled     ActivityType = "course_enrolled"
	ActivityCourseCompleted    ActivityType = "course_completed"
	ActivityStatusNotification ActivityType = "course_status_notification"
)

// IsNotification reports whether an activity row doubles as a notification
// feed entry for the student.
func (t ActivityType) IsNotification() bool {
	return t == ActivityStatusNotification || t == ActivityCourseCompleted
}

// StudentActivity is an append-only event row. It feeds both the dashboard
// "recent activity" list and the notification feed.
type StudentActivity struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	StudentID    uint         `json:"student_id" gorm:"not null;index"`
	CourseID     uint         `json:"course_id" gorm:"not null;index"`
	LessonID     *uint        `json:"lesson_id"`
	ActivityType ActivityType `json:"activity_type" gorm:"not null;size:40;index"`

	Metadata datatypes.JSON `json:"metadata"`

	// ReadAt is only meaningful for notification-tagged rows.
	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (StudentActivity) TableName() string {
	return "student_activities"
}

// AuditLog is an append-only record of sensitive admin operations. Writes are
// best-effort: a failed insert never rolls back the operation it describes.
type AuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Action    string    `json:"action" gorm:"not null;size:100;index"`
	Email     string    `json:"email" gorm:"not null;size:255"`
	Details   *string   `json:"details" gorm:"type:text"`
	IPAddress *string   `json:"ip_address" gorm:"size:45"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
