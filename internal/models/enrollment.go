package models

import "time"

type Enrollment struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollments_student_course"`
	CourseID  uint `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollments_student_course"`

	// Progress is derived from lesson_progress rows and recomputed on every
	// completion write; it is never authoritative on its own.
	Progress float64 `json:"progress" gorm:"not null;default:0"`

	EnrolledAt     time.Time  `json:"enrolled_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	CompletedAt    *time.Time `json:"completed_at"`

	// Relations
	Student        User             `json:"student" gorm:"foreignKey:StudentID"`
	Course         Course           `json:"course" gorm:"foreignKey:CourseID"`
	LessonProgress []LessonProgress `json:"-" gorm:"foreignKey:EnrollmentID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

type LessonProgress struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	EnrollmentID uint `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_lesson_progress_enrollment_lesson"`
	LessonID     uint `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_enrollment_lesson"`

	// IsCompleted is one-way; TimeSpentSeconds only ever grows (additive upserts).
	IsCompleted      bool       `json:"is_completed" gorm:"not null;default:false"`
	TimeSpentSeconds int        `json:"time_spent_seconds" gorm:"not null;default:0"`
	CompletedAt      *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Enrollment Enrollment `json:"-" gorm:"foreignKey:EnrollmentID"`
	Lesson     Lesson     `json:"lesson" gorm:"foreignKey:LessonID"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
