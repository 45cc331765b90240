package models

import (
	"regexp"
	"strings"
	"time"
)

type CourseStatus string

const (
	StatusDraft     CourseStatus = "draft"
	StatusPending   CourseStatus = "pending"
	StatusPublished CourseStatus = "published"
	StatusArchived  CourseStatus = "archived"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

type Category struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Slug        string  `json:"slug" gorm:"uniqueIndex;not null;size:120"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Courses []Course `json:"-" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}

type Course struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index"`
	Slug        string       `json:"slug" gorm:"not null;size:220;index"`
	Description *string      `json:"description" gorm:"type:text"`
	Status      CourseStatus `json:"status" gorm:"not null;default:draft;size:20;index"`
	Level       CourseLevel  `json:"level" gorm:"not null;default:beginner;size:20;index"`
	Price       float64      `json:"price" gorm:"not null;default:0"`

	InstructorID uint  `json:"instructor_id" gorm:"not null;index"`
	CategoryID   *uint `json:"category_id" gorm:"index"`

	// Denormalized counter, maintained inside the enrollment transaction.
	EnrollmentCount int `json:"enrollment_count" gorm:"not null;default:0"`

	ThumbnailURL    *string `json:"thumbnail_url" gorm:"size:500"`
	RejectionReason *string `json:"rejection_reason" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Instructor User      `json:"instructor" gorm:"foreignKey:InstructorID"`
	Category   *Category `json:"category" gorm:"foreignKey:CategoryID"`
	Lessons    []Lesson  `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`

	// Computed fields (not stored)
	LessonCount   int `json:"lesson_count" gorm:"-"`
	TotalDuration int `json:"total_duration_minutes" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a course title. Best effort: uniqueness is
// not enforced beyond appending nothing; lookups go through the numeric ID.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
