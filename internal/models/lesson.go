package models

import "time"

type Lesson struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	CourseID uint    `json:"course_id" gorm:"not null;index:idx_lessons_course_order"`
	Title    string  `json:"title" gorm:"not null;size:200"`
	Content  *string `json:"content" gorm:"type:text"`
	VideoURL *string `json:"video_url" gorm:"size:500"`

	// OrderIndex defines the total order of lessons within a course; progress
	// calculation and "next lesson" semantics depend on it.
	OrderIndex      int  `json:"order_index" gorm:"not null;default:0;index:idx_lessons_course_order"`
	DurationMinutes int  `json:"duration_minutes" gorm:"not null;default:0"`
	IsPreview       bool `json:"is_preview" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course Course `json:"-" gorm:"foreignKey:CourseID"`
}

func (Lesson) TableName() string {
	return "lessons"
}
