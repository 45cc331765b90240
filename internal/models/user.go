package models

import (
	"time"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;default:student;size:20;index"`

	// Profile info
	FirstName string  `json:"first_name" gorm:"not null;size:100"`
	LastName  string  `json:"last_name" gorm:"not null;size:100"`
	Bio       *string `json:"bio" gorm:"type:text"`
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Status
	IsActive bool `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Courses     []Course     `json:"-" gorm:"foreignKey:InstructorID"`
	Enrollments []Enrollment `json:"-" gorm:"foreignKey:StudentID"`
}

func (User) TableName() string {
	return "users"
}

// FullName returns the display name used in course listings and activity feeds.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
