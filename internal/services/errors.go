package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

// ValidationErrors is re-exported so handlers can branch on it without
// importing the validator package.
type ValidationErrors = validator.ValidationErrors

// Sentinel errors returned by services. Handlers map these to HTTP codes.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrEmailExists        = errors.New("email already registered")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrCategoryExists     = errors.New("category already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
)

// PermissionError carries the denied actor/resource pair for logging
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission denial
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// BusinessRuleError signals an operation that is well-formed but not allowed
// in the current state (bad status transition, publish without lessons).
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
	}
}

// IsBusinessRuleError reports whether err is a business rule violation
func IsBusinessRuleError(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsValidationError reports whether err carries field-level validation failures
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsNotFoundError reports whether err is any of the not-found sentinels
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrNotificationNotFound)
}

// IsConflictError reports whether err is a duplicate/conflict sentinel
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrCategoryExists)
}
