package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCourseCreate validates course creation business rules
func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "cannot be blank",
			Value:   req.Title,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateStatusTransition validates course lifecycle transitions
func (bv *BusinessValidator) ValidateStatusTransition(currentStatus, newStatus models.CourseStatus, lessonCount int) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.CourseStatus][]models.CourseStatus{
		models.StatusDraft:     {models.StatusPending, models.StatusPublished},
		models.StatusPending:   {models.StatusPublished, models.StatusDraft},
		models.StatusPublished: {models.StatusArchived},
		models.StatusArchived:  {models.StatusPublished},
	}

	allowed := false
	for _, allowedStatus := range allowedTransitions[currentStatus] {
		if newStatus == allowedStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", currentStatus, newStatus),
			Value:   newStatus,
			Rule:    "status_transition",
		})
	}

	// Publishing requires course content
	if newStatus == models.StatusPublished && lessonCount == 0 {
		errors = append(errors, ValidationError{
			Field:   "lessons",
			Message: "course must have at least one lesson before publishing",
			Value:   lessonCount,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateRejection validates the admin reject operation
func (bv *BusinessValidator) ValidateRejection(currentStatus models.CourseStatus, reason string) ValidationErrors {
	var errors ValidationErrors

	if currentStatus != models.StatusDraft && currentStatus != models.StatusPending {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot reject course in %s status", currentStatus),
			Value:   currentStatus,
			Rule:    "status_transition",
		})
	}

	if strings.TrimSpace(reason) == "" {
		errors = append(errors, ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
			Value:   reason,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateEnrollmentTarget validates that a course accepts new enrollments
func (bv *BusinessValidator) ValidateEnrollmentTarget(status models.CourseStatus) ValidationErrors {
	var errors ValidationErrors

	if status != models.StatusPublished {
		errors = append(errors, ValidationError{
			Field:   "course",
			Message: "only published courses accept enrollments",
			Value:   status,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	registerSharedRules(bv.validate)
}

// registerSharedRules installs the custom tags used by both the struct
// validator and the business validator.
func registerSharedRules(validate *validator.Validate) {
	// Course title validation (1-200 characters, non-blank)
	validate.RegisterValidation("course_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Course level validation
	validate.RegisterValidation("course_level", func(fl validator.FieldLevel) bool {
		level := models.CourseLevel(fl.Field().String())
		switch level {
		case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
			return true
		}
		return false
	})

	// Self-registration only allows the non-privileged roles
	validate.RegisterValidation("registerable_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		return role == models.RoleStudent || role == models.RoleInstructor
	})

	// Password strength: at least 8 characters with a letter and a digit
	validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if len(password) < 8 || len(password) > 128 {
			return false
		}
		var hasLetter, hasDigit bool
		for _, r := range password {
			switch {
			case unicode.IsLetter(r):
				hasLetter = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasLetter && hasDigit
	})
}
