package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns a combined error message
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.New(v.ErrorMessage())
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case []string:
		if len(v) == 0 {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	}
	return nil
}

// IntBetween accepts ints in [min, max].
func IntBetween(min, max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		n, ok := value.(int)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be an integer"}
		}
		if n < min || n > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be between %d and %d", min, max),
			}
		}
		return nil
	}
}

// OneOf accepts strings from a fixed set, compared case-insensitively.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSpace(str), a) {
				return nil
			}
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
		}
	}
}

// ExistingFile accepts a path to a regular file. Empty values pass; combine with Required.
func ExistingFile(fieldName string, value interface{}) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	if str == "" {
		return nil
	}
	info, err := os.Stat(str)
	if err != nil || info.IsDir() {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be an existing file"}
	}
	return nil
}

// ValidateAndReturnError wraps collected validation failures in an AppError
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return NewAppError("INVALID_ARGUMENT", validator.ErrorMessage(), ErrValidation)
	}
	return nil
}
