package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewValidationErrorWithRule creates a new validation error with rule
func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// SchemaValidationError is returned when a normalized template still does not
// satisfy the canonical template shape. It is fatal to that template only.
type SchemaValidationError struct {
	TemplateID string           `json:"templateId"`
	Index      int              `json:"index"`
	Errors     ValidationErrors `json:"errors"`
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("template %q (index %d): %s", e.TemplateID, e.Index, e.Errors.Error())
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Errors
}

// NewSchemaValidationError wraps field errors for one template.
func NewSchemaValidationError(templateID string, index int, errs ValidationErrors) *SchemaValidationError {
	return &SchemaValidationError{TemplateID: templateID, Index: index, Errors: errs}
}

// IsSchemaValidation reports whether err carries a SchemaValidationError.
func IsSchemaValidation(err error) bool {
	var schemaErr *SchemaValidationError
	return errors.As(err, &schemaErr)
}

// ToValidationErrors converts validator.ValidationErrors to our custom type.
// ValidationErrors pass through unchanged.
func ToValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors

	var ours ValidationErrors
	if errors.As(err, &ours) {
		return ours
	}

	var validatorErr validator.ValidationErrors
	if errors.As(err, &validatorErr) {
		for _, fe := range validatorErr {
			errs = append(errs, ValidationError{
				Field:   fieldPath(fe),
				Message: getErrorMessage(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
	}

	return errs
}

// fieldPath drops the root struct name from the namespace, so nested errors
// read as "sampleQuestions[0].type".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "eqfield":
		return fmt.Sprintf("must equal %s", err.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	// Custom validators
	case "question_type":
		return "must be a valid question type (text, select, yn, ynna, patientCode, number, date, datetime)"
	case "scoring_mode":
		return "must be a valid scoring mode (sum, weighted, singleGate)"
	case "na_policy":
		return "must be a valid NA policy (excludeFromDenominator, fullCredit, zero)"
	case "session_status":
		return "must be a valid session status (in_progress, complete)"
	case "qa_status":
		return "must be a valid QA action status (open, in_progress, complete)"
	case "semver":
		return "must be a semantic version"

	// Business rule validators
	case "unique_key":
		return "must be unique within its scope"
	case "known_key":
		return "must reference an existing question key"
	case "options_required":
		return "must list at least one option"

	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
