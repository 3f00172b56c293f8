package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Template specific errors
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateArchived = errors.New("template is archived")
	ErrTemplateMismatch = errors.New("session does not belong to template")
	ErrNoTemplates      = errors.New("no templates supplied")

	// Session specific errors
	ErrSessionAlreadyComplete = errors.New("session is already complete")
	ErrSessionHasNoSamples    = errors.New("session has no samples")

	// Import/export errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyImport       = errors.New("import file has no data rows")
	ErrMissingColumns    = errors.New("import file is missing required columns")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptyImport) ||
		errors.Is(err, ErrMissingColumns) ||
		errors.Is(err, ErrNoTemplates) ||
		errors.Is(err, ErrTemplateMismatch) ||
		errors.Is(err, ErrSessionHasNoSamples) {
		return true
	}
	if apperrors.IsSchemaValidation(err) {
		return true
	}
	var ve apperrors.ValidationErrors
	var single *apperrors.ValidationError
	return errors.As(err, &ve) || errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrTemplateArchived) ||
		errors.Is(err, ErrSessionAlreadyComplete)
}
