package validator

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

// TemplateValidator checks the cross-field rules struct tags cannot express.
type TemplateValidator struct{}

// NewTemplateValidator creates a new template validator
func NewTemplateValidator() *TemplateValidator {
	return &TemplateValidator{}
}

// Validate returns every business-rule violation of t.
func (v *TemplateValidator) Validate(t *models.Template) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	errs = append(errs, v.validateScope("sessionQuestions", t.SessionQuestions)...)
	errs = append(errs, v.validateScope("sampleQuestions", t.SampleQuestions)...)

	for i, rule := range t.GatingRules {
		if _, ok := t.FindQuestion(rule.Key); !ok {
			errs = append(errs, apperrors.ValidationError{
				Field:   fmt.Sprintf("gatingRules[%d].key", i),
				Message: "must reference an existing question key",
				Value:   rule.Key,
				Rule:    "known_key",
			})
		}
	}

	return errs
}

func (v *TemplateValidator) validateScope(scope string, questions []models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors
	seen := make(map[string]bool, len(questions))

	for i, q := range questions {
		if seen[q.Key] {
			errs = append(errs, apperrors.ValidationError{
				Field:   fmt.Sprintf("%s[%d].key", scope, i),
				Message: "must be unique within its scope",
				Value:   q.Key,
				Rule:    "unique_key",
			})
		}
		seen[q.Key] = true

		if q.Type == models.QuestionTypeSelect && len(q.Options) == 0 {
			errs = append(errs, apperrors.ValidationError{
				Field:   fmt.Sprintf("%s[%d].options", scope, i),
				Message: "must list at least one option",
				Rule:    "options_required",
			})
		}
	}

	return errs
}
