package validator

import (
	"reflect"
	"strings"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	templateValidator *TemplateValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		templateValidator: NewTemplateValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs complete validation (struct + business rules).
// Business rules currently exist for templates only.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}

	if t, ok := s.(*models.Template); ok {
		if errs := v.templateValidator.Validate(t); len(errs) > 0 {
			return errs
		}
	}

	return nil
}

// ValidateTemplate runs struct and business checks and always reports field
// errors in our own shape, nil when the template is valid.
func (v *Validator) ValidateTemplate(t *models.Template) apperrors.ValidationErrors {
	if err := v.ValidateStruct(t); err != nil {
		return apperrors.ToValidationErrors(err)
	}
	return v.templateValidator.Validate(t)
}

// Template returns the template business-rule validator
func (v *Validator) Template() *TemplateValidator {
	return v.templateValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("scoring_mode", validateScoringMode)
	validate.RegisterValidation("na_policy", validateNAPolicy)
	validate.RegisterValidation("session_status", validateSessionStatus)
	validate.RegisterValidation("qa_status", validateQaStatus)
	validate.RegisterValidation("semver", validateSemver)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func oneOf[T ~string](fl validator.FieldLevel, valid ...T) bool {
	value := fl.Field().String()
	for _, candidate := range valid {
		if string(candidate) == value {
			return true
		}
	}
	return false
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return oneOf(fl,
		models.QuestionTypeText,
		models.QuestionTypeSelect,
		models.QuestionTypeYN,
		models.QuestionTypeYNNA,
		models.QuestionTypePatientCode,
		models.QuestionTypeNumber,
		models.QuestionTypeDate,
		models.QuestionTypeDateTime,
	)
}

func validateScoringMode(fl validator.FieldLevel) bool {
	return oneOf(fl, models.ScoringModeSum, models.ScoringModeWeighted, models.ScoringModeSingleGate)
}

func validateNAPolicy(fl validator.FieldLevel) bool {
	return oneOf(fl, models.NAPolicyExcludeFromDenominator, models.NAPolicyFullCredit, models.NAPolicyZero)
}

func validateSessionStatus(fl validator.FieldLevel) bool {
	return oneOf(fl, models.SessionStatusInProgress, models.SessionStatusComplete)
}

func validateQaStatus(fl validator.FieldLevel) bool {
	return oneOf(fl, models.QaStatusOpen, models.QaStatusInProgress, models.QaStatusComplete)
}

// validateSemver accepts only canonical MAJOR.MINOR.PATCH strings.
func validateSemver(fl validator.FieldLevel) bool {
	_, err := semver.StrictNewVersion(fl.Field().String())
	return err == nil
}
