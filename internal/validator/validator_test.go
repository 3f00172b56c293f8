package validator

import (
	"encoding/json"
	"testing"

	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() *models.Template {
	return &models.Template{
		ID:         "hand_hygiene",
		TemplateID: "hand_hygiene",
		Version:    "1.0.0",
		Title:      "Hand Hygiene Observation",
		Category:   "Infection Control",
		Scoring: models.Scoring{
			Mode:             models.ScoringModeSum,
			NAPolicy:         models.NAPolicyExcludeFromDenominator,
			PassingThreshold: 90,
		},
		MaxScore:         10,
		CriticalFailKeys: []string{"before_contact"},
		GatingRules:      []models.GatingRule{{Key: "before_contact", FailIf: "no"}},
		SessionQuestions: []models.Question{{Key: "unit", Label: "Unit", Type: models.QuestionTypeText}},
		SampleQuestions: []models.Question{
			{Key: "before_contact", Label: "Before contact", Type: models.QuestionTypeYN, Points: 10, AffectsScore: true, CriticalFail: true, CriticalFailIf: "no"},
		},
		References: []models.Reference{{Framework: models.FrameworkCMS, ID: "F880"}},
		FtagTags:   []string{"F880"},
		NydohTags:  []string{},
	}
}

func TestValidator_ValidateTemplate(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		mutate    func(t *models.Template)
		wantField string
		wantRule  string
	}{
		{name: "valid template", mutate: func(t *models.Template) {}},
		{
			name:      "unknown question type",
			mutate:    func(t *models.Template) { t.SampleQuestions[0].Type = "checkbox" },
			wantField: "sampleQuestions[0].type",
			wantRule:  "question_type",
		},
		{
			name:      "non canonical version",
			mutate:    func(t *models.Template) { t.Version = "v1.2" },
			wantField: "version",
			wantRule:  "semver",
		},
		{
			name:      "unknown scoring mode",
			mutate:    func(t *models.Template) { t.Scoring.Mode = "average" },
			wantField: "scoring.mode",
			wantRule:  "scoring_mode",
		},
		{
			name:      "threshold above 100",
			mutate:    func(t *models.Template) { t.Scoring.PassingThreshold = 120 },
			wantField: "scoring.passingThreshold",
			wantRule:  "max",
		},
		{
			name:      "template id mismatch",
			mutate:    func(t *models.Template) { t.TemplateID = "other" },
			wantField: "templateId",
			wantRule:  "eqfield",
		},
		{
			name: "duplicate sample key",
			mutate: func(t *models.Template) {
				t.SampleQuestions = append(t.SampleQuestions, t.SampleQuestions[0])
			},
			wantField: "sampleQuestions[1].key",
			wantRule:  "unique_key",
		},
		{
			name:      "gating rule on unknown key",
			mutate:    func(t *models.Template) { t.GatingRules[0].Key = "missing" },
			wantField: "gatingRules[0].key",
			wantRule:  "known_key",
		},
		{
			name: "select without options",
			mutate: func(t *models.Template) {
				t.SessionQuestions[0].Type = models.QuestionTypeSelect
			},
			wantField: "sessionQuestions[0].options",
			wantRule:  "options_required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(tmpl)

			errs := v.ValidateTemplate(tmpl)
			if tt.wantRule == "" {
				assert.Empty(t, errs)
				assert.NoError(t, v.Validate(tmpl))
				return
			}

			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.Equal(t, tt.wantRule, errs[0].Rule)
			assert.NotEmpty(t, errs[0].Message)
			assert.Error(t, v.Validate(tmpl))
		})
	}
}

func TestValidator_CustomTagsOnRecords(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateStruct(models.QaAction{Status: models.QaStatusOpen, DueDate: "2024-03-01"}))
	assert.Error(t, v.ValidateStruct(models.QaAction{Status: "closed"}))
	assert.Error(t, v.ValidateStruct(models.QaAction{Status: models.QaStatusOpen, DueDate: "03/01/2024"}))

	assert.NoError(t, v.ValidateStruct(models.SessionHeader{Status: models.SessionStatusComplete}))
	assert.Error(t, v.ValidateStruct(models.SessionHeader{Status: "done"}))
}

func TestValidateCanonicalDocument(t *testing.T) {
	doc, err := json.Marshal(validTemplate())
	require.NoError(t, err)
	assert.NoError(t, ValidateCanonicalDocument(doc))

	t.Run("bad question type", func(t *testing.T) {
		tmpl := validTemplate()
		tmpl.SampleQuestions[0].Type = "slider"
		doc, err := json.Marshal(tmpl)
		require.NoError(t, err)

		err = ValidateCanonicalDocument(doc)
		require.Error(t, err)
		errs := apperrors.ToValidationErrors(err)
		require.NotEmpty(t, errs)
		assert.Equal(t, "/sampleQuestions/0/type", errs[0].Field)
	})

	t.Run("missing required properties", func(t *testing.T) {
		err := ValidateCanonicalDocument([]byte(`{"id": "x"}`))
		require.Error(t, err)
		assert.NotEmpty(t, apperrors.ToValidationErrors(err))
	})

	t.Run("not json", func(t *testing.T) {
		err := ValidateCanonicalDocument([]byte(`{`))
		require.Error(t, err)
		errs := apperrors.ToValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, "document", errs[0].Field)
	})
}
