package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

func TestTemplateService_NormalizeBatch(t *testing.T) {
	svc := newTestTemplateService(nil)
	ctx := context.Background()

	t.Run("keeps valid templates and reports rejected ones", func(t *testing.T) {
		bad := models.RawTemplate{
			"templateId":      "broken",
			"sampleQuestions": []any{map[string]any{"key": "q1", "type": "bogus"}},
		}

		result, err := svc.NormalizeBatch(ctx, []models.RawTemplate{handHygieneRaw(), bad, {"title": "Legacy"}})
		require.NoError(t, err)

		require.Len(t, result.Templates, 2)
		assert.Equal(t, "hand_hygiene", result.Templates[0].ID)
		assert.Equal(t, "legacy_template_3", result.Templates[1].ID)

		require.Len(t, result.Rejected, 1)
		assert.Equal(t, 1, result.Rejected[0].Index)
		assert.Equal(t, "broken", result.Rejected[0].TemplateID)
		assert.NotEmpty(t, result.Rejected[0].Details)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := svc.NormalizeBatch(ctx, nil)
		assert.ErrorIs(t, err, ErrNoTemplates)
		assert.True(t, IsValidation(err))
	})
}

func TestTemplateService_Revise(t *testing.T) {
	ctx := context.Background()

	t.Run("bumps the minor version and records changed fields", func(t *testing.T) {
		publisher := events.NewMockEventPublisher(utils.NewDiscardLogger())
		svc := newTestTemplateService(publisher)
		current := handHygiene()

		edited := handHygieneRaw()
		edited["title"] = "Hand Hygiene Observation"

		result, err := svc.Revise(ctx, current, edited, "retitled")
		require.NoError(t, err)

		assert.Equal(t, "1.1.0", result.Template.Version)
		assert.Equal(t, "Hand Hygiene Observation", result.Template.Title)
		assert.Equal(t, models.ChangeRecord{
			TemplateID:    "hand_hygiene",
			FromVersion:   "1.0.0",
			ToVersion:     "1.1.0",
			ChangedAt:     "2024-03-20T10:00:00Z",
			Note:          "retitled",
			ChangedFields: []string{"title"},
		}, result.Change)
		assert.Equal(t, "2024-03-20T10:00:00Z", result.Template.UpdatedAt)

		revised := publisher.EventsOfType(events.EventTemplateRevised)
		require.Len(t, revised, 1)
		assert.Equal(t, "1.1.0", revised[0].Data.(events.TemplateRevisedEvent).ToVersion)
	})

	t.Run("question edits are detected", func(t *testing.T) {
		svc := newTestTemplateService(nil)
		edited := handHygieneRaw()
		edited["sampleQuestions"] = []any{
			map[string]any{"key": "before", "label": "Hand hygiene before care", "type": "yn", "points": 10},
			map[string]any{"key": "after", "label": "Hand hygiene after care", "type": "yn", "points": 20},
			map[string]any{"key": "gloves", "label": "Gloves removed", "type": "yn", "points": 10, "criticalFail": true},
		}

		result, err := svc.Revise(ctx, handHygiene(), edited, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"maxScore", "sampleQuestions"}, result.Change.ChangedFields)
		assert.Equal(t, 40.0, result.Template.MaxScore)
	})

	t.Run("archived templates cannot be revised", func(t *testing.T) {
		svc := newTestTemplateService(nil)
		current := handHygiene()
		current.Archived = true

		_, err := svc.Revise(ctx, current, handHygieneRaw(), "")
		assert.ErrorIs(t, err, ErrTemplateArchived)
		assert.True(t, IsConflict(err))
	})

	t.Run("a revision must change something", func(t *testing.T) {
		svc := newTestTemplateService(nil)
		_, err := svc.Revise(ctx, handHygiene(), handHygieneRaw(), "")
		assert.True(t, IsBusinessRule(err))
	})

	t.Run("edited document for another template", func(t *testing.T) {
		svc := newTestTemplateService(nil)
		edited := handHygieneRaw()
		edited["templateId"] = "falls"

		_, err := svc.Revise(ctx, handHygiene(), edited, "")
		assert.ErrorIs(t, err, ErrTemplateMismatch)
	})

	t.Run("invalid edit is a schema violation", func(t *testing.T) {
		svc := newTestTemplateService(nil)
		edited := handHygieneRaw()
		edited["scoring"] = map[string]any{"mode": "average"}

		_, err := svc.Revise(ctx, handHygiene(), edited, "")
		assert.True(t, apperrors.IsSchemaValidation(err))
		assert.True(t, IsValidation(err))
	})
}

func TestTemplateService_Archive(t *testing.T) {
	publisher := events.NewMockEventPublisher(utils.NewDiscardLogger())
	svc := newTestTemplateService(publisher)
	current := handHygiene()

	archived, err := svc.Archive(context.Background(), current)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.Equal(t, "2024-03-20T10:00:00Z", archived.ArchivedAt)
	assert.False(t, current.Archived)
	assert.Len(t, publisher.EventsOfType(events.EventTemplateArchived), 1)

	_, err = svc.Archive(context.Background(), archived)
	assert.ErrorIs(t, err, ErrTemplateArchived)
}

func TestTemplateService_PublishFailureDoesNotFailArchive(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("*events.ComplianceEvent")).
		Return(errors.New("broker unavailable")).Once()
	svc := newTestTemplateService(publisher)

	archived, err := svc.Archive(context.Background(), handHygiene())
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	publisher.AssertExpectations(t)
}

func TestTemplateService_CanonicalRoundTrip(t *testing.T) {
	svc := newTestTemplateService(nil)
	original := handHygiene()

	doc, err := svc.ExportCanonical(original)
	require.NoError(t, err)
	assert.True(t, json.Valid(doc))

	imported, err := svc.ImportCanonical(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, original, imported)
}

func TestTemplateService_ImportCanonicalRejectsInvalidDocuments(t *testing.T) {
	svc := newTestTemplateService(nil)

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"id":`},
		{"missing required lists", `{"id":"a","templateId":"a","version":"1.0.0","title":"A","category":"General"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ImportCanonical(context.Background(), []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}
