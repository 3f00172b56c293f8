package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/scoring"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

func newTestScoringService(publisher events.EventPublisher, dueDays int) *scoringService {
	svc := NewScoringService(scoring.NewNormalizer(nil), validator.New(), publisher, utils.NewDiscardLogger(), ScoringConfig{DefaultDueDays: dueDays}).(*scoringService)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func auditSession() models.AuditSession {
	return models.AuditSession{
		ID:         "s1",
		TemplateID: "hand_hygiene",
		Header: models.SessionHeader{
			Status:    models.SessionStatusInProgress,
			AuditDate: "2024-03-01",
			Unit:      "2 West",
			Auditor:   "Dana",
		},
		Samples: []models.Sample{
			{ID: "a", Answers: answers("yes", "yes", "yes"), StaffAudited: "Lee"},
			{ID: "b", Answers: answers("yes", "yes", "no"), StaffAudited: "Kim"},
			{ID: "c", Answers: answers("no", "yes", "yes"), StaffAudited: "Ash"},
		},
	}
}

func TestScoringService_ScoreSample(t *testing.T) {
	svc := newTestScoringService(nil, 0)

	result, err := svc.ScoreSample(context.Background(), handHygieneRaw(), answers("yes", "no", "yes"))
	require.NoError(t, err)
	assert.Equal(t, 67, result.Pct)
	assert.False(t, result.Pass)

	_, err = svc.ScoreSample(context.Background(), nil, nil)
	assert.True(t, IsNotFound(err))
}

func TestScoringService_NormalizesTemplates(t *testing.T) {
	svc := newTestScoringService(nil, 0)
	ctx := context.Background()

	legacy := models.RawTemplate{
		"templateId": "gloves_only",
		"title":      "Gloves",
		"category":   "Infection Control",
		"sampleQuestions": []any{
			map[string]any{"key": "gloves", "label": "Gloves worn", "type": "yn", "points": 10},
		},
	}
	fromLegacy, err := svc.ScoreSample(ctx, legacy, map[string]string{"gloves": "no"})
	require.NoError(t, err)
	assert.Equal(t, 0, fromLegacy.Pct)
	assert.Equal(t, 10.0, fromLegacy.Max)
	assert.False(t, fromLegacy.Pass)

	canonical, err := scoring.ToRawTemplate(handHygiene())
	require.NoError(t, err)
	fromCanonical, err := svc.ScoreSample(ctx, canonical, answers("yes", "no", "yes"))
	require.NoError(t, err)
	fromRaw, err := svc.ScoreSample(ctx, handHygieneRaw(), answers("yes", "no", "yes"))
	require.NoError(t, err)
	assert.Equal(t, fromRaw, fromCanonical)

	broken := handHygieneRaw()
	broken["sampleQuestions"] = []any{map[string]any{"key": "q", "type": "bogus"}}
	_, err = svc.ScoreSample(ctx, broken, nil)
	var schemaErr *apperrors.SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "hand_hygiene", schemaErr.TemplateID)
}

func TestScoringService_ScoreSession(t *testing.T) {
	svc := newTestScoringService(nil, 0)
	session := auditSession()

	scored, err := svc.ScoreSession(context.Background(), handHygieneRaw(), session)
	require.NoError(t, err)
	require.Len(t, scored.Samples, 3)
	for _, s := range scored.Samples {
		assert.NotNil(t, s.Result)
	}
	assert.Nil(t, session.Samples[0].Result)
	assert.Equal(t, models.SessionStatusInProgress, scored.Header.Status)
}

func TestScoringService_CompleteSession(t *testing.T) {
	publisher := events.NewMockEventPublisher(utils.NewDiscardLogger())
	svc := newTestScoringService(publisher, 14)

	result, err := svc.CompleteSession(context.Background(), handHygieneRaw(), auditSession())
	require.NoError(t, err)

	assert.True(t, result.Session.IsComplete())
	assert.Equal(t, "Hand Hygiene", result.Session.TemplateTitle)
	require.Len(t, result.Actions, 2)

	critical := result.Actions[0]
	assert.Equal(t, models.QaAction{
		ID:            "id-1",
		Status:        models.QaStatusOpen,
		Source:        models.QaSourceAuto,
		Owner:         "Dana",
		Unit:          "2 West",
		Staff:         "Kim",
		DueDate:       "2024-03-15",
		CreatedAt:     "2024-03-20T10:00:00Z",
		Issue:         "Gloves removed",
		Reason:        "Gloves removed (Critical fail)",
		SessionID:     "s1",
		SampleID:      "b",
		TemplateID:    "hand_hygiene",
		TemplateTitle: "Hand Hygiene",
	}, critical)

	belowThreshold := result.Actions[1]
	assert.Equal(t, "c", belowThreshold.SampleID)
	assert.Equal(t, "Score 67% below 90% passing threshold", belowThreshold.Issue)
	assert.Equal(t, belowThreshold.Issue, belowThreshold.Reason)

	completed := publisher.EventsOfType(events.EventSessionCompleted)
	require.Len(t, completed, 1)
	payload := completed[0].Data.(events.SessionCompletedEvent)
	assert.Equal(t, 3, payload.Samples)
	assert.Equal(t, 1, payload.Passing)
	assert.Equal(t, 1, payload.CriticalFails)
	assert.Equal(t, 2, payload.ActionsOpened)
	assert.Len(t, publisher.EventsOfType(events.EventQaActionCreated), 2)
}

func TestScoringService_CompleteSessionOwnerAndDueDate(t *testing.T) {
	svc := newTestScoringService(nil, 7)

	session := auditSession()
	session.Header.CorrectiveActionOwner = "Unit Manager"
	session.Header.CorrectiveActionDue = "2024-04-01"

	result, err := svc.CompleteSession(context.Background(), handHygieneRaw(), session)
	require.NoError(t, err)
	for _, a := range result.Actions {
		assert.Equal(t, "Unit Manager", a.Owner)
		assert.Equal(t, "2024-04-01", a.DueDate)
	}

	session = auditSession()
	session.Header.AuditDate = ""
	result, err = svc.CompleteSession(context.Background(), handHygieneRaw(), session)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20", result.Session.Header.AuditDate)
	assert.Equal(t, "2024-03-27", result.Actions[0].DueDate)
}

func TestScoringService_CompleteSessionErrors(t *testing.T) {
	svc := newTestScoringService(nil, 0)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(s *models.AuditSession)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "already complete",
			mutate: func(s *models.AuditSession) { s.Header.Status = models.SessionStatusComplete },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrSessionAlreadyComplete)
				assert.True(t, IsConflict(err))
			},
		},
		{
			name:   "no samples",
			mutate: func(s *models.AuditSession) { s.Samples = nil },
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrSessionHasNoSamples) },
		},
		{
			name:   "other template",
			mutate: func(s *models.AuditSession) { s.TemplateID = "falls" },
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrTemplateMismatch) },
		},
		{
			name:   "malformed audit date",
			mutate: func(s *models.AuditSession) { s.Header.AuditDate = "03/01/2024" },
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Equal(t, "auditDate", verrs[0].Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := auditSession()
			tt.mutate(&session)
			_, err := svc.CompleteSession(ctx, handHygieneRaw(), session)
			require.Error(t, err)
			assert.True(t, IsValidation(err) || IsConflict(err))
			tt.check(t, err)
		})
	}
}
