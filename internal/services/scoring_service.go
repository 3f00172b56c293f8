package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/scoring"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

// DefaultDueDays is used when the scoring service is built without a due-date offset.
const DefaultDueDays = 14

// ScoringService scores samples and sessions and closes sessions out. Templates
// arrive as raw documents and are normalized before any scoring.
type ScoringService interface {
	ScoreSample(ctx context.Context, raw models.RawTemplate, answers map[string]string) (*models.SampleResult, error)
	ScoreSession(ctx context.Context, raw models.RawTemplate, session models.AuditSession) (*models.AuditSession, error)
	CompleteSession(ctx context.Context, raw models.RawTemplate, session models.AuditSession) (*CompleteSessionResult, error)
}

type CompleteSessionResult struct {
	Session models.AuditSession `json:"session"`
	Actions []models.QaAction   `json:"actions"`
}

type ScoringConfig struct {
	DefaultDueDays int
}

type scoringService struct {
	normalizer *scoring.Normalizer
	validator  *validator.Validator
	publisher  events.EventPublisher
	logger     *slog.Logger
	opLogger   *ServiceLogger
	config     ScoringConfig
	now        func() time.Time
	newID      func() string
}

func NewScoringService(normalizer *scoring.Normalizer, v *validator.Validator, publisher events.EventPublisher, logger *slog.Logger, config ScoringConfig) ScoringService {
	if config.DefaultDueDays <= 0 {
		config.DefaultDueDays = DefaultDueDays
	}
	return &scoringService{
		normalizer: normalizer,
		validator:  v,
		publisher:  publisher,
		logger:     logger,
		opLogger:   NewServiceLogger(logger, LogConfig{Service: "qa-compliance", Component: "scoring"}),
		config:     config,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// loadTemplate normalizes the caller's template document. A normalized
// template passes through unchanged.
func (s *scoringService) loadTemplate(ctx context.Context, raw models.RawTemplate) (*models.Template, error) {
	if raw == nil {
		return nil, ErrTemplateNotFound
	}
	t, err := s.normalizer.Normalize(raw, 0)
	if err != nil {
		var schemaErr *apperrors.SchemaValidationError
		if errors.As(err, &schemaErr) {
			s.opLogger.LogValidationError(ctx, "load_template", schemaErr.TemplateID, schemaErr.Errors)
		}
		return nil, err
	}
	return t, nil
}

func (s *scoringService) ScoreSample(ctx context.Context, raw models.RawTemplate, answers map[string]string) (*models.SampleResult, error) {
	t, err := s.loadTemplate(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("score sample: %w", err)
	}
	result := scoring.ComputeSampleResult(t, answers)
	return &result, nil
}

func (s *scoringService) ScoreSession(ctx context.Context, raw models.RawTemplate, session models.AuditSession) (*models.AuditSession, error) {
	t, err := s.loadSession(ctx, raw, session)
	if err != nil {
		return nil, err
	}
	scored := scoring.ScoreSession(t, session)
	return &scored, nil
}

func (s *scoringService) loadSession(ctx context.Context, raw models.RawTemplate, session models.AuditSession) (*models.Template, error) {
	t, err := s.loadTemplate(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}
	if err := s.checkSession(t, session); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *scoringService) checkSession(t *models.Template, session models.AuditSession) error {
	if session.TemplateID != "" && session.TemplateID != t.ID {
		return fmt.Errorf("session %s uses %s, not %s: %w", session.ID, session.TemplateID, t.ID, ErrTemplateMismatch)
	}
	if err := s.validator.ValidateStruct(session.Header); err != nil {
		return apperrors.ToValidationErrors(err)
	}
	return nil
}

// CompleteSession scores every sample, marks the session complete and opens one
// QA action per failed sample.
func (s *scoringService) CompleteSession(ctx context.Context, raw models.RawTemplate, session models.AuditSession) (result *CompleteSessionResult, err error) {
	op := s.opLogger.WithOperation(ctx, "complete_session")
	defer func() { op.LogResult(session.ID, "audit_session", err) }()

	t, err := s.loadSession(ctx, raw, session)
	if err != nil {
		return nil, err
	}
	if session.IsComplete() {
		return nil, fmt.Errorf("complete session %s: %w", session.ID, ErrSessionAlreadyComplete)
	}
	if len(session.Samples) == 0 {
		return nil, fmt.Errorf("complete session %s: %w", session.ID, ErrSessionHasNoSamples)
	}

	now := s.now().UTC()
	scored := scoring.ScoreSession(t, session)
	if scored.ID == "" {
		scored.ID = s.newID()
	}
	if scored.TemplateID == "" {
		scored.TemplateID = t.ID
	}
	if scored.TemplateTitle == "" {
		scored.TemplateTitle = t.Title
	}
	if scored.CreatedAt == "" {
		scored.CreatedAt = now.Format(time.RFC3339)
	}
	if scored.Header.AuditDate == "" {
		scored.Header.AuditDate = models.FormatDate(now)
	}
	scored.Header.Status = models.SessionStatusComplete

	actions := make([]models.QaAction, 0)
	passing, criticals := 0, 0
	for _, sample := range scored.Samples {
		if sample.HasCriticalFail() {
			criticals++
		}
		if sample.Passed() {
			passing++
			continue
		}
		actions = append(actions, s.actionFor(t, scored, sample, now))
	}

	s.logger.InfoContext(ctx, "Audit session completed",
		"session_id", scored.ID,
		"template_id", scored.TemplateID,
		"samples", len(scored.Samples),
		"passing", passing,
		"actions_opened", len(actions))

	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:     scored.ID,
		TemplateID:    scored.TemplateID,
		TemplateTitle: scored.TemplateTitle,
		Unit:          scored.Header.Unit,
		AuditDate:     scored.Header.AuditDate,
		Samples:       len(scored.Samples),
		Passing:       passing,
		CriticalFails: criticals,
		ActionsOpened: len(actions),
	}, now))
	for _, a := range actions {
		publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.EventQaActionCreated, events.QaActionCreatedEvent{
			ActionID:   a.ID,
			SessionID:  a.SessionID,
			SampleID:   a.SampleID,
			TemplateID: a.TemplateID,
			Owner:      a.Owner,
			Unit:       a.Unit,
			DueDate:    a.DueDate,
			Issue:      a.Issue,
		}, now))
	}

	return &CompleteSessionResult{Session: scored, Actions: actions}, nil
}

func (s *scoringService) actionFor(t *models.Template, session models.AuditSession, sample models.Sample, now time.Time) models.QaAction {
	header := session.Header

	owner := strings.TrimSpace(header.CorrectiveActionOwner)
	if owner == "" {
		owner = strings.TrimSpace(header.Auditor)
	}

	due := header.CorrectiveActionDue
	if due == "" {
		base, err := time.Parse(models.DateLayout, header.AuditDate)
		if err != nil {
			base = now
		}
		due = models.FormatDate(base.AddDate(0, 0, s.config.DefaultDueDays))
	}

	issue := fmt.Sprintf("Score %d%% below %g%% passing threshold", sample.Result.Pct, t.Scoring.PassingThreshold)
	if len(sample.Result.ActionNeeded) > 0 {
		issue = sample.Result.ActionNeeded[0].Label
	}

	reasons := make([]string, 0, len(sample.Result.ActionNeeded))
	for _, item := range sample.Result.ActionNeeded {
		reasons = append(reasons, fmt.Sprintf("%s (%s)", item.Label, item.Reason))
	}
	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = issue
	}

	return models.QaAction{
		ID:            s.newID(),
		Status:        models.QaStatusOpen,
		Source:        models.QaSourceAuto,
		Owner:         owner,
		Unit:          header.Unit,
		Staff:         sample.StaffAudited,
		DueDate:       due,
		CreatedAt:     now.Format(time.RFC3339),
		Issue:         issue,
		Reason:        reason,
		SessionID:     session.ID,
		SampleID:      sample.ID,
		TemplateID:    session.TemplateID,
		TemplateTitle: session.TemplateTitle,
	}
}
