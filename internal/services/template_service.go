package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"time"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/scoring"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

// TemplateService normalizes, revises and exchanges audit templates.
type TemplateService interface {
	NormalizeBatch(ctx context.Context, raws []models.RawTemplate) (*NormalizeBatchResult, error)
	Revise(ctx context.Context, current *models.Template, edited models.RawTemplate, note string) (*RevisionResult, error)
	Archive(ctx context.Context, t *models.Template) (*models.Template, error)
	ExportCanonical(t *models.Template) ([]byte, error)
	ImportCanonical(ctx context.Context, doc []byte) (*models.Template, error)
}

type NormalizeBatchResult struct {
	Templates []*models.Template        `json:"templates"`
	Rejected  []models.RejectedTemplate `json:"rejected"`
}

type RevisionResult struct {
	Template *models.Template    `json:"template"`
	Change   models.ChangeRecord `json:"change"`
}

type templateService struct {
	normalizer *scoring.Normalizer
	publisher  events.EventPublisher
	logger     *slog.Logger
	opLogger   *ServiceLogger
	now        func() time.Time
}

func NewTemplateService(normalizer *scoring.Normalizer, publisher events.EventPublisher, logger *slog.Logger) TemplateService {
	return &templateService{
		normalizer: normalizer,
		publisher:  publisher,
		logger:     logger,
		opLogger:   NewServiceLogger(logger, LogConfig{Service: "qa-compliance", Component: "templates"}),
		now:        time.Now,
	}
}

// ===== NORMALIZATION =====

func (s *templateService) NormalizeBatch(ctx context.Context, raws []models.RawTemplate) (*NormalizeBatchResult, error) {
	op := s.opLogger.WithOperation(ctx, "normalize_batch")
	if len(raws) == 0 {
		op.LogResult("", "template", ErrNoTemplates)
		return nil, ErrNoTemplates
	}

	result := &NormalizeBatchResult{
		Templates: make([]*models.Template, 0, len(raws)),
		Rejected:  []models.RejectedTemplate{},
	}

	for i, raw := range raws {
		t, err := s.normalizer.Normalize(raw, i)
		if err != nil {
			rejected := models.RejectedTemplate{Index: i, Error: err.Error()}
			var schemaErr *apperrors.SchemaValidationError
			if errors.As(err, &schemaErr) {
				rejected.TemplateID = schemaErr.TemplateID
				rejected.Details = schemaErr.Errors
				s.opLogger.LogValidationError(ctx, "normalize_batch", rejected.TemplateID, schemaErr.Errors)
			} else {
				s.logger.WarnContext(ctx, "Skipping invalid template",
					"index", i,
					"error", err)
			}
			result.Rejected = append(result.Rejected, rejected)
			continue
		}
		result.Templates = append(result.Templates, t)
	}

	s.logger.InfoContext(ctx, "Normalized template batch",
		"received", len(raws),
		"accepted", len(result.Templates),
		"rejected", len(result.Rejected))
	op.LogResult("", "template", nil)

	return result, nil
}

// ===== LIFECYCLE =====

func (s *templateService) Revise(ctx context.Context, current *models.Template, edited models.RawTemplate, note string) (result *RevisionResult, err error) {
	op := s.opLogger.WithOperation(ctx, "revise_template")
	defer func() { op.LogResult(current.ID, "template", err) }()

	if current.Archived {
		return nil, fmt.Errorf("revise %s: %w", current.ID, ErrTemplateArchived)
	}

	if id, ok := edited["templateId"].(string); ok && id != "" && id != current.ID {
		return nil, fmt.Errorf("revise %s with %s: %w", current.ID, id, ErrTemplateMismatch)
	}

	from, err := semver.NewVersion(current.Version)
	if err != nil {
		from = semver.MustParse(scoring.DefaultVersion)
	}
	to := from.IncMinor()
	now := s.now().UTC()

	raw := maps.Clone(edited)
	if raw == nil {
		raw = models.RawTemplate{}
	}
	raw["id"] = current.ID
	raw["templateId"] = current.ID
	raw["version"] = to.String()
	raw["archived"] = false
	delete(raw, "archivedAt")
	raw["createdAt"] = current.CreatedAt
	raw["updatedAt"] = now.Format(time.RFC3339)

	revised, err := s.normalizer.Normalize(raw, 0)
	if err != nil {
		return nil, err
	}

	changed := changedFields(current, revised)
	if len(changed) == 0 {
		violation := NewBusinessRuleError("revision_has_changes", "revision does not change the template",
			map[string]interface{}{"template_id": current.ID})
		s.opLogger.LogBusinessRuleViolation(ctx, "revise", violation)
		return nil, violation
	}

	change := models.ChangeRecord{
		TemplateID:    current.ID,
		FromVersion:   from.String(),
		ToVersion:     revised.Version,
		ChangedAt:     now.Format(time.RFC3339),
		Note:          note,
		ChangedFields: changed,
	}

	s.publish(ctx, events.NewEvent(events.EventTemplateRevised, events.TemplateRevisedEvent{
		TemplateID:    change.TemplateID,
		FromVersion:   change.FromVersion,
		ToVersion:     change.ToVersion,
		ChangedFields: change.ChangedFields,
		Note:          note,
	}, now))

	return &RevisionResult{Template: revised, Change: change}, nil
}

// changedFields lists the JSON names of the content fields that differ.
func changedFields(before, after *models.Template) []string {
	fields := []struct {
		name string
		a, b interface{}
	}{
		{"title", before.Title, after.Title},
		{"category", before.Category, after.Category},
		{"scoring", before.Scoring, after.Scoring},
		{"maxScore", before.MaxScore, after.MaxScore},
		{"criticalFailKeys", before.CriticalFailKeys, after.CriticalFailKeys},
		{"gatingRules", before.GatingRules, after.GatingRules},
		{"sessionQuestions", before.SessionQuestions, after.SessionQuestions},
		{"sampleQuestions", before.SampleQuestions, after.SampleQuestions},
		{"references", before.References, after.References},
	}

	changed := []string{}
	for _, f := range fields {
		if !equalJSON(f.a, f.b) {
			changed = append(changed, f.name)
		}
	}
	return changed
}

// equalJSON compares through the wire form so nil and empty slices are not
// reported as a change.
func equalJSON(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	var va, vb interface{}
	_ = json.Unmarshal(ja, &va)
	_ = json.Unmarshal(jb, &vb)
	return reflect.DeepEqual(normalizeEmpty(va), normalizeEmpty(vb))
}

func normalizeEmpty(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		if len(val) == 0 {
			return []interface{}{}
		}
		for i := range val {
			val[i] = normalizeEmpty(val[i])
		}
		return val
	case map[string]interface{}:
		for k := range val {
			val[k] = normalizeEmpty(val[k])
		}
		return val
	default:
		return v
	}
}

func (s *templateService) Archive(ctx context.Context, t *models.Template) (archived *models.Template, err error) {
	op := s.opLogger.WithOperation(ctx, "archive_template")
	defer func() { op.LogResult(t.ID, "template", err) }()

	if t.Archived {
		return nil, fmt.Errorf("archive %s: %w", t.ID, ErrTemplateArchived)
	}

	now := s.now().UTC()
	copied := *t
	copied.Archived = true
	copied.ArchivedAt = now.Format(time.RFC3339)
	copied.UpdatedAt = copied.ArchivedAt

	s.publish(ctx, events.NewEvent(events.EventTemplateArchived, events.TemplateArchivedEvent{
		TemplateID: copied.ID,
		Version:    copied.Version,
		ArchivedAt: copied.ArchivedAt,
	}, now))

	return &copied, nil
}

// ===== CANONICAL EXCHANGE =====

func (s *templateService) ExportCanonical(t *models.Template) ([]byte, error) {
	doc, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal template %s: %w", t.ID, err)
	}
	if err := validator.ValidateCanonicalDocument(doc); err != nil {
		return nil, fmt.Errorf("export template %s: %w", t.ID, err)
	}
	return doc, nil
}

func (s *templateService) ImportCanonical(ctx context.Context, doc []byte) (t *models.Template, err error) {
	op := s.opLogger.WithOperation(ctx, "import_canonical")
	defer func() {
		id := ""
		if t != nil {
			id = t.ID
		}
		op.LogResult(id, "template", err)
	}()

	if err := validator.ValidateCanonicalDocument(doc); err != nil {
		return nil, err
	}

	var raw models.RawTemplate
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode canonical template: %w", ErrBadRequest)
	}
	return s.normalizer.Normalize(raw, 0)
}

func (s *templateService) publish(ctx context.Context, event *events.ComplianceEvent) {
	publishEvent(ctx, s.publisher, s.logger, event)
}

// publishEvent sends event and logs failures; publishing never fails the caller.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.ComplianceEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Event publish failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}
