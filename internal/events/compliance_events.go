package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of compliance events
type EventType string

const (
	// Session events
	EventSessionCompleted EventType = "session.completed"

	// QA action events
	EventQaActionCreated EventType = "qa_action.created"

	// Template lifecycle events
	EventTemplateRevised  EventType = "template.revised"
	EventTemplateArchived EventType = "template.archived"

	// Reporting events
	EventReportGenerated EventType = "report.generated"
)

const (
	EventSource  = "qa-compliance-service"
	EventVersion = "1.0"
)

// ComplianceEvent is the envelope for every published event
type ComplianceEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps a payload in an envelope with a fresh id.
func NewEvent(eventType EventType, data interface{}, now time.Time) *ComplianceEvent {
	return &ComplianceEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: now.UTC(),
		Source:    EventSource,
		Version:   EventVersion,
		Data:      data,
	}
}

// Session event payloads

type SessionCompletedEvent struct {
	SessionID     string `json:"session_id"`
	TemplateID    string `json:"template_id"`
	TemplateTitle string `json:"template_title"`
	Unit          string `json:"unit,omitempty"`
	AuditDate     string `json:"audit_date,omitempty"`
	Samples       int    `json:"samples"`
	Passing       int    `json:"passing"`
	CriticalFails int    `json:"critical_fails"`
	ActionsOpened int    `json:"actions_opened"`
}

// QA action event payloads

type QaActionCreatedEvent struct {
	ActionID   string `json:"action_id"`
	SessionID  string `json:"session_id"`
	SampleID   string `json:"sample_id"`
	TemplateID string `json:"template_id"`
	Owner      string `json:"owner,omitempty"`
	Unit       string `json:"unit,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
	Issue      string `json:"issue"`
}

// Template event payloads

type TemplateRevisedEvent struct {
	TemplateID    string   `json:"template_id"`
	FromVersion   string   `json:"from_version"`
	ToVersion     string   `json:"to_version"`
	ChangedFields []string `json:"changed_fields"`
	Note          string   `json:"note,omitempty"`
}

type TemplateArchivedEvent struct {
	TemplateID string `json:"template_id"`
	Version    string `json:"version"`
	ArchivedAt string `json:"archived_at"`
}

// Reporting event payloads

type ReportGeneratedEvent struct {
	Report         string `json:"report"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	ComplianceRate int    `json:"compliance_rate"`
	CriticalFails  int    `json:"critical_fails"`
	Cached         bool   `json:"cached"`
}
