package models

import (
	"strings"
	"time"
)

type QaActionStatus string

const (
	QaStatusOpen       QaActionStatus = "open"
	QaStatusInProgress QaActionStatus = "in_progress"
	QaStatusComplete   QaActionStatus = "complete"
)

type QaActionSource string

const (
	QaSourceAuto   QaActionSource = "auto"
	QaSourceManual QaActionSource = "manual"
)

// QaAction is a corrective-action record tracked to closure.
// Overdue is derived, see IsOverdue.
type QaAction struct {
	ID          string         `json:"id"`
	Status      QaActionStatus `json:"status" validate:"omitempty,qa_status"`
	Source      QaActionSource `json:"source,omitempty"`
	Owner       string         `json:"owner,omitempty"`
	Unit        string         `json:"unit,omitempty"`
	Staff       string         `json:"staff,omitempty"`
	DueDate     string         `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	CompletedAt string         `json:"completedAt,omitempty"`
	Issue       string         `json:"issue"`
	Reason      string         `json:"reason,omitempty"`

	Evidence EvidenceChecklist `json:"evidence"`

	SessionID          string `json:"sessionId,omitempty"`
	SampleID           string `json:"sampleId,omitempty"`
	TemplateID         string `json:"templateId,omitempty"`
	TemplateTitle      string `json:"templateTitle,omitempty"`
	ReauditSessionID   string `json:"reauditSessionId,omitempty"`
	EducationSessionID string `json:"educationSessionId,omitempty"`
}

type EvidenceChecklist struct {
	EducationProvided bool `json:"educationProvided"`
	PolicyReviewed    bool `json:"policyReviewed"`
	ReauditScheduled  bool `json:"reauditScheduled"`
	ReauditCompleted  bool `json:"reauditCompleted"`
	SignedOff         bool `json:"signedOff"`
}

// IsComplete reports whether the action is closed.
func (a QaAction) IsComplete() bool {
	return a.Status == QaStatusComplete
}

// IsOverdue reports whether an incomplete action is past its due date as of now.
func (a QaAction) IsOverdue(now time.Time) bool {
	if a.IsComplete() || a.DueDate == "" {
		return false
	}
	return a.DueDate < FormatDate(now)
}

// EducationLinked reports whether the action has any link to staff education.
func (a QaAction) EducationLinked() bool {
	return a.EducationSessionID != "" || a.Evidence.EducationProvided
}

// EducationSession is an in-service education record.
type EducationSession struct {
	ID         string   `json:"id"`
	Topic      string   `json:"topic"`
	Category   string   `json:"category,omitempty"`
	Date       string   `json:"date"`
	Unit       string   `json:"unit,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Attendees  []string `json:"attendees"`
	Completed  bool     `json:"completed"`
}

// Attended reports whether name is on the attendee list (case-insensitive).
func (e EducationSession) Attended(name string) bool {
	for _, attendee := range e.Attendees {
		if strings.EqualFold(strings.TrimSpace(attendee), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
