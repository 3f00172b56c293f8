package models

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusComplete   SessionStatus = "complete"
)

// AuditSession is one audit run against a template.
// TemplateTitle is a snapshot taken when the session was created.
type AuditSession struct {
	ID            string        `json:"id"`
	TemplateID    string        `json:"templateId"`
	TemplateTitle string        `json:"templateTitle"`
	CreatedAt     string        `json:"createdAt"`
	Header        SessionHeader `json:"header"`
	Samples       []Sample      `json:"samples"`
}

type SessionHeader struct {
	Status    SessionStatus `json:"status" validate:"omitempty,session_status"`
	AuditDate string        `json:"auditDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Unit      string        `json:"unit,omitempty"`
	Auditor   string        `json:"auditor,omitempty"`

	// Session-scope answers (header questions of the template)
	Answers map[string]string `json:"answers,omitempty"`

	CorrectiveAction      string `json:"correctiveAction,omitempty"`
	CorrectiveActionOwner string `json:"correctiveActionOwner,omitempty"`
	CorrectiveActionDue   string `json:"correctiveActionDue,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// IsComplete reports whether the session participates in compliance aggregation.
func (s AuditSession) IsComplete() bool {
	return s.Header.Status == SessionStatusComplete
}

// SessionDate returns the audit date, falling back to the date part of CreatedAt.
func (s AuditSession) SessionDate() string {
	if s.Header.AuditDate != "" {
		return s.Header.AuditDate
	}
	return DatePart(s.CreatedAt)
}

// Sample is one observation within an audit session.
type Sample struct {
	ID           string            `json:"id"`
	Answers      map[string]string `json:"answers"`
	StaffAudited string            `json:"staffAudited,omitempty"`
	Result       *SampleResult     `json:"result"`
}

// Passed reports whether the sample has been scored and passed.
func (s Sample) Passed() bool {
	return s.Result != nil && s.Result.Pass
}

// HasCriticalFail reports whether the sample has been scored with at least one critical fail.
func (s Sample) HasCriticalFail() bool {
	return s.Result != nil && len(s.Result.CriticalFails) > 0
}

// SampleResult is the scorer output for one sample.
type SampleResult struct {
	Pct           int                   `json:"pct"`
	Pass          bool                  `json:"pass"`
	CriticalFails []string              `json:"criticalFails"`
	ActionNeeded  []ActionItem          `json:"actionNeeded"`
	Max           float64               `json:"max"`
	Got           float64               `json:"got"`
	Triggers      []CriticalFailTrigger `json:"triggers,omitempty"`
}

type ActionItem struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

type TriggerSource string

const (
	TriggerSourceQuestion    TriggerSource = "question"
	TriggerSourceGatingRule  TriggerSource = "gating_rule"
	TriggerSourceCriticalKey TriggerSource = "critical_key"
)

// CriticalFailTrigger records which mechanism first flagged a key as a critical fail.
type CriticalFailTrigger struct {
	Key    string        `json:"key"`
	Source TriggerSource `json:"source"`
	Reason string        `json:"reason,omitempty"`
}
