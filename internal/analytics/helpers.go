// Package analytics rolls scored sessions, QA actions and education records
// into compliance metrics. Every function is a pure reducer over its inputs.
package analytics

import (
	"strings"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

const (
	UnassignedLabel = "Unassigned"
	UnknownTool     = "Unknown"
)

func toolName(s models.AuditSession) string {
	if title := strings.TrimSpace(s.TemplateTitle); title != "" {
		return title
	}
	if id := strings.TrimSpace(s.TemplateID); id != "" {
		return id
	}
	return UnknownTool
}

func orUnassigned(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return UnassignedLabel
}

func completedSessions(sessions []models.AuditSession) []models.AuditSession {
	out := make([]models.AuditSession, 0, len(sessions))
	for _, s := range sessions {
		if s.IsComplete() {
			out = append(out, s)
		}
	}
	return out
}

// tally accumulates sample outcomes for one group.
type tally struct {
	total    int
	passing  int
	critical int
}

func (t *tally) addSample(sample models.Sample) {
	t.total++
	if sample.Passed() {
		t.passing++
	}
	if sample.HasCriticalFail() {
		t.critical++
	}
}

// orderedTallies keeps groups in first-seen order.
type orderedTallies struct {
	names []string
	byKey map[string]*tally
}

func newOrderedTallies() *orderedTallies {
	return &orderedTallies{byKey: make(map[string]*tally)}
}

func (o *orderedTallies) get(name string) *tally {
	t, ok := o.byKey[name]
	if !ok {
		t = &tally{}
		o.byKey[name] = t
		o.names = append(o.names, name)
	}
	return t
}
