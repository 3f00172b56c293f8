package analytics

import (
	"fmt"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

func passing() *models.SampleResult {
	return &models.SampleResult{Pct: 100, Pass: true, CriticalFails: []string{}, ActionNeeded: []models.ActionItem{}}
}

func failing(label string) *models.SampleResult {
	return &models.SampleResult{
		Pct:           50,
		CriticalFails: []string{},
		ActionNeeded:  []models.ActionItem{{Key: label, Label: label, Reason: "Critical fail"}},
	}
}

func critical(key string) *models.SampleResult {
	return &models.SampleResult{
		Pct:           80,
		CriticalFails: []string{key},
		ActionNeeded:  []models.ActionItem{{Key: key, Label: key, Reason: "Critical fail"}},
	}
}

// session builds a completed session; results are consumed in order, one per sample.
func session(id, tool, unit, date string, results ...*models.SampleResult) models.AuditSession {
	s := models.AuditSession{
		ID:            id,
		TemplateID:    tool,
		TemplateTitle: tool,
		CreatedAt:     date + "T09:00:00Z",
		Header: models.SessionHeader{
			Status:    models.SessionStatusComplete,
			AuditDate: date,
			Unit:      unit,
		},
	}
	for i, r := range results {
		s.Samples = append(s.Samples, models.Sample{ID: fmt.Sprintf("%s-%d", id, i), Result: r})
	}
	return s
}
