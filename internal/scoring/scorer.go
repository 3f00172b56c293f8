package scoring

import (
	"maps"
	"math"
	"strings"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

const (
	ReasonRequiredMissing = "Required item missing"
	ReasonGatingRule      = "Gating rule failed"
	ReasonCriticalFail    = "Critical fail"
)

// ComputeSampleResult scores one sample's answers against a normalized
// template. Missing answers read as empty strings.
func ComputeSampleResult(t *models.Template, answers map[string]string) models.SampleResult {
	var (
		got, maxScore float64
		actions       = make([]models.ActionItem, 0)
		triggers      = newTriggerSet()
	)

	for _, q := range t.SampleQuestions {
		v := answers[q.Key]
		isNA := v == models.AnswerNA && q.Type.IsYesNo()

		if q.Required && strings.TrimSpace(v) == "" {
			actions = append(actions, models.ActionItem{Key: q.Key, Label: labelOf(q), Reason: ReasonRequiredMissing})
		}

		if q.Scoreable() {
			if isNA {
				switch t.Scoring.NAPolicy {
				case models.NAPolicyFullCredit:
					got += q.Points
					maxScore += q.Points
				case models.NAPolicyZero:
					maxScore += q.Points
				}
			} else {
				maxScore += q.Points
				if v == models.AnswerYes {
					got += q.Points
				}
			}
		}

		if expected := expectedCriticalAnswer(q); expected != "" && v == expected {
			triggers.add(q.Key, models.TriggerSourceQuestion, "")
		}
	}

	for _, rule := range t.GatingRules {
		if rule.FailIf == "" || answers[rule.Key] != rule.FailIf {
			continue
		}
		reason := rule.Reason
		if reason == "" {
			reason = ReasonGatingRule
		}
		triggers.add(rule.Key, models.TriggerSourceGatingRule, reason)
		actions = append(actions, models.ActionItem{Key: rule.Key, Label: labelFor(t, rule.Key), Reason: reason})
	}

	for _, key := range t.CriticalFailKeys {
		if answers[key] == models.AnswerNo {
			triggers.add(key, models.TriggerSourceCriticalKey, "")
		}
	}

	criticalFails := triggers.keys()
	for _, key := range criticalFails {
		if !hasAction(actions, key) {
			actions = append(actions, models.ActionItem{Key: key, Label: labelFor(t, key), Reason: ReasonCriticalFail})
		}
	}

	if t.Scoring.MaxScore > 0 {
		maxScore = t.Scoring.MaxScore
	}
	pct := 100
	if maxScore != 0 {
		pct = int(math.Round(got / maxScore * 100))
		pct = min(max(pct, 0), 100)
	}

	return models.SampleResult{
		Pct:           pct,
		Pass:          float64(pct) >= t.Scoring.PassingThreshold && len(criticalFails) == 0,
		CriticalFails: criticalFails,
		ActionNeeded:  actions,
		Max:           maxScore,
		Got:           got,
		Triggers:      triggers.triggers,
	}
}

// ScoreSession returns a copy of session with every sample re-scored.
func ScoreSession(t *models.Template, session models.AuditSession) models.AuditSession {
	scored := session
	scored.Header.Answers = maps.Clone(session.Header.Answers)
	scored.Samples = make([]models.Sample, len(session.Samples))
	for i, sample := range session.Samples {
		result := ComputeSampleResult(t, sample.Answers)
		sample.Answers = maps.Clone(sample.Answers)
		sample.Result = &result
		scored.Samples[i] = sample
	}
	return scored
}

func labelOf(q models.Question) string {
	if q.Label != "" {
		return q.Label
	}
	return q.Key
}

func labelFor(t *models.Template, key string) string {
	if q, ok := t.FindQuestion(key); ok {
		return labelOf(q)
	}
	return key
}

func hasAction(actions []models.ActionItem, key string) bool {
	for _, a := range actions {
		if a.Key == key {
			return true
		}
	}
	return false
}
