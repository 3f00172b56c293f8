package scoring

import "github.com/SAP-F-2025/qa-compliance-service/internal/models"

// triggerSet collects critical-fail triggers deduplicated by question key.
// The first source to flag a key is the one recorded.
type triggerSet struct {
	triggers []models.CriticalFailTrigger
	seen     map[string]bool
}

func newTriggerSet() *triggerSet {
	return &triggerSet{seen: make(map[string]bool)}
}

func (s *triggerSet) add(key string, source models.TriggerSource, reason string) {
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.triggers = append(s.triggers, models.CriticalFailTrigger{Key: key, Source: source, Reason: reason})
}

func (s *triggerSet) keys() []string {
	keys := make([]string, len(s.triggers))
	for i, t := range s.triggers {
		keys[i] = t.Key
	}
	return keys
}

// expectedCriticalAnswer is the answer that makes q a critical fail, empty when
// the question cannot trigger one on its own.
func expectedCriticalAnswer(q models.Question) string {
	if q.CriticalFailIf != "" {
		return q.CriticalFailIf
	}
	if q.CriticalFail {
		return models.AnswerNo
	}
	return ""
}
