package analytics

import (
	"sort"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

// SummarizeSessions builds the facility dashboard over completed sessions.
// Tool and unit breakdowns are worst-first; ties keep first-seen order.
func SummarizeSessions(sessions []models.AuditSession) models.SessionSummary {
	var (
		summary  models.SessionSummary
		overall  tally
		byTool   = newOrderedTallies()
		byUnit   = newOrderedTallies()
		critical = newCounter()
		actions  = newCounter()
		labels   = make(map[string]models.ActionItemCount)
	)

	for _, s := range completedSessions(sessions) {
		summary.Sessions++
		tool := toolName(s)
		unit := orUnassigned(s.Header.Unit)

		for _, sample := range s.Samples {
			overall.addSample(sample)
			byTool.get(tool).addSample(sample)
			byUnit.get(unit).addSample(sample)

			if sample.Result == nil {
				continue
			}
			for _, key := range sample.Result.CriticalFails {
				critical.inc(key)
			}
			for _, item := range sample.Result.ActionNeeded {
				key := tool + "|" + item.Label
				if _, ok := labels[key]; !ok {
					labels[key] = models.ActionItemCount{Tool: tool, Label: item.Label}
				}
				actions.inc(key)
			}
		}
	}

	summary.Samples = overall.total
	summary.Passing = overall.passing
	summary.Critical = overall.critical
	summary.Compliance = utils.RoundPercent(overall.passing, overall.total)
	summary.CriticalRate = utils.RoundPercent(overall.critical, overall.total)
	summary.ByTool = complianceStats(byTool)
	summary.ByUnit = complianceStats(byUnit)

	summary.CriticalItems = make([]models.CriticalItemCount, 0, len(critical.keys))
	for _, key := range critical.sorted() {
		summary.CriticalItems = append(summary.CriticalItems, models.CriticalItemCount{Key: key, Count: critical.counts[key]})
	}
	summary.ActionItems = make([]models.ActionItemCount, 0, len(actions.keys))
	for _, key := range actions.sorted() {
		item := labels[key]
		item.Count = actions.counts[key]
		summary.ActionItems = append(summary.ActionItems, item)
	}
	return summary
}

func complianceStats(groups *orderedTallies) []models.ComplianceStat {
	stats := make([]models.ComplianceStat, 0, len(groups.names))
	for _, name := range groups.names {
		t := groups.byKey[name]
		stats = append(stats, models.ComplianceStat{
			Name:      name,
			Total:     t.total,
			Passing:   t.passing,
			Criticals: t.critical,
			Rate:      utils.RoundPercent(t.passing, t.total),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Rate < stats[j].Rate })
	return stats
}

// counter counts keys and remembers first-seen order.
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// sorted returns keys by descending count, first-seen order on ties.
func (c *counter) sorted() []string {
	keys := append([]string(nil), c.keys...)
	sort.SliceStable(keys, func(i, j int) bool { return c.counts[keys[i]] > c.counts[keys[j]] })
	return keys
}
