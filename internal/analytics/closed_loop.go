package analytics

import (
	"sort"
	"time"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

// ComputeClosedLoopStats summarizes corrective actions as of now.
// Actions with an unknown status count as open.
func ComputeClosedLoopStats(actions []models.QaAction, now time.Time) models.ClosedLoopStats {
	stats := models.ClosedLoopStats{Total: len(actions)}
	byOwner := make(map[string]*models.StatusBreakdown)
	byUnit := make(map[string]*models.StatusBreakdown)

	var closeDays []float64
	for _, a := range actions {
		overdue := a.IsOverdue(now)
		for _, b := range []*models.StatusBreakdown{
			breakdownFor(byOwner, orUnassigned(a.Owner)),
			breakdownFor(byUnit, orUnassigned(a.Unit)),
		} {
			b.Total++
			countStatus(b, a.Status)
			if overdue {
				b.Overdue++
			}
		}

		switch a.Status {
		case models.QaStatusComplete:
			stats.Complete++
		case models.QaStatusInProgress:
			stats.InProgress++
		default:
			stats.Open++
		}
		if overdue {
			stats.OverdueCount++
		}

		if days, ok := daysToClose(a); ok {
			closeDays = append(closeDays, days)
		}
	}

	var sum float64
	for _, d := range closeDays {
		sum += d
		if d <= 7 {
			stats.ClosedWithin7++
		}
		if d <= 14 {
			stats.ClosedWithin14++
		}
		if d <= 30 {
			stats.ClosedWithin30++
		}
	}
	if len(closeDays) > 0 {
		stats.AvgCloseDays = utils.RoundTo(sum/float64(len(closeDays)), 1)
	}
	stats.ClosureRate = utils.RoundPercent(stats.Complete, stats.Total)
	stats.ByOwner = sortedBreakdowns(byOwner)
	stats.ByUnit = sortedBreakdowns(byUnit)
	return stats
}

func breakdownFor(m map[string]*models.StatusBreakdown, name string) *models.StatusBreakdown {
	b, ok := m[name]
	if !ok {
		b = &models.StatusBreakdown{Name: name}
		m[name] = b
	}
	return b
}

func countStatus(b *models.StatusBreakdown, status models.QaActionStatus) {
	switch status {
	case models.QaStatusComplete:
		b.Complete++
	case models.QaStatusInProgress:
		b.InProgress++
	default:
		b.Open++
	}
}

func sortedBreakdowns(m map[string]*models.StatusBreakdown) []models.StatusBreakdown {
	out := make([]models.StatusBreakdown, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// daysToClose is the fractional number of days between creation and completion
// of a complete action. Negative spans are treated as bad data.
func daysToClose(a models.QaAction) (float64, bool) {
	if !a.IsComplete() {
		return 0, false
	}
	created, ok := models.ParseTimestamp(a.CreatedAt)
	if !ok {
		return 0, false
	}
	completed, ok := models.ParseTimestamp(a.CompletedAt)
	if !ok {
		return 0, false
	}
	days := completed.Sub(created).Hours() / 24
	if days < 0 {
		return 0, false
	}
	return days, true
}
