package analytics

import (
	"strings"
	"time"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

// RecurrenceThreshold is the group size at which an issue counts as recurring.
const RecurrenceThreshold = 3

func recurrenceKey(a models.QaAction) (string, bool) {
	issue := strings.TrimSpace(a.Issue)
	if issue == "" {
		return "", false
	}
	return issue + "::" + strings.TrimSpace(a.Unit), true
}

// inWindow keeps actions created in the windowDays days up to and including now.
func inWindow(actions []models.QaAction, windowDays int, now time.Time) []models.QaAction {
	from := models.FormatDate(now.AddDate(0, 0, -windowDays))
	to := models.FormatDate(now)
	out := make([]models.QaAction, 0, len(actions))
	for _, a := range actions {
		if models.InDateRange(models.DatePart(a.CreatedAt), from, to) {
			out = append(out, a)
		}
	}
	return out
}

// FindRecurringIssues returns, in input order, the actions in the trailing
// window whose issue::unit group reaches RecurrenceThreshold.
func FindRecurringIssues(actions []models.QaAction, windowDays int, now time.Time) []models.QaAction {
	recent := inWindow(actions, windowDays, now)
	counts := make(map[string]int)
	for _, a := range recent {
		if key, ok := recurrenceKey(a); ok {
			counts[key]++
		}
	}

	out := make([]models.QaAction, 0)
	for _, a := range recent {
		if key, ok := recurrenceKey(a); ok && counts[key] >= RecurrenceThreshold {
			out = append(out, a)
		}
	}
	return out
}

// GroupRecurringIssues is FindRecurringIssues grouped by issue::unit in
// first-seen order.
func GroupRecurringIssues(actions []models.QaAction, windowDays int, now time.Time) []models.RecurringIssueGroup {
	var order []string
	groups := make(map[string]*models.RecurringIssueGroup)
	for _, a := range FindRecurringIssues(actions, windowDays, now) {
		key, _ := recurrenceKey(a)
		g, ok := groups[key]
		if !ok {
			g = &models.RecurringIssueGroup{Issue: strings.TrimSpace(a.Issue), Unit: orUnassigned(a.Unit)}
			groups[key] = g
			order = append(order, key)
		}
		g.Count++
		g.Actions = append(g.Actions, a)
	}

	out := make([]models.RecurringIssueGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}
