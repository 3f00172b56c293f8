package analytics

import (
	"sort"
	"strings"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

const recentIssueLimit = 5

// Pass-rate bands for the staff trend heuristic.
const (
	staffImprovingRate = 90
	staffDecliningRate = 70
)

// ComputeStaffPerformance rolls up audited staff within the inclusive date range.
// TrendDirection is read off the period's pass rate alone, which TrendBasis
// states explicitly; it is not a comparison against an earlier period.
func ComputeStaffPerformance(sessions []models.AuditSession, actions []models.QaAction, education []models.EducationSession, dateRange models.DateRange) []models.StaffPerformance {
	type staffTally struct {
		perf   models.StaffPerformance
		issues []models.QaAction
	}
	byName := make(map[string]*staffTally)

	for _, s := range completedSessions(sessions) {
		if !models.InDateRange(s.SessionDate(), dateRange.Start, dateRange.End) {
			continue
		}
		for _, sample := range s.Samples {
			name := strings.TrimSpace(sample.StaffAudited)
			if name == "" {
				continue
			}
			st, ok := byName[strings.ToLower(name)]
			if !ok {
				st = &staffTally{perf: models.StaffPerformance{Name: name}}
				byName[strings.ToLower(name)] = st
			}
			st.perf.Audits++
			if sample.Passed() {
				st.perf.Passed++
			}
		}
	}

	for _, a := range actions {
		if created := models.DatePart(a.CreatedAt); created != "" && !models.InDateRange(created, dateRange.Start, dateRange.End) {
			continue
		}
		name := strings.TrimSpace(a.Staff)
		if name == "" {
			name = strings.TrimSpace(a.Owner)
		}
		st, ok := byName[strings.ToLower(name)]
		if !ok {
			continue
		}
		if a.IsComplete() {
			st.perf.CompletedActions++
		} else {
			st.perf.OpenActions++
		}
		if strings.TrimSpace(a.Issue) != "" {
			st.issues = append(st.issues, a)
		}
	}

	for _, e := range education {
		if !models.InDateRange(e.Date, dateRange.Start, dateRange.End) {
			continue
		}
		for _, st := range byName {
			if e.Attended(st.perf.Name) {
				st.perf.EducationCount++
			}
		}
	}

	out := make([]models.StaffPerformance, 0, len(byName))
	for _, st := range byName {
		perf := st.perf
		perf.PassRate = utils.RoundTo(float64(perf.Passed)/float64(perf.Audits)*100, 2)
		perf.TrendDirection = staffTrend(perf.PassRate)
		perf.TrendBasis = models.TrendBasisSinglePeriod

		sort.SliceStable(st.issues, func(i, j int) bool { return st.issues[i].CreatedAt > st.issues[j].CreatedAt })
		perf.RecentIssues = make([]string, 0, recentIssueLimit)
		for _, a := range st.issues {
			if len(perf.RecentIssues) == recentIssueLimit {
				break
			}
			perf.RecentIssues = append(perf.RecentIssues, strings.TrimSpace(a.Issue))
		}
		out = append(out, perf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func staffTrend(passRate float64) models.TrendDirection {
	switch {
	case passRate >= staffImprovingRate:
		return models.TrendImproving
	case passRate < staffDecliningRate:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}
