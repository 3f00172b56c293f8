package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SAP-F-2025/qa-compliance-service/internal/classifier"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

const (
	icFTagPrefix         = "F88"
	icPriorWindowDays    = 30
	icRecurringDays      = 90
	icTrendMonths        = 6
	icTemplateTrendDelta = 5

	icCompliantRate = 90
	icAtRiskRate    = 75

	icLowCompliance    = 85
	icTargetCompliance = 95
)

// Reminders appended to every infection-control report.
const (
	ReminderIPCPReview  = "Review and update the Infection Prevention and Control Program (IPCP) at least annually (F880)."
	ReminderStewardship = "Confirm the antibiotic stewardship program is monitoring antibiotic use and resistance data (F881)."
)

// ICReportInput is everything the infection-control report reads.
type ICReportInput struct {
	Sessions    []models.AuditSession     `json:"sessions"`
	Actions     []models.QaAction         `json:"actions"`
	Education   []models.EducationSession `json:"education"`
	Templates   []models.Template         `json:"templates"`
	Keywords    []string                  `json:"keywords"`
	FTagCatalog map[string]string         `json:"ftagCatalog,omitempty"`
}

// ReportWindow returns the calendar month covered by a report generated at now.
// monthsBack 0 is the current month, otherwise now moves back 30 days per month
// and the window is the month it lands in.
func ReportWindow(monthsBack int, now time.Time) (start, end time.Time) {
	ref := now
	if monthsBack > 0 {
		ref = now.AddDate(0, 0, -30*monthsBack)
	}
	start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

type icContext struct {
	in        ICReportInput
	templates map[string]*models.Template
}

func (c *icContext) templateTitle(templateID, snapshot string) string {
	if t, ok := c.templates[templateID]; ok && t.Title != "" {
		return t.Title
	}
	return snapshot
}

func (c *icContext) sessionRelevant(s models.AuditSession) bool {
	if classifier.MatchesAnyKeyword(c.templateTitle(s.TemplateID, s.TemplateTitle), c.in.Keywords) ||
		classifier.MatchesAnyKeyword(s.TemplateTitle, c.in.Keywords) {
		return true
	}
	t, ok := c.templates[s.TemplateID]
	return ok && t.HasReferencePrefix(models.FrameworkCMS, icFTagPrefix)
}

func (c *icContext) actionRelevant(a models.QaAction) bool {
	return classifier.MatchesAnyKeyword(c.templateTitle(a.TemplateID, a.TemplateTitle), c.in.Keywords) ||
		classifier.MatchesAnyKeyword(a.TemplateTitle, c.in.Keywords) ||
		classifier.MatchesAnyKeyword(a.Issue, c.in.Keywords)
}

// sessionsBetween returns completed IC sessions dated within [from, to].
func (c *icContext) sessionsBetween(from, to string) []models.AuditSession {
	out := make([]models.AuditSession, 0)
	for _, s := range c.in.Sessions {
		if s.IsComplete() && models.InDateRange(s.SessionDate(), from, to) && c.sessionRelevant(s) {
			out = append(out, s)
		}
	}
	return out
}

// GenerateICReport builds the infection-control report for one month.
func GenerateICReport(in ICReportInput, monthsBack int, now time.Time) models.ICReport {
	ctx := &icContext{in: in, templates: make(map[string]*models.Template, len(in.Templates))}
	for i := range in.Templates {
		ctx.templates[in.Templates[i].ID] = &in.Templates[i]
	}

	start, end := ReportWindow(monthsBack, now)
	priorStart := start.AddDate(0, 0, -icPriorWindowDays)
	priorEnd := start.AddDate(0, 0, -1)

	report := models.ICReport{
		Period: models.ICReportPeriod{
			Start:      models.FormatDate(start),
			End:        models.FormatDate(end),
			Label:      start.Format("January 2006"),
			PriorStart: models.FormatDate(priorStart),
			PriorEnd:   models.FormatDate(priorEnd),
		},
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}

	current := ctx.sessionsBetween(report.Period.Start, report.Period.End)
	prior := ctx.sessionsBetween(report.Period.PriorStart, report.Period.PriorEnd)

	report.Summary = icSummary(current, prior)
	report.Templates = ctx.templateStats(current, prior)
	report.FTags = ctx.ftagStats(current)

	var relevantActions, windowActions []models.QaAction
	for _, a := range in.Actions {
		if !ctx.actionRelevant(a) {
			continue
		}
		relevantActions = append(relevantActions, a)
		if date := actionDate(a); date == "" || models.InDateRange(date, report.Period.Start, report.Period.End) {
			windowActions = append(windowActions, a)
		}
	}
	report.Actions = icActionStats(windowActions, now)
	report.Education = ctx.educationStats(windowActions, report.Period)
	report.RecurringIssues = GroupRecurringIssues(relevantActions, icRecurringDays, end)
	report.Trend = ctx.monthlyTrend(now)
	report.Recommendations = recommendations(report)
	return report
}

func actionDate(a models.QaAction) string {
	if d := models.DatePart(a.CreatedAt); d != "" {
		return d
	}
	return models.DatePart(a.DueDate)
}

func sampleTally(sessions []models.AuditSession) tally {
	var t tally
	for _, s := range sessions {
		for _, sample := range s.Samples {
			t.addSample(sample)
		}
	}
	return t
}

func icSummary(current, prior []models.AuditSession) models.ICReportSummary {
	cur := sampleTally(current)
	prev := sampleTally(prior)

	summary := models.ICReportSummary{
		TotalSessions:       len(current),
		TotalSamples:        cur.total,
		PassingSamples:      cur.passing,
		ComplianceRate:      utils.RoundPercent(cur.passing, cur.total),
		CriticalFails:       cur.critical,
		PriorComplianceRate: utils.RoundPercent(prev.passing, prev.total),
		PriorCriticalFails:  prev.critical,
	}
	summary.ComplianceDelta = summary.ComplianceRate - summary.PriorComplianceRate
	summary.CriticalDelta = summary.CriticalFails - summary.PriorCriticalFails
	return summary
}

func (c *icContext) templateStats(current, prior []models.AuditSession) []models.ICTemplateStat {
	priorByTemplate := make(map[string]*tally)
	for _, s := range prior {
		t, ok := priorByTemplate[s.TemplateID]
		if !ok {
			t = &tally{}
			priorByTemplate[s.TemplateID] = t
		}
		for _, sample := range s.Samples {
			t.addSample(sample)
		}
	}

	var order []string
	stats := make(map[string]*models.ICTemplateStat)
	tallies := make(map[string]*tally)
	for _, s := range current {
		st, ok := stats[s.TemplateID]
		if !ok {
			st = &models.ICTemplateStat{TemplateID: s.TemplateID, Title: c.templateTitle(s.TemplateID, s.TemplateTitle)}
			stats[s.TemplateID] = st
			tallies[s.TemplateID] = &tally{}
			order = append(order, s.TemplateID)
		}
		st.Sessions++
		for _, sample := range s.Samples {
			tallies[s.TemplateID].addSample(sample)
		}
	}

	out := make([]models.ICTemplateStat, 0, len(order))
	for _, id := range order {
		st := stats[id]
		t := tallies[id]
		st.Samples, st.Passing = t.total, t.passing
		st.Rate = utils.RoundPercent(t.passing, t.total)
		st.Trend = models.TrendStable
		if p, ok := priorByTemplate[id]; ok && p.total > 0 {
			st.HasPrior = true
			st.PriorRate = utils.RoundPercent(p.passing, p.total)
			switch delta := st.Rate - st.PriorRate; {
			case delta > icTemplateTrendDelta:
				st.Trend = models.TrendImproving
			case delta < -icTemplateTrendDelta:
				st.Trend = models.TrendDeclining
			}
		}
		out = append(out, *st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate < out[j].Rate })
	return out
}

func (c *icContext) ftagStats(current []models.AuditSession) []models.ICFTagStat {
	byTag := make(map[string]*models.ICFTagStat)
	for _, s := range current {
		t, ok := c.templates[s.TemplateID]
		if !ok {
			continue
		}
		for _, ref := range t.References {
			if ref.Framework != models.FrameworkCMS || !strings.HasPrefix(ref.ID, icFTagPrefix) {
				continue
			}
			st, ok := byTag[ref.ID]
			if !ok {
				title := c.in.FTagCatalog[ref.ID]
				if title == "" {
					title = ref.Title
				}
				st = &models.ICFTagStat{Tag: ref.ID, Title: title}
				byTag[ref.ID] = st
			}
			for _, sample := range s.Samples {
				st.Samples++
				if sample.Passed() {
					st.Passing++
				}
			}
		}
	}

	out := make([]models.ICFTagStat, 0, len(byTag))
	for _, st := range byTag {
		st.Rate = utils.RoundPercent(st.Passing, st.Samples)
		st.Status = ftagStatus(st.Rate)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

func ftagStatus(rate int) models.FTagStatus {
	switch {
	case rate >= icCompliantRate:
		return models.FTagCompliant
	case rate >= icAtRiskRate:
		return models.FTagAtRisk
	default:
		return models.FTagNonCompliant
	}
}

func icActionStats(actions []models.QaAction, now time.Time) models.ICActionStats {
	stats := models.ICActionStats{Total: len(actions)}
	for _, a := range actions {
		switch a.Status {
		case models.QaStatusComplete:
			stats.Complete++
		case models.QaStatusInProgress:
			stats.InProgress++
		default:
			stats.Open++
		}
		if a.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// educationStats measures how often education-linked IC actions were closed.
func (c *icContext) educationStats(actions []models.QaAction, period models.ICReportPeriod) models.ICEducationStats {
	var stats models.ICEducationStats
	for _, e := range c.in.Education {
		if !models.InDateRange(e.Date, period.Start, period.End) {
			continue
		}
		if !classifier.MatchesAnyKeyword(e.Topic, c.in.Keywords) && !classifier.MatchesAnyKeyword(e.Category, c.in.Keywords) {
			continue
		}
		stats.Sessions++
		stats.Attendees += len(e.Attendees)
	}
	for _, a := range actions {
		if !a.EducationLinked() {
			continue
		}
		stats.LinkedActions++
		if a.IsComplete() {
			stats.LinkedCompleted++
		}
	}
	stats.EffectivenessRate = utils.RoundPercent(stats.LinkedCompleted, stats.LinkedActions)
	return stats
}

// monthlyTrend covers the six calendar months ending with now's month.
func (c *icContext) monthlyTrend(now time.Time) []models.ICMonthTrend {
	trend := make([]models.ICMonthTrend, 0, icTrendMonths)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := icTrendMonths - 1; i >= 0; i-- {
		start := first.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, -1)
		t := sampleTally(c.sessionsBetween(models.FormatDate(start), models.FormatDate(end)))
		trend = append(trend, models.ICMonthTrend{
			Month:          start.Format("2006-01"),
			Samples:        t.total,
			Passing:        t.passing,
			ComplianceRate: utils.RoundPercent(t.passing, t.total),
			CriticalFails:  t.critical,
		})
	}
	return trend
}

// recommendations applies the fixed rule table in order, then the reminders.
func recommendations(r models.ICReport) []string {
	var recs []string
	rate := r.Summary.ComplianceRate

	switch {
	case rate < icLowCompliance:
		recs = append(recs, fmt.Sprintf("Infection control compliance is %d%%, below the %d%% threshold. Start a performance improvement plan and increase audit frequency.", rate, icLowCompliance))
	case rate < icTargetCompliance:
		recs = append(recs, fmt.Sprintf("Infection control compliance is %d%%. Focus education on the most frequent deficiencies to reach %d%%.", rate, icTargetCompliance))
	default:
		recs = append(recs, fmt.Sprintf("Infection control compliance is %d%%. Maintain the current monitoring frequency.", rate))
	}

	if n := r.Summary.CriticalFails; n > 0 {
		recs = append(recs, fmt.Sprintf("%d critical fail(s) were identified. Review each with the infection preventionist and document immediate corrective action.", n))
	}
	if n := r.Actions.Overdue; n > 0 {
		recs = append(recs, fmt.Sprintf("%d infection control corrective action(s) are overdue. Escalate to the QAPI committee.", n))
	}

	var low []string
	for _, t := range r.Templates {
		if t.Rate < icLowCompliance {
			low = append(low, t.Title)
		}
	}
	if len(low) > 0 {
		recs = append(recs, fmt.Sprintf("Tools below %d%%: %s. Prioritize re-audits and targeted education.", icLowCompliance, strings.Join(low, ", ")))
	}
	if n := len(r.RecurringIssues); n > 0 {
		recs = append(recs, fmt.Sprintf("%d recurring issue(s) in the last %d days. Complete a root cause analysis.", n, icRecurringDays))
	}

	return append(recs, ReminderIPCPReview, ReminderStewardship)
}
