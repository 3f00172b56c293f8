package models

// TrendPoint is one day of a compliance trend series.
type TrendPoint struct {
	Date       string `json:"date"`
	Samples    int    `json:"samples"`
	Passing    int    `json:"passing"`
	Critical   int    `json:"critical"`
	Compliance int    `json:"compliance"`
}

// ComplianceStat is a total/passing/critical tally with its rounded pass rate.
type ComplianceStat struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Passing   int    `json:"passing"`
	Criticals int    `json:"criticals"`
	Rate      int    `json:"rate"`
}

type CriticalItemCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type ActionItemCount struct {
	Tool  string `json:"tool"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SessionSummary is the dashboard rollup over completed sessions.
type SessionSummary struct {
	Sessions      int                 `json:"sessions"`
	Samples       int                 `json:"samples"`
	Passing       int                 `json:"passing"`
	Critical      int                 `json:"critical"`
	Compliance    int                 `json:"compliance"`
	CriticalRate  int                 `json:"criticalRate"`
	ByTool        []ComplianceStat    `json:"byTool"`
	ByUnit        []ComplianceStat    `json:"byUnit"`
	CriticalItems []CriticalItemCount `json:"criticalItems"`
	ActionItems   []ActionItemCount   `json:"actionItems"`
}

// StatusBreakdown counts QA actions by status for one owner or unit.
type StatusBreakdown struct {
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Open       int    `json:"open"`
	InProgress int    `json:"inProgress"`
	Complete   int    `json:"complete"`
	Overdue    int    `json:"overdue"`
}

// ClosedLoopStats summarizes corrective actions. The closure buckets are cumulative.
type ClosedLoopStats struct {
	Total          int               `json:"total"`
	Open           int               `json:"open"`
	InProgress     int               `json:"inProgress"`
	Complete       int               `json:"complete"`
	OverdueCount   int               `json:"overdueCount"`
	ByOwner        []StatusBreakdown `json:"byOwner"`
	ByUnit         []StatusBreakdown `json:"byUnit"`
	ClosedWithin7  int               `json:"closedWithin7"`
	ClosedWithin14 int               `json:"closedWithin14"`
	ClosedWithin30 int               `json:"closedWithin30"`
	AvgCloseDays   float64           `json:"avgCloseDays"`
	ClosureRate    int               `json:"closureRate"`
}

type HeatmapCell struct {
	Total    int `json:"total"`
	Passing  int `json:"passing"`
	Rate     int `json:"rate"`
	Critical int `json:"critical"`
}

// Heatmap is a tool by unit compliance grid with alphabetically sorted axes.
type Heatmap struct {
	Tools []string                          `json:"tools"`
	Units []string                          `json:"units"`
	Cells map[string]map[string]HeatmapCell `json:"cells"`
}

// Cell returns the tool/unit cell, zero when absent.
func (h Heatmap) Cell(tool, unit string) HeatmapCell {
	return h.Cells[tool][unit]
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendBasisSinglePeriod labels staff trend directions derived from one period's pass rate.
const TrendBasisSinglePeriod = "single_period_pass_rate"

// DateRange is an inclusive YYYY-MM-DD range; empty bounds are open.
type DateRange struct {
	Start string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

type StaffPerformance struct {
	Name             string         `json:"name"`
	Audits           int            `json:"audits"`
	Passed           int            `json:"passed"`
	PassRate         float64        `json:"passRate"`
	OpenActions      int            `json:"openActions"`
	CompletedActions int            `json:"completedActions"`
	EducationCount   int            `json:"educationCount"`
	RecentIssues     []string       `json:"recentIssues"`
	TrendDirection   TrendDirection `json:"trendDirection"`
	TrendBasis       string         `json:"trendBasis"`
}

// RecurringIssueGroup is one issue::unit group that crossed the recurrence threshold.
type RecurringIssueGroup struct {
	Issue   string     `json:"issue"`
	Unit    string     `json:"unit"`
	Count   int        `json:"count"`
	Actions []QaAction `json:"actions"`
}

type FTagStatus string

const (
	FTagCompliant    FTagStatus = "compliant"
	FTagAtRisk       FTagStatus = "at-risk"
	FTagNonCompliant FTagStatus = "non-compliant"
)

// ICReport is the monthly infection-control report.
type ICReport struct {
	Period          ICReportPeriod        `json:"period"`
	Summary         ICReportSummary       `json:"summary"`
	Templates       []ICTemplateStat      `json:"templates"`
	FTags           []ICFTagStat          `json:"ftags"`
	Actions         ICActionStats         `json:"actions"`
	Education       ICEducationStats      `json:"education"`
	RecurringIssues []RecurringIssueGroup `json:"recurringIssues"`
	Trend           []ICMonthTrend        `json:"trend"`
	Recommendations []string              `json:"recommendations"`
	GeneratedAt     string                `json:"generatedAt"`
}

type ICReportPeriod struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	Label      string `json:"label"`
	PriorStart string `json:"priorStart"`
	PriorEnd   string `json:"priorEnd"`
}

type ICReportSummary struct {
	TotalSessions       int `json:"totalSessions"`
	TotalSamples        int `json:"totalSamples"`
	PassingSamples      int `json:"passingSamples"`
	ComplianceRate      int `json:"complianceRate"`
	CriticalFails       int `json:"criticalFails"`
	PriorComplianceRate int `json:"priorComplianceRate"`
	PriorCriticalFails  int `json:"priorCriticalFails"`
	ComplianceDelta     int `json:"complianceDelta"`
	CriticalDelta       int `json:"criticalDelta"`
}

type ICTemplateStat struct {
	TemplateID string         `json:"templateId"`
	Title      string         `json:"title"`
	Sessions   int            `json:"sessions"`
	Samples    int            `json:"samples"`
	Passing    int            `json:"passing"`
	Rate       int            `json:"rate"`
	PriorRate  int            `json:"priorRate"`
	HasPrior   bool           `json:"hasPrior"`
	Trend      TrendDirection `json:"trend"`
}

type ICFTagStat struct {
	Tag     string     `json:"tag"`
	Title   string     `json:"title,omitempty"`
	Samples int        `json:"samples"`
	Passing int        `json:"passing"`
	Rate    int        `json:"rate"`
	Status  FTagStatus `json:"status"`
}

type ICActionStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Complete   int `json:"complete"`
	Overdue    int `json:"overdue"`
}

type ICEducationStats struct {
	Sessions          int `json:"sessions"`
	Attendees         int `json:"attendees"`
	LinkedActions     int `json:"linkedActions"`
	LinkedCompleted   int `json:"linkedCompleted"`
	EffectivenessRate int `json:"effectivenessRate"`
}

type ICMonthTrend struct {
	Month          string `json:"month"`
	Samples        int    `json:"samples"`
	Passing        int    `json:"passing"`
	ComplianceRate int    `json:"complianceRate"`
	CriticalFails  int    `json:"criticalFails"`
}
