package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

const (
	sheetSummary         = "Summary"
	sheetTemplates       = "Templates"
	sheetFTags           = "F-Tags"
	sheetTrend           = "Trend"
	sheetRecurring       = "Recurring Issues"
	sheetRecommendations = "Recommendations"
)

// ExportICReportWorkbook renders a report as an xlsx workbook, one sheet per section.
func (s *analyticsService) ExportICReportWorkbook(report *models.ICReport) ([]byte, error) {
	return icReportWorkbook(report)
}

func icReportWorkbook(report *models.ICReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	sum := report.Summary
	summaryRows := [][]interface{}{
		{"Period", report.Period.Label},
		{"Start", report.Period.Start},
		{"End", report.Period.End},
		{"Sessions", sum.TotalSessions},
		{"Samples", sum.TotalSamples},
		{"Passing Samples", sum.PassingSamples},
		{"Compliance Rate (%)", sum.ComplianceRate},
		{"Prior Compliance Rate (%)", sum.PriorComplianceRate},
		{"Compliance Change", sum.ComplianceDelta},
		{"Critical Fails", sum.CriticalFails},
		{"Prior Critical Fails", sum.PriorCriticalFails},
		{"Open Actions", report.Actions.Open},
		{"In Progress Actions", report.Actions.InProgress},
		{"Completed Actions", report.Actions.Complete},
		{"Overdue Actions", report.Actions.Overdue},
		{"Education Sessions", report.Education.Sessions},
		{"Education Attendees", report.Education.Attendees},
		{"Education Effectiveness (%)", report.Education.EffectivenessRate},
		{"Generated At", report.GeneratedAt},
	}
	if err := writeRows(f, sheetSummary, nil, summaryRows); err != nil {
		return nil, err
	}

	templateRows := make([][]interface{}, 0, len(report.Templates))
	for _, t := range report.Templates {
		prior := interface{}("")
		if t.HasPrior {
			prior = t.PriorRate
		}
		templateRows = append(templateRows, []interface{}{t.TemplateID, t.Title, t.Sessions, t.Samples, t.Passing, t.Rate, prior, string(t.Trend)})
	}
	if err := writeSheet(f, sheetTemplates,
		[]string{"Template ID", "Title", "Sessions", "Samples", "Passing", "Rate (%)", "Prior Rate (%)", "Trend"},
		templateRows); err != nil {
		return nil, err
	}

	ftagRows := make([][]interface{}, 0, len(report.FTags))
	for _, tag := range report.FTags {
		ftagRows = append(ftagRows, []interface{}{tag.Tag, tag.Title, tag.Samples, tag.Passing, tag.Rate, string(tag.Status)})
	}
	if err := writeSheet(f, sheetFTags,
		[]string{"F-Tag", "Title", "Samples", "Passing", "Rate (%)", "Status"},
		ftagRows); err != nil {
		return nil, err
	}

	trendRows := make([][]interface{}, 0, len(report.Trend))
	for _, m := range report.Trend {
		trendRows = append(trendRows, []interface{}{m.Month, m.Samples, m.Passing, m.ComplianceRate, m.CriticalFails})
	}
	if err := writeSheet(f, sheetTrend,
		[]string{"Month", "Samples", "Passing", "Compliance Rate (%)", "Critical Fails"},
		trendRows); err != nil {
		return nil, err
	}

	recurringRows := make([][]interface{}, 0, len(report.RecurringIssues))
	for _, g := range report.RecurringIssues {
		recurringRows = append(recurringRows, []interface{}{g.Issue, g.Unit, g.Count})
	}
	if err := writeSheet(f, sheetRecurring, []string{"Issue", "Unit", "Occurrences"}, recurringRows); err != nil {
		return nil, err
	}

	recRows := make([][]interface{}, 0, len(report.Recommendations))
	for i, r := range report.Recommendations {
		recRows = append(recRows, []interface{}{i + 1, r})
	}
	if err := writeSheet(f, sheetRecommendations, []string{"#", "Recommendation"}, recRows); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	return writeRows(f, sheet, headers, rows)
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	rowNum := 1
	if len(headers) > 0 {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return fmt.Errorf("failed to write %s header: %w", sheet, err)
			}
		}
		rowNum++
	}
	for _, row := range rows {
		for i, v := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
			}
		}
		rowNum++
	}
	return nil
}
