package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/qa-compliance-service/internal/analytics"
	"github.com/SAP-F-2025/qa-compliance-service/internal/cache"
	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/library"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/scoring"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

func scoredSession(id, date string, samples ...map[string]string) models.AuditSession {
	t := handHygiene()
	session := models.AuditSession{
		ID:            id,
		TemplateID:    t.ID,
		TemplateTitle: t.Title,
		Header:        models.SessionHeader{Status: models.SessionStatusComplete, AuditDate: date, Unit: "2 West"},
	}
	for i, a := range samples {
		result := scoringResult(t, a)
		session.Samples = append(session.Samples, models.Sample{ID: string(rune('a' + i)), Answers: a, Result: &result})
	}
	return session
}

func scoringResult(t *models.Template, a map[string]string) models.SampleResult {
	return scoring.ComputeSampleResult(t, a)
}

func icRequest() ICReportRequest {
	return ICReportRequest{
		Input: analytics.ICReportInput{
			Sessions: []models.AuditSession{
				scoredSession("s1", "2024-03-05", answers("yes", "yes", "yes"), answers("yes", "yes", "no")),
				scoredSession("s2", "2024-03-12", answers("yes", "yes", "yes")),
			},
			Templates: []models.Template{*handHygiene()},
		},
		Now: fixedNow,
	}
}

func newTestAnalyticsService(t *testing.T, c cache.CacheService, publisher events.EventPublisher) AnalyticsService {
	lib, err := library.Default()
	require.NoError(t, err)
	return NewAnalyticsService(lib, c, publisher, utils.NewDiscardLogger(), AnalyticsConfig{ReportCacheTTL: time.Hour})
}

func TestAnalyticsService_InfectionControlReport(t *testing.T) {
	ctx := context.Background()
	memory := cache.NewMemoryCache()
	publisher := events.NewMockEventPublisher(utils.NewDiscardLogger())
	svc := newTestAnalyticsService(t, memory, publisher)

	first, err := svc.InfectionControlReport(ctx, icRequest())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "2024-03-01", first.Report.Period.Start)
	assert.Equal(t, 3, first.Report.Summary.TotalSamples)
	assert.Equal(t, 2, first.Report.Summary.PassingSamples)
	assert.Equal(t, 67, first.Report.Summary.ComplianceRate)
	assert.Equal(t, 1, first.Report.Summary.CriticalFails)
	assert.Equal(t, 1, memory.Len())

	second, err := svc.InfectionControlReport(ctx, icRequest())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Report.Summary, second.Report.Summary)
	assert.Equal(t, first.Report.Recommendations, second.Report.Recommendations)

	nextDay := icRequest()
	nextDay.Now = fixedNow.Add(24 * time.Hour)
	third, err := svc.InfectionControlReport(ctx, nextDay)
	require.NoError(t, err)
	assert.False(t, third.Cached)

	generated := publisher.EventsOfType(events.EventReportGenerated)
	require.Len(t, generated, 3)
	assert.True(t, generated[1].Data.(events.ReportGeneratedEvent).Cached)
}

func TestAnalyticsService_CacheFailuresFallThrough(t *testing.T) {
	c := new(MockCacheService)
	c.On("Get", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(errors.New("connection refused"))
	c.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.Anything, time.Hour).Return(errors.New("connection refused"))
	svc := newTestAnalyticsService(t, c, nil)

	result, err := svc.InfectionControlReport(context.Background(), icRequest())
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, 3, result.Report.Summary.TotalSamples)
	c.AssertExpectations(t)
}

func TestAnalyticsService_ReportWithoutCache(t *testing.T) {
	svc := newTestAnalyticsService(t, nil, nil)

	result, err := svc.InfectionControlReport(context.Background(), icRequest())
	require.NoError(t, err)
	assert.NotNil(t, result.Report)

	req := icRequest()
	req.MonthsBack = -1
	_, err = svc.InfectionControlReport(context.Background(), req)
	assert.True(t, IsValidation(err))
}

func TestAnalyticsService_ExportICReportWorkbook(t *testing.T) {
	svc := newTestAnalyticsService(t, nil, nil)
	result, err := svc.InfectionControlReport(context.Background(), icRequest())
	require.NoError(t, err)

	data, err := svc.ExportICReportWorkbook(result.Report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetTemplates, sheetFTags, sheetTrend, sheetRecurring, sheetRecommendations}, f.GetSheetList())

	label, err := f.GetCellValue(sheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, result.Report.Period.Label, label)

	rate, err := f.GetCellValue(sheetSummary, "B7")
	require.NoError(t, err)
	assert.Equal(t, "67", rate)

	title, err := f.GetCellValue(sheetTemplates, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Hand Hygiene", title)

	rows, err := f.GetRows(sheetRecommendations)
	require.NoError(t, err)
	assert.Len(t, rows, len(result.Report.Recommendations)+1)
}

func TestAnalyticsService_Aggregators(t *testing.T) {
	svc := newTestAnalyticsService(t, nil, nil)
	ctx := context.Background()
	sessions := icRequest().Input.Sessions

	summary := svc.Summary(ctx, sessions)
	assert.Equal(t, 2, summary.Sessions)
	assert.Equal(t, 3, summary.Samples)

	trend := svc.Trend(ctx, sessions)
	assert.Len(t, trend, 2)

	heatmap := svc.Heatmap(ctx, sessions)
	assert.Equal(t, []string{"Hand Hygiene"}, heatmap.Tools)

	actions := []models.QaAction{
		{ID: "1", Issue: "Gloves", Unit: "2 West", CreatedAt: "2024-03-01T08:00:00Z"},
		{ID: "2", Issue: "Gloves", Unit: "2 West", CreatedAt: "2024-03-05T08:00:00Z"},
		{ID: "3", Issue: "Gloves", Unit: "2 West", CreatedAt: "2024-03-09T08:00:00Z"},
	}
	groups := svc.RecurringIssues(ctx, actions, 0, fixedNow)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].Count)

	stats := svc.ClosedLoop(ctx, actions, fixedNow)
	assert.Equal(t, 3, stats.Total)
}
