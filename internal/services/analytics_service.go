package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/qa-compliance-service/internal/analytics"
	"github.com/SAP-F-2025/qa-compliance-service/internal/cache"
	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/library"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

// AnalyticsService exposes the compliance aggregators and the infection-control report
type AnalyticsService interface {
	Trend(ctx context.Context, sessions []models.AuditSession) []models.TrendPoint
	Summary(ctx context.Context, sessions []models.AuditSession) models.SessionSummary
	ClosedLoop(ctx context.Context, actions []models.QaAction, now time.Time) models.ClosedLoopStats
	Heatmap(ctx context.Context, sessions []models.AuditSession) models.Heatmap
	StaffPerformance(ctx context.Context, req StaffPerformanceRequest) []models.StaffPerformance
	RecurringIssues(ctx context.Context, actions []models.QaAction, windowDays int, now time.Time) []models.RecurringIssueGroup

	InfectionControlReport(ctx context.Context, req ICReportRequest) (*ICReportResult, error)
	ExportICReportWorkbook(report *models.ICReport) ([]byte, error)
}

type StaffPerformanceRequest struct {
	Sessions  []models.AuditSession     `json:"sessions"`
	Actions   []models.QaAction         `json:"actions"`
	Education []models.EducationSession `json:"education"`
	Range     models.DateRange          `json:"range"`
}

type ICReportRequest struct {
	Input      analytics.ICReportInput `json:"input"`
	MonthsBack int                     `json:"monthsBack"`
	Now        time.Time               `json:"now"`
}

type ICReportResult struct {
	Report *models.ICReport `json:"report"`
	Cached bool             `json:"cached"`
}

type AnalyticsConfig struct {
	ReportCacheTTL       time.Duration
	RecurrenceWindowDays int
}

type analyticsService struct {
	library   *library.Library
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	opLogger  *ServiceLogger
	config    AnalyticsConfig
}

func NewAnalyticsService(lib *library.Library, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, config AnalyticsConfig) AnalyticsService {
	if config.RecurrenceWindowDays <= 0 {
		config.RecurrenceWindowDays = 90
	}
	return &analyticsService{
		library:   lib,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		opLogger: NewServiceLogger(logger, LogConfig{
			Service:       "qa-compliance",
			Component:     "analytics",
			EnableMetrics: true,
		}),
		config: config,
	}
}

// ===== AGGREGATORS =====

func (s *analyticsService) Trend(ctx context.Context, sessions []models.AuditSession) []models.TrendPoint {
	return analytics.ComputeTrendSeries(sessions)
}

func (s *analyticsService) Summary(ctx context.Context, sessions []models.AuditSession) models.SessionSummary {
	return analytics.SummarizeSessions(sessions)
}

func (s *analyticsService) ClosedLoop(ctx context.Context, actions []models.QaAction, now time.Time) models.ClosedLoopStats {
	return analytics.ComputeClosedLoopStats(actions, now)
}

func (s *analyticsService) Heatmap(ctx context.Context, sessions []models.AuditSession) models.Heatmap {
	return analytics.ComputeHeatmap(sessions)
}

func (s *analyticsService) StaffPerformance(ctx context.Context, req StaffPerformanceRequest) []models.StaffPerformance {
	return analytics.ComputeStaffPerformance(req.Sessions, req.Actions, req.Education, req.Range)
}

func (s *analyticsService) RecurringIssues(ctx context.Context, actions []models.QaAction, windowDays int, now time.Time) []models.RecurringIssueGroup {
	if windowDays <= 0 {
		windowDays = s.config.RecurrenceWindowDays
	}
	return analytics.GroupRecurringIssues(actions, windowDays, now)
}

// ===== INFECTION CONTROL REPORT =====

func (s *analyticsService) InfectionControlReport(ctx context.Context, req ICReportRequest) (*ICReportResult, error) {
	start := time.Now()
	if req.MonthsBack < 0 {
		return nil, NewValidationError("monthsBack", "must be zero or greater", req.MonthsBack)
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	req.Now = req.Now.UTC()
	s.withLibraryDefaults(&req.Input)

	metrics := PerformanceMetrics{InputRecords: len(req.Input.Sessions) + len(req.Input.Actions) + len(req.Input.Education)}
	key, keyErr := reportCacheKey(req)
	if keyErr != nil {
		s.logger.WarnContext(ctx, "Report cache key unavailable", "error", keyErr)
	}

	if s.cacheEnabled() && keyErr == nil {
		var cached models.ICReport
		err := s.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			metrics.CacheHits++
			metrics.TotalDuration = time.Since(start)
			s.opLogger.LogPerformanceMetrics(ctx, "infection_control_report", metrics)
			s.reportGenerated(ctx, &cached, true, req.Now)
			return &ICReportResult{Report: &cached, Cached: true}, nil
		case errors.Is(err, cache.ErrCacheMiss):
			metrics.CacheMisses++
		default:
			metrics.CacheMisses++
			s.logger.WarnContext(ctx, "Report cache read failed", "key", key, "error", err)
		}
	}

	computeStart := time.Now()
	report := analytics.GenerateICReport(req.Input, req.MonthsBack, req.Now)
	metrics.ComputeDuration = time.Since(computeStart)

	if s.cacheEnabled() && keyErr == nil {
		if err := s.cache.Set(ctx, key, report, s.config.ReportCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "Report cache write failed", "key", key, "error", err)
		}
	}

	metrics.TotalDuration = time.Since(start)
	s.opLogger.LogPerformanceMetrics(ctx, "infection_control_report", metrics)
	s.opLogger.LogOperation(ctx, "infection_control_report", report.Period.Label, "ic_report", metrics.TotalDuration, nil)
	s.reportGenerated(ctx, &report, false, req.Now)

	return &ICReportResult{Report: &report}, nil
}

func (s *analyticsService) cacheEnabled() bool {
	return s.cache != nil && s.config.ReportCacheTTL > 0
}

// withLibraryDefaults fills keywords and the F-Tag catalog from the reference
// library when the caller did not supply them.
func (s *analyticsService) withLibraryDefaults(in *analytics.ICReportInput) {
	if s.library == nil {
		return
	}
	if len(in.Keywords) == 0 {
		in.Keywords = s.library.ICKeywords
	}
	if len(in.FTagCatalog) == 0 {
		in.FTagCatalog = s.library.FTagTitles()
	}
}

// reportCacheKey hashes the request; now contributes its date only, so a
// report is reused for the rest of the day.
func reportCacheKey(req ICReportRequest) (string, error) {
	payload, err := json.Marshal(struct {
		Input      analytics.ICReportInput `json:"input"`
		MonthsBack int                     `json:"monthsBack"`
	}{req.Input, req.MonthsBack})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("report:ic:%s:%s", hex.EncodeToString(sum[:]), models.FormatDate(req.Now)), nil
}

func (s *analyticsService) reportGenerated(ctx context.Context, report *models.ICReport, cached bool, now time.Time) {
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.EventReportGenerated, events.ReportGeneratedEvent{
		Report:         "infection_control",
		PeriodStart:    report.Period.Start,
		PeriodEnd:      report.Period.End,
		ComplianceRate: report.Summary.ComplianceRate,
		CriticalFails:  report.Summary.CriticalFails,
		Cached:         cached,
	}, now))
}
