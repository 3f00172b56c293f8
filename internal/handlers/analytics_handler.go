package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/qa-compliance-service/internal/analytics"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/services"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

type SessionsRequest struct {
	Sessions []models.AuditSession `json:"sessions"`
}

type ActionsRequest struct {
	Actions []models.QaAction `json:"actions" validate:"dive"`
	Now     *time.Time        `json:"now"`
}

type StaffPerformanceRequest struct {
	Sessions  []models.AuditSession     `json:"sessions"`
	Actions   []models.QaAction         `json:"actions"`
	Education []models.EducationSession `json:"education"`
	Range     models.DateRange          `json:"range"`
}

type RecurringIssuesRequest struct {
	Actions    []models.QaAction `json:"actions"`
	WindowDays int               `json:"windowDays" validate:"min=0,max=3650"`
	Now        *time.Time        `json:"now"`
}

type InfectionControlReportRequest struct {
	analytics.ICReportInput
	MonthsBack int        `json:"monthsBack" validate:"min=0,max=120"`
	Now        *time.Time `json:"now"`
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, v *validator.Validator, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger, v),
		analyticsService: analyticsService,
	}
}

// Trend returns the per-day compliance series
// @Router /analytics/trend [post]
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	var req SessionsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": h.analyticsService.Trend(c.Request.Context(), req.Sessions)})
}

// Summary returns overall and per-tool/per-unit compliance
// @Router /analytics/summary [post]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	var req SessionsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.analyticsService.Summary(c.Request.Context(), req.Sessions))
}

// ClosedLoop returns QA action closure statistics
// @Router /analytics/closed-loop [post]
func (h *AnalyticsHandler) ClosedLoop(c *gin.Context) {
	var req ActionsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.analyticsService.ClosedLoop(c.Request.Context(), req.Actions, nowOr(req.Now)))
}

// Heatmap returns the tool by unit compliance grid
// @Router /analytics/heatmap [post]
func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	var req SessionsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.analyticsService.Heatmap(c.Request.Context(), req.Sessions))
}

// StaffPerformance returns per-staff audit results
// @Router /analytics/staff [post]
func (h *AnalyticsHandler) StaffPerformance(c *gin.Context) {
	var req StaffPerformanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	staff := h.analyticsService.StaffPerformance(c.Request.Context(), services.StaffPerformanceRequest{
		Sessions:  req.Sessions,
		Actions:   req.Actions,
		Education: req.Education,
		Range:     req.Range,
	})
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// RecurringIssues returns issue groups that recur within the window
// @Router /analytics/recurring [post]
func (h *AnalyticsHandler) RecurringIssues(c *gin.Context) {
	var req RecurringIssuesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	groups := h.analyticsService.RecurringIssues(c.Request.Context(), req.Actions, req.WindowDays, nowOr(req.Now))
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// InfectionControlReport builds the monthly infection-control report, as JSON
// or as a workbook with ?format=xlsx
// @Summary Infection control report
// @Tags reports
// @Accept json
// @Produce json
// @Param format query string false "json or xlsx"
// @Success 200 {object} services.ICReportResult
// @Router /reports/infection-control [post]
func (h *AnalyticsHandler) InfectionControlReport(c *gin.Context) {
	var req InfectionControlReportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	format := requestedFormat(c)
	if format != formatJSON && format != formatXLSX {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported report format",
			Details: format,
		})
		return
	}

	h.LogRequest(c, "Generating infection control report",
		"months_back", req.MonthsBack,
		"sessions", len(req.Sessions),
		"format", format)

	result, err := h.analyticsService.InfectionControlReport(c.Request.Context(), services.ICReportRequest{
		Input:      req.ICReportInput,
		MonthsBack: req.MonthsBack,
		Now:        nowOr(req.Now),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if format == formatXLSX {
		data, err := h.analyticsService.ExportICReportWorkbook(result.Report)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		attachment(c, "infection-control-"+result.Report.Period.Start+".xlsx", xlsxContentType, data)
		return
	}

	c.JSON(http.StatusOK, result)
}
