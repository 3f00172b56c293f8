package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/qa-compliance-service/internal/services"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

type HandlerManager struct {
	templateHandler  *TemplateHandler
	scoringHandler   *ScoringHandler
	analyticsHandler *AnalyticsHandler
	libraryHandler   *LibraryHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		templateHandler:  NewTemplateHandler(serviceManager.Template(), serviceManager.Import(), v, logger),
		scoringHandler:   NewScoringHandler(serviceManager.Scoring(), v, logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), v, logger),
		libraryHandler:   NewLibraryHandler(serviceManager.Library(), v, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		templates := v1.Group("/templates")
		{
			templates.POST("/normalize", hm.templateHandler.NormalizeTemplates)
			templates.POST("/revise", hm.templateHandler.ReviseTemplate)
			templates.POST("/archive", hm.templateHandler.ArchiveTemplate)
			templates.POST("/export", hm.templateHandler.ExportTemplates)
			templates.POST("/import", hm.templateHandler.ImportTemplates)
		}

		scoring := v1.Group("/scoring")
		{
			scoring.POST("/samples", hm.scoringHandler.ScoreSample)
			scoring.POST("/sessions", hm.scoringHandler.ScoreSession)
			scoring.POST("/sessions/complete", hm.scoringHandler.CompleteSession)
		}

		analytics := v1.Group("/analytics")
		{
			analytics.POST("/trend", hm.analyticsHandler.Trend)
			analytics.POST("/summary", hm.analyticsHandler.Summary)
			analytics.POST("/closed-loop", hm.analyticsHandler.ClosedLoop)
			analytics.POST("/heatmap", hm.analyticsHandler.Heatmap)
			analytics.POST("/staff", hm.analyticsHandler.StaffPerformance)
			analytics.POST("/recurring", hm.analyticsHandler.RecurringIssues)
		}

		reports := v1.Group("/reports")
		{
			reports.POST("/infection-control", hm.analyticsHandler.InfectionControlReport)
		}

		library := v1.Group("/library")
		{
			library.GET("/ftags", hm.libraryHandler.FTags)
			library.GET("/templates", hm.libraryHandler.SeedTemplates)
			library.POST("/classify/education", hm.libraryHandler.ClassifyEducation)
			library.POST("/classify/competencies", hm.libraryHandler.MatchCompetencies)
		}
	}
}

// NewRouter builds the gin engine with logging middleware and all routes
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	hm.SetupRoutes(router)
	return router
}
