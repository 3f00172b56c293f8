package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/qa-compliance-service/internal/cache"
	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/library"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Template() TemplateService
	Scoring() ScoringService
	Analytics() AnalyticsService
	Import() ImportService
	Library() LibraryService
}

// Dependencies are the shared collaborators of the service layer. Cache and
// Publisher may be nil; a nil Library means the embedded default.
type Dependencies struct {
	Library   *library.Library
	Validator *validator.Validator
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Logger    *slog.Logger

	DefaultDueDays       int
	RecurrenceWindowDays int
	ReportCacheTTL       time.Duration
}

type serviceManager struct {
	template  TemplateService
	scoring   ScoringService
	analytics AnalyticsService
	importSvc ImportService
	library   LibraryService
}

func NewServiceManager(deps Dependencies) (ServiceManager, error) {
	if deps.Library == nil {
		lib, err := library.Default()
		if err != nil {
			return nil, err
		}
		deps.Library = lib
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}

	normalizer := NewNormalizerFor(deps.Library)
	templateService := NewTemplateService(normalizer, deps.Publisher, deps.Logger)

	return &serviceManager{
		template: templateService,
		scoring: NewScoringService(normalizer, deps.Validator, deps.Publisher, deps.Logger, ScoringConfig{
			DefaultDueDays: deps.DefaultDueDays,
		}),
		analytics: NewAnalyticsService(deps.Library, deps.Cache, deps.Publisher, deps.Logger, AnalyticsConfig{
			ReportCacheTTL:       deps.ReportCacheTTL,
			RecurrenceWindowDays: deps.RecurrenceWindowDays,
		}),
		importSvc: NewImportService(templateService, deps.Logger),
		library:   NewLibraryService(deps.Library, templateService, deps.Logger),
	}, nil
}

func (m *serviceManager) Template() TemplateService   { return m.template }
func (m *serviceManager) Scoring() ScoringService     { return m.scoring }
func (m *serviceManager) Analytics() AnalyticsService { return m.analytics }
func (m *serviceManager) Import() ImportService       { return m.importSvc }
func (m *serviceManager) Library() LibraryService     { return m.library }
