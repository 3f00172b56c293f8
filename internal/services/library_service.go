package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/qa-compliance-service/internal/classifier"
	"github.com/SAP-F-2025/qa-compliance-service/internal/library"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/scoring"
)

// DefaultCompetencyLimit caps competency matches when the caller gives no limit.
const DefaultCompetencyLimit = 5

// LibraryService answers reference-data lookups and keyword classification
type LibraryService interface {
	FTags(ctx context.Context) []models.FTagDefinition
	ICKeywords(ctx context.Context) []string
	SeedTemplates(ctx context.Context) (*NormalizeBatchResult, error)
	ClassifyEducation(ctx context.Context, topic string) (string, error)
	MatchCompetencies(ctx context.Context, text string, limit int) ([]models.CompetencyMatch, error)
}

type libraryService struct {
	library   *library.Library
	templates TemplateService
	logger    *slog.Logger
}

func NewLibraryService(lib *library.Library, templates TemplateService, logger *slog.Logger) LibraryService {
	return &libraryService{
		library:   lib,
		templates: templates,
		logger:    logger,
	}
}

func (s *libraryService) FTags(ctx context.Context) []models.FTagDefinition {
	return append([]models.FTagDefinition{}, s.library.FTags...)
}

func (s *libraryService) ICKeywords(ctx context.Context) []string {
	return append([]string{}, s.library.ICKeywords...)
}

func (s *libraryService) SeedTemplates(ctx context.Context) (*NormalizeBatchResult, error) {
	return s.templates.NormalizeBatch(ctx, s.library.SeedTemplates())
}

func (s *libraryService) ClassifyEducation(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("classify education: %w", NewValidationError("topic", "topic is required", topic))
	}
	return classifier.DetectEducationCategory(topic, s.library.EducationCategories), nil
}

func (s *libraryService) MatchCompetencies(ctx context.Context, text string, limit int) ([]models.CompetencyMatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("match competencies: %w", NewValidationError("text", "text is required", text))
	}
	if limit <= 0 {
		limit = DefaultCompetencyLimit
	}
	return classifier.MatchCompetencies(text, s.library.Competencies, limit), nil
}

// NewNormalizerFor builds a normalizer that fills reference titles from lib.
func NewNormalizerFor(lib *library.Library) *scoring.Normalizer {
	if lib == nil {
		return scoring.NewNormalizer(nil)
	}
	return scoring.NewNormalizer(lib.FTagTitles())
}
