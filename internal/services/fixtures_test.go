package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/qa-compliance-service/internal/events"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/scoring"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

var fixedNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func handHygieneRaw() models.RawTemplate {
	return models.RawTemplate{
		"templateId": "hand_hygiene",
		"title":      "Hand Hygiene",
		"category":   "Infection Control",
		"version":    "1.0.0",
		"scoring":    map[string]any{"passingThreshold": 90},
		"sampleQuestions": []any{
			map[string]any{"key": "before", "label": "Hand hygiene before care", "type": "yn", "points": 10},
			map[string]any{"key": "after", "label": "Hand hygiene after care", "type": "yn", "points": 10},
			map[string]any{"key": "gloves", "label": "Gloves removed", "type": "yn", "points": 10, "criticalFail": true},
		},
	}
}

func handHygiene() *models.Template {
	t, err := scoring.NormalizeTemplate(handHygieneRaw(), 0)
	if err != nil {
		panic(err)
	}
	return t
}

func answers(before, after, gloves string) map[string]string {
	return map[string]string{"before": before, "after": after, "gloves": gloves}
}

// MockEventPublisher records calls and returns scripted errors
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *events.ComplianceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

// MockCacheService is a testify mock of cache.CacheService
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

func newTestTemplateService(publisher events.EventPublisher) *templateService {
	svc := NewTemplateService(scoring.NewNormalizer(nil), publisher, utils.NewDiscardLogger()).(*templateService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}
