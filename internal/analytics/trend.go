package analytics

import (
	"sort"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/utils"
)

// ComputeTrendSeries buckets completed sessions by audit date, ascending.
// Sessions without any date are skipped.
func ComputeTrendSeries(sessions []models.AuditSession) []models.TrendPoint {
	buckets := make(map[string]*tally)
	for _, s := range completedSessions(sessions) {
		date := s.SessionDate()
		if date == "" {
			continue
		}
		b, ok := buckets[date]
		if !ok {
			b = &tally{}
			buckets[date] = b
		}
		for _, sample := range s.Samples {
			b.addSample(sample)
		}
	}

	series := make([]models.TrendPoint, 0, len(buckets))
	for date, b := range buckets {
		series = append(series, models.TrendPoint{
			Date:       date,
			Samples:    b.total,
			Passing:    b.passing,
			Critical:   b.critical,
			Compliance: utils.RoundPercent(b.passing, b.total),
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
