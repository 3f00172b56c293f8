// Package classifier holds the keyword heuristics used to tag free text:
// education categories, competency suggestions and infection-control relevance.
//
// Matching is a case-insensitive substring test, so "rehab" also matches
// "prerehabilitation". Scores are the number of distinct keywords found.
package classifier

import (
	"sort"
	"strings"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

// GeneralCategory is returned when no education category matches.
const GeneralCategory = "General"

// MatchesAnyKeyword reports whether text contains any keyword.
func MatchesAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return false
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// keywordScore counts the keywords contained in lowered text.
func keywordScore(lower string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

// DetectEducationCategory returns the category with the most keyword hits.
// The first category wins a tie.
func DetectEducationCategory(topic string, categories []models.EducationCategory) string {
	lower := strings.ToLower(topic)
	best, bestScore := GeneralCategory, 0
	for _, c := range categories {
		if score := keywordScore(lower, c.Keywords); score > bestScore {
			best, bestScore = c.Name, score
		}
	}
	return best
}

// MatchCompetencies ranks library entries by keyword hits against text.
// Entries without hits are dropped; ties keep library order. limit <= 0
// returns every match.
func MatchCompetencies(text string, library []models.Competency, limit int) []models.CompetencyMatch {
	lower := strings.ToLower(text)
	matches := make([]models.CompetencyMatch, 0)
	for _, c := range library {
		if score := keywordScore(lower, c.Keywords); score > 0 {
			matches = append(matches, models.CompetencyMatch{Competency: c, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
