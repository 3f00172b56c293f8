package classifier

import (
	"testing"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categories = []models.EducationCategory{
	{Name: "Infection Control", Keywords: []string{"hand hygiene", "ppe", "isolation", "infection"}},
	{Name: "Falls", Keywords: []string{"fall", "bed alarm"}},
	{Name: "Medication", Keywords: []string{"medication", "insulin"}},
}

func TestDetectEducationCategory(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Hand Hygiene and PPE refresher", "Infection Control"},
		{"Fall prevention: bed alarm checks", "Falls"},
		{"Insulin administration", "Medication"},
		{"Welcome orientation", GeneralCategory},
		{"", GeneralCategory},
		// one hit each, first category wins
		{"Medication fall risk", "Falls"},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEducationCategory(tt.topic, categories))
		})
	}
}

func TestMatchCompetencies(t *testing.T) {
	library := []models.Competency{
		{ID: "c1", Name: "Isolation precautions", Keywords: []string{"isolation", "ppe"}},
		{ID: "c2", Name: "Hand hygiene", Keywords: []string{"hand hygiene"}},
		{ID: "c3", Name: "Wound care", Keywords: []string{"wound", "dressing"}},
		{ID: "c4", Name: "Glove use", Keywords: []string{"ppe", "glove"}},
	}

	matches := MatchCompetencies("Staff missed hand hygiene before donning PPE for isolation room", library, 0)
	require.Len(t, matches, 3)
	assert.Equal(t, "c1", matches[0].Competency.ID)
	assert.Equal(t, 2, matches[0].Score)
	assert.Equal(t, "c2", matches[1].Competency.ID)
	assert.Equal(t, "c4", matches[2].Competency.ID)

	limited := MatchCompetencies("Staff missed hand hygiene before donning PPE for isolation room", library, 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "c1", limited[0].Competency.ID)

	assert.Empty(t, MatchCompetencies("nothing relevant", library, 3))
}

func TestMatchesAnyKeyword(t *testing.T) {
	keywords := []string{"Infection", "hand hygiene", " ", "wound"}

	assert.True(t, MatchesAnyKeyword("Hand Hygiene Observation", keywords))
	assert.True(t, MatchesAnyKeyword("Wound Care Audit", keywords))
	assert.True(t, MatchesAnyKeyword("INFECTION control rounds", keywords))
	assert.False(t, MatchesAnyKeyword("Dining observation", keywords))
	assert.False(t, MatchesAnyKeyword("", keywords))
	assert.False(t, MatchesAnyKeyword("anything", nil))
}
