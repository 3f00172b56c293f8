package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SAP-F-2025/qa-compliance-service/internal/classifier"
	"github.com/SAP-F-2025/qa-compliance-service/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, lib.ICKeywords)
	assert.NotEmpty(t, lib.EducationCategories)
	assert.NotEmpty(t, lib.Competencies)
	assert.Equal(t, "Infection Prevention & Control", lib.FTagTitles()["F880"])

	normalizer := scoring.NewNormalizer(lib.FTagTitles())
	for i, raw := range lib.SeedTemplates() {
		tmpl, err := normalizer.Normalize(raw, i)
		require.NoError(t, err, "seed template %d", i)
		assert.NotEmpty(t, tmpl.SampleQuestions)
	}
}

func TestDefault_SeedTemplatesAreUsable(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	raws := lib.SeedTemplates()
	require.NotEmpty(t, raws)
	tmpl, err := scoring.NewNormalizer(lib.FTagTitles()).Normalize(raws[0], 0)
	require.NoError(t, err)

	assert.Equal(t, "hand_hygiene", tmpl.ID)
	assert.Equal(t, "Infection Prevention & Control", tmpl.References[0].Title)
	assert.Contains(t, tmpl.CriticalFailKeys, "before_contact")
	assert.Equal(t, 35.0, tmpl.MaxScore)
	assert.True(t, classifier.MatchesAnyKeyword(tmpl.Title, lib.ICKeywords))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ic_keywords: [scabies]
ftags:
  - { tag: F880, title: IPC }
`), 0o600))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"scabies"}, lib.ICKeywords)
	assert.Empty(t, lib.SeedTemplates())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	fromDefault, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, fromDefault.Templates)
}

func TestParse_RejectsBadDocuments(t *testing.T) {
	_, err := Parse([]byte("ftags: [{title: untagged}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("ic_keywords: {not: a list}"))
	assert.Error(t, err)
}
