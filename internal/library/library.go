// Package library loads the static reference data the engine is configured
// with: seed templates, F-Tag definitions, infection-control keywords,
// education categories and the competency library.
package library

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultLibrary []byte

// Library is immutable once loaded.
type Library struct {
	Templates           []map[string]any           `yaml:"templates" json:"templates"`
	FTags               []models.FTagDefinition    `yaml:"ftags" json:"ftags"`
	ICKeywords          []string                   `yaml:"ic_keywords" json:"icKeywords"`
	EducationCategories []models.EducationCategory `yaml:"education_categories" json:"educationCategories"`
	Competencies        []models.Competency        `yaml:"competencies" json:"competencies"`
}

// Default returns the library embedded in the binary.
func Default() (*Library, error) {
	lib, err := Parse(defaultLibrary)
	if err != nil {
		return nil, fmt.Errorf("parse embedded library: %w", err)
	}
	return lib, nil
}

// Load reads a library file, or the embedded default when path is empty.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load library %q: %w", path, err)
	}
	lib, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse library %q: %w", path, err)
	}
	return lib, nil
}

// Parse decodes a YAML library document.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, err
	}
	for i, f := range lib.FTags {
		if f.Tag == "" {
			return nil, fmt.Errorf("ftags[%d]: tag is required", i)
		}
	}
	return &lib, nil
}

// FTagTitles maps each F-Tag to its title.
func (l *Library) FTagTitles() map[string]string {
	titles := make(map[string]string, len(l.FTags))
	for _, f := range l.FTags {
		titles[f.Tag] = f.Title
	}
	return titles
}

// SeedTemplates returns the raw seed template documents.
func (l *Library) SeedTemplates() []models.RawTemplate {
	out := make([]models.RawTemplate, len(l.Templates))
	for i, t := range l.Templates {
		out[i] = models.RawTemplate(t)
	}
	return out
}
