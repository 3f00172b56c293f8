package models

// FTagDefinition is a CMS F-Tag citation with its regulatory title.
type FTagDefinition struct {
	Tag      string `json:"tag" yaml:"tag"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category,omitempty" yaml:"category"`
}

// EducationCategory groups education topics by keyword.
type EducationCategory struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Competency is one entry of the staff competency library.
type Competency struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category,omitempty" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// CompetencyMatch is a competency and how many of its keywords matched.
type CompetencyMatch struct {
	Competency Competency `json:"competency"`
	Score      int        `json:"score"`
}
