package models

type QuestionType string

const (
	QuestionTypeText        QuestionType = "text"
	QuestionTypeSelect      QuestionType = "select"
	QuestionTypeYN          QuestionType = "yn"
	QuestionTypeYNNA        QuestionType = "ynna"
	QuestionTypePatientCode QuestionType = "patientCode"
	QuestionTypeNumber      QuestionType = "number"
	QuestionTypeDate        QuestionType = "date"
	QuestionTypeDateTime    QuestionType = "datetime"
)

// IsYesNo reports whether answers of this type are yes/no(/na) values.
func (t QuestionType) IsYesNo() bool {
	return t == QuestionTypeYN || t == QuestionTypeYNNA
}

type ScoringMode string

const (
	ScoringModeSum        ScoringMode = "sum"
	ScoringModeWeighted   ScoringMode = "weighted"
	ScoringModeSingleGate ScoringMode = "singleGate"
)

type NAPolicy string

const (
	NAPolicyExcludeFromDenominator NAPolicy = "excludeFromDenominator"
	NAPolicyFullCredit             NAPolicy = "fullCredit"
	NAPolicyZero                   NAPolicy = "zero"
)

// Reference frameworks synthesized from legacy tag lists.
const (
	FrameworkCMS   = "CMS"
	FrameworkNYCRR = "NYCRR"
)

// Answer literals shared by the scorer and the normalizer.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
	AnswerNA  = "na"
)

// Template is a versioned, reusable audit checklist definition.
// All fields are populated after normalization.
type Template struct {
	ID         string `json:"id" validate:"required,max=200"`
	TemplateID string `json:"templateId" validate:"required,eqfield=ID"`
	Version    string `json:"version" validate:"required,semver"`
	Title      string `json:"title" validate:"required,max=300"`
	Category   string `json:"category" validate:"required"`

	Scoring  Scoring `json:"scoring"`
	MaxScore float64 `json:"maxScore" validate:"min=0"`

	CriticalFailKeys []string     `json:"criticalFailKeys"`
	GatingRules      []GatingRule `json:"gatingRules" validate:"dive"`

	SessionQuestions []Question `json:"sessionQuestions" validate:"dive"`
	SampleQuestions  []Question `json:"sampleQuestions" validate:"dive"`

	References []Reference `json:"references" validate:"dive"`
	FtagTags   []string    `json:"ftagTags"`
	NydohTags  []string    `json:"nydohTags"`

	Archived   bool   `json:"archived"`
	ArchivedAt string `json:"archivedAt,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Scoring holds the scoring policy of a template.
type Scoring struct {
	Mode     ScoringMode `json:"mode" validate:"required,scoring_mode"`
	MaxScore float64     `json:"maxScore" validate:"min=0"` // explicit override, 0 when unset
	NAPolicy NAPolicy    `json:"naPolicy" validate:"required,na_policy"`

	PassingThreshold float64 `json:"passingThreshold" validate:"min=0,max=100"`
}

// Question is one checklist item.
type Question struct {
	Key      string       `json:"key" validate:"required"`
	Label    string       `json:"label"`
	Type     QuestionType `json:"type" validate:"required,question_type"`
	Options  []string     `json:"options"`
	Required bool         `json:"required"`

	Points         float64 `json:"points" validate:"min=0"`
	AffectsScore   bool    `json:"affectsScore"`
	CriticalFail   bool    `json:"criticalFail"`
	CriticalFailIf string  `json:"criticalFailIf,omitempty"`
	SubjectCode    bool    `json:"subjectCode"`
}

// Scoreable reports whether the question contributes to the denominator.
func (q Question) Scoreable() bool {
	return q.AffectsScore && q.Points > 0
}

// GatingRule forces a critical fail when the answer to Key equals FailIf.
type GatingRule struct {
	Key    string `json:"key" validate:"required"`
	FailIf string `json:"failIf" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

// Reference is a structured regulatory citation.
type Reference struct {
	Framework string `json:"framework" validate:"required"`
	ID        string `json:"id" validate:"required"`
	Title     string `json:"title,omitempty"`
}

// FindQuestion looks a key up in sample questions first, then session questions.
func (t *Template) FindQuestion(key string) (Question, bool) {
	for _, q := range t.SampleQuestions {
		if q.Key == key {
			return q, true
		}
	}
	for _, q := range t.SessionQuestions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

// HasReferencePrefix reports whether the template cites a tag of the given
// framework whose id starts with prefix.
func (t *Template) HasReferencePrefix(framework, prefix string) bool {
	for _, ref := range t.References {
		if ref.Framework == framework && len(ref.ID) >= len(prefix) && ref.ID[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// ChangeRecord describes one template revision; history storage is the caller's.
type ChangeRecord struct {
	TemplateID    string   `json:"templateId"`
	FromVersion   string   `json:"fromVersion"`
	ToVersion     string   `json:"toVersion"`
	ChangedAt     string   `json:"changedAt"`
	Note          string   `json:"note,omitempty"`
	ChangedFields []string `json:"changedFields"`
}
