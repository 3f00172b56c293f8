package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
	"github.com/SAP-F-2025/qa-compliance-service/internal/validator"
)

const (
	DefaultVersion          = "1.0.0"
	DefaultCategory         = "General"
	DefaultPassingThreshold = 90
)

var ftagPattern = regexp.MustCompile(`^F\d+$`)

// Normalizer turns loosely-typed template documents into canonical templates.
// It is safe for concurrent use.
type Normalizer struct {
	ftagTitles map[string]string
	validator  *validator.Validator
}

// NewNormalizer creates a normalizer; ftagTitles fills empty CMS reference
// titles and may be nil.
func NewNormalizer(ftagTitles map[string]string) *Normalizer {
	return &Normalizer{
		ftagTitles: ftagTitles,
		validator:  validator.New(),
	}
}

var defaultNormalizer = NewNormalizer(nil)

// NormalizeTemplate normalizes raw without a reference-title catalog.
func NormalizeTemplate(raw models.RawTemplate, index int) (*models.Template, error) {
	return defaultNormalizer.Normalize(raw, index)
}

// Normalize fills every gap in raw with defaults and validates the result.
// Normalizing a normalized template yields the same template. The only error
// is *apperrors.SchemaValidationError.
func (n *Normalizer) Normalize(raw models.RawTemplate, index int) (*models.Template, error) {
	var coerce apperrors.ValidationErrors

	t := &models.Template{}
	t.ID = resolveTemplateID(raw, index)
	t.TemplateID = t.ID
	t.Version = normalizeVersion(raw)
	t.Title, _ = rawString(raw, "title")
	if t.Title == "" {
		t.Title, _ = rawString(raw, "name")
	}
	if t.Title == "" {
		t.Title = t.ID
	}
	t.Category, _ = rawString(raw, "category")
	if t.Category == "" {
		t.Category = DefaultCategory
	}

	t.Scoring = normalizeScoring(raw)

	legacyKeys := dedupe(rawStrings(raw, "criticalFailKeys"))
	keySet := make(map[string]bool, len(legacyKeys))
	for _, k := range legacyKeys {
		keySet[k] = true
	}

	var errs apperrors.ValidationErrors
	t.SessionQuestions, errs = normalizeQuestions(raw, "sessionQuestions", "session", keySet)
	coerce = append(coerce, errs...)
	sampleField := "sampleQuestions"
	if _, ok := raw[sampleField]; !ok {
		if _, legacy := raw["questions"]; legacy {
			sampleField = "questions"
		}
	}
	t.SampleQuestions, errs = normalizeQuestions(raw, sampleField, "sample", keySet)
	coerce = append(coerce, errs...)

	var computed float64
	for _, q := range t.SampleQuestions {
		if q.AffectsScore {
			computed += q.Points
		}
	}
	t.MaxScore = computed
	if t.Scoring.MaxScore > 0 {
		t.MaxScore = t.Scoring.MaxScore
	}

	t.CriticalFailKeys = legacyKeys
	if t.CriticalFailKeys == nil {
		t.CriticalFailKeys = []string{}
	}
	for _, q := range t.SampleQuestions {
		if q.CriticalFail && !keySet[q.Key] {
			keySet[q.Key] = true
			t.CriticalFailKeys = append(t.CriticalFailKeys, q.Key)
		}
	}

	t.GatingRules, errs = normalizeGatingRules(raw)
	coerce = append(coerce, errs...)

	t.References = n.mergeReferences(raw)
	t.FtagTags, t.NydohTags = deriveTags(t.References)

	t.Archived, _ = rawBool(raw, "archived")
	t.ArchivedAt, _ = rawString(raw, "archivedAt")
	t.CreatedAt, _ = rawString(raw, "createdAt")
	t.UpdatedAt, _ = rawString(raw, "updatedAt")

	coerce = append(coerce, n.validator.ValidateTemplate(t)...)
	if len(coerce) > 0 {
		return nil, apperrors.NewSchemaValidationError(t.ID, index, coerce)
	}
	return t, nil
}

func resolveTemplateID(raw models.RawTemplate, index int) string {
	if id, ok := rawString(raw, "templateId"); ok {
		return id
	}
	if id, ok := rawString(raw, "id"); ok {
		return id
	}
	return fmt.Sprintf("legacy_template_%d", index+1)
}

// normalizeVersion canonicalizes to MAJOR.MINOR.PATCH; unparseable versions
// fall back to DefaultVersion.
func normalizeVersion(raw models.RawTemplate) string {
	s, ok := rawString(raw, "version")
	if !ok {
		return DefaultVersion
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return DefaultVersion
	}
	return v.String()
}

func normalizeScoring(raw models.RawTemplate) models.Scoring {
	sc := rawMap(raw, "scoring")
	if sc == nil {
		sc = map[string]any{}
	}

	scoring := models.Scoring{
		Mode:             models.ScoringModeSum,
		NAPolicy:         models.NAPolicyExcludeFromDenominator,
		PassingThreshold: DefaultPassingThreshold,
	}
	if mode, ok := rawString(sc, "mode"); ok {
		scoring.Mode = models.ScoringMode(mode)
	}
	if policy, ok := rawString(sc, "naPolicy"); ok {
		scoring.NAPolicy = models.NAPolicy(policy)
	}
	if maxScore, ok := rawFloat(sc, "maxScore"); ok {
		scoring.MaxScore = maxScore
	}
	if threshold, ok := rawFloat(sc, "passingThreshold"); ok {
		scoring.PassingThreshold = threshold
	} else if threshold, ok := rawFloat(raw, "passingThreshold"); ok {
		scoring.PassingThreshold = threshold
	}
	return scoring
}

func normalizeQuestions(raw models.RawTemplate, field, scope string, criticalKeys map[string]bool) ([]models.Question, apperrors.ValidationErrors) {
	items := rawList(raw, field)
	questions := make([]models.Question, 0, len(items))
	var errs apperrors.ValidationErrors

	hasMarker := false
	var explicit []bool
	for i, item := range items {
		m, ok := asMap(item)
		if !ok {
			errs = append(errs, apperrors.ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "must be an object",
				Value:   item,
				Rule:    "type",
			})
			continue
		}
		marker, set := rawBool(m, "subjectCode")
		hasMarker = hasMarker || marker
		explicit = append(explicit, set)
		questions = append(questions, normalizeQuestion(m, scope, i, criticalKeys))
	}

	// First patientCode question that leaves subjectCode unset becomes the
	// scope's subject-code field, unless another question already claims it.
	if !hasMarker {
		for i := range questions {
			if questions[i].Type == models.QuestionTypePatientCode && !explicit[i] {
				questions[i].SubjectCode = true
				break
			}
		}
	}
	return questions, errs
}

func normalizeQuestion(m map[string]any, scope string, i int, criticalKeys map[string]bool) models.Question {
	q := models.Question{}

	q.Key, _ = rawString(m, "key")
	if q.Key == "" {
		q.Key, _ = rawString(m, "id")
	}
	if q.Key == "" {
		q.Key = fmt.Sprintf("%s_q%d", scope, i+1)
	}
	q.Label, _ = rawString(m, "label")
	if q.Label == "" {
		q.Label, _ = rawString(m, "text")
	}
	if q.Label == "" {
		q.Label = q.Key
	}

	q.Type = models.QuestionTypeText
	if typ, ok := rawString(m, "type"); ok {
		q.Type = models.QuestionType(typ)
	}
	q.Options = rawStrings(m, "options")
	if q.Type == models.QuestionTypeYN && hasNAOption(q.Options) {
		q.Type = models.QuestionTypeYNNA
	}
	q.Required, _ = rawBool(m, "required")

	if points, ok := rawFloat(m, "points"); ok {
		q.Points = points
	} else if score, ok := rawFloat(m, "score"); ok {
		q.Points = score
	}
	if affects, ok := rawBool(m, "affectsScore"); ok {
		q.AffectsScore = affects
	} else {
		q.AffectsScore = q.Points > 0
	}

	q.CriticalFailIf, _ = rawString(m, "criticalFailIf")
	if critical, ok := rawBool(m, "criticalFail"); ok {
		q.CriticalFail = critical
	} else {
		q.CriticalFail = criticalKeys[q.Key] || q.CriticalFailIf == models.AnswerNo
	}
	if q.CriticalFail && q.CriticalFailIf == "" {
		q.CriticalFailIf = models.AnswerNo
	}

	q.SubjectCode, _ = rawBool(m, "subjectCode")
	return q
}

func hasNAOption(options []string) bool {
	for _, opt := range options {
		if strings.EqualFold(opt, "N/A") {
			return true
		}
	}
	return false
}

func normalizeGatingRules(raw models.RawTemplate) ([]models.GatingRule, apperrors.ValidationErrors) {
	items := rawList(raw, "gatingRules")
	rules := make([]models.GatingRule, 0, len(items))
	var errs apperrors.ValidationErrors

	for i, item := range items {
		m, ok := asMap(item)
		if !ok {
			errs = append(errs, apperrors.ValidationError{
				Field:   fmt.Sprintf("gatingRules[%d]", i),
				Message: "must be an object",
				Value:   item,
				Rule:    "type",
			})
			continue
		}
		rule := models.GatingRule{FailIf: models.AnswerNo}
		rule.Key, _ = rawString(m, "key")
		if failIf, ok := rawString(m, "failIf"); ok {
			rule.FailIf = failIf
		}
		rule.Reason, _ = rawString(m, "reason")
		rules = append(rules, rule)
	}
	return rules, errs
}

type refKey struct {
	framework string
	id        string
}

// mergeReferences combines structured references with legacy tag lists,
// first occurrence of a (framework, id) pair wins.
func (n *Normalizer) mergeReferences(raw models.RawTemplate) []models.Reference {
	refs := make([]models.Reference, 0)
	seen := make(map[refKey]bool)

	add := func(ref models.Reference) {
		if ref.ID == "" {
			return
		}
		k := refKey{ref.Framework, ref.ID}
		if seen[k] {
			return
		}
		seen[k] = true
		if ref.Title == "" && ref.Framework == models.FrameworkCMS {
			ref.Title = n.ftagTitles[ref.ID]
		}
		refs = append(refs, ref)
	}

	for _, item := range rawList(raw, "references") {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		ref := models.Reference{}
		ref.ID, _ = rawString(m, "id")
		if ref.ID == "" {
			ref.ID, _ = rawString(m, "code")
		}
		ref.Framework, _ = rawString(m, "framework")
		if ref.Framework == "" {
			ref.Framework = inferFramework(ref.ID)
		}
		ref.Title, _ = rawString(m, "title")
		add(ref)
	}
	for _, tag := range rawStrings(raw, "ftagTags") {
		add(models.Reference{Framework: models.FrameworkCMS, ID: tag})
	}
	for _, tag := range rawStrings(raw, "nydohTags") {
		add(models.Reference{Framework: models.FrameworkNYCRR, ID: tag})
	}
	return refs
}

func inferFramework(id string) string {
	if ftagPattern.MatchString(id) {
		return models.FrameworkCMS
	}
	return "Other"
}

func deriveTags(refs []models.Reference) (ftags, nydoh []string) {
	ftags, nydoh = []string{}, []string{}
	for _, ref := range refs {
		switch ref.Framework {
		case models.FrameworkCMS:
			ftags = append(ftags, ref.ID)
		case models.FrameworkNYCRR:
			nydoh = append(nydoh, ref.ID)
		}
	}
	return ftags, nydoh
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
