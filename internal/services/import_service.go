package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

// Spreadsheet columns, one question per row. Template-level columns are read
// from the first row of each template that fills them.
const (
	colTemplateID       = "template_id"
	colTemplateTitle    = "template_title"
	colCategory         = "category"
	colVersion          = "version"
	colScoringMode      = "scoring_mode"
	colNAPolicy         = "na_policy"
	colPassingThreshold = "passing_threshold"
	colMaxScore         = "max_score"
	colFtagTags         = "ftag_tags"
	colNydohTags        = "nydoh_tags"
	colScope            = "scope"
	colKey              = "key"
	colLabel            = "label"
	colType             = "type"
	colOptions          = "options"
	colPoints           = "points"
	colRequired         = "required"
	colAffectsScore     = "affects_score"
	colCriticalFail     = "critical_fail"
	colCriticalFailIf   = "critical_fail_if"
	colSubjectCode      = "subject_code"
	colGateFailIf       = "gate_fail_if"
	colGateReason       = "gate_reason"
)

var templateColumns = []string{
	colTemplateID, colTemplateTitle, colCategory, colVersion,
	colScoringMode, colNAPolicy, colPassingThreshold, colMaxScore,
	colFtagTags, colNydohTags,
	colScope, colKey, colLabel, colType, colOptions, colPoints,
	colRequired, colAffectsScore, colCriticalFail, colCriticalFailIf, colSubjectCode,
	colGateFailIf, colGateReason,
}

var requiredImportColumns = []string{colTemplateID, colKey}

// ImportService loads templates from spreadsheets and writes them back out
type ImportService interface {
	ImportTemplatesFromFile(ctx context.Context, reader io.Reader, filename string) (*models.TemplateImportResult, error)
	ImportTemplatesFromCSV(ctx context.Context, reader io.Reader, filename string) (*models.TemplateImportResult, error)
	ImportTemplatesFromExcel(ctx context.Context, reader io.Reader, filename string) (*models.TemplateImportResult, error)

	ExportTemplatesToCSV(templates []*models.Template) ([]byte, error)
	ExportTemplatesToExcel(templates []*models.Template) ([]byte, error)
}

type importService struct {
	templates TemplateService
	logger    *slog.Logger
}

func NewImportService(templates TemplateService, logger *slog.Logger) ImportService {
	return &importService{
		templates: templates,
		logger:    logger,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importService) ImportTemplatesFromFile(ctx context.Context, reader io.Reader, filename string) (*models.TemplateImportResult, error) {
	s.logger.InfoContext(ctx, "Starting template import", "filename", filename)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportTemplatesFromCSV(ctx, reader, filename)
	case ".xlsx":
		return s.ImportTemplatesFromExcel(ctx, reader, filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func (s *importService) ImportTemplatesFromCSV(ctx context.Context, reader io.Reader, filename string) (*models.TemplateImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w: %w", ErrBadRequest, err)
	}

	return s.importRows(ctx, records, filename)
}

func (s *importService) ImportTemplatesFromExcel(ctx context.Context, reader io.Reader, filename string) (*models.TemplateImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w: %w", ErrBadRequest, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets: %w", ErrEmptyImport)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	return s.importRows(ctx, rows, filename)
}

// importRows groups question rows by template, in first-seen order, and
// normalizes the resulting raw templates as one batch.
func (s *importService) importRows(ctx context.Context, rows [][]string, filename string) (*models.TemplateImportResult, error) {
	rows = dropBlankRows(rows)
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row: %w", ErrEmptyImport)
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	var missing []string
	for _, col := range requiredImportColumns {
		if _, exists := headerMap[col]; !exists {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	result := &models.TemplateImportResult{
		FileName:  filename,
		TotalRows: len(rows) - 1,
		Errors:    []models.ImportValidationError{},
		Status:    models.ImportProcessing,
	}

	var order []string
	grouped := make(map[string]models.RawTemplate)

	for i, record := range rows[1:] {
		rowNum := i + 2
		result.ProcessedRows++

		getColumn := func(name string) string {
			if index, exists := headerMap[name]; exists && index < len(record) {
				return strings.TrimSpace(record[index])
			}
			return ""
		}

		question, scope, rowErrors := parseQuestionRow(getColumn, rowNum)
		settings, scoringSettings, settingErrors := parseTemplateSettings(getColumn, rowNum)
		rowErrors = append(rowErrors, settingErrors...)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorCount++
			continue
		}

		id := getColumn(colTemplateID)
		raw, ok := grouped[id]
		if !ok {
			raw = models.RawTemplate{
				"templateId":       id,
				"scoring":          map[string]any{},
				"gatingRules":      []any{},
				"sessionQuestions": []any{},
				"sampleQuestions":  []any{},
			}
			grouped[id] = raw
			order = append(order, id)
		}
		fillUnset(raw, settings)
		fillUnset(raw["scoring"].(map[string]any), scoringSettings)
		field := scope + "Questions"
		raw[field] = append(raw[field].([]any), question)
		if gate := parseGateColumns(getColumn, question["key"]); gate != nil {
			raw["gatingRules"] = append(raw["gatingRules"].([]any), gate)
		}
	}

	result.Templates = []*models.Template{}
	result.Rejected = []models.RejectedTemplate{}

	if len(order) > 0 {
		raws := make([]models.RawTemplate, 0, len(order))
		for _, id := range order {
			raws = append(raws, grouped[id])
		}
		batch, err := s.templates.NormalizeBatch(ctx, raws)
		if err != nil {
			return nil, err
		}
		result.Templates = batch.Templates
		result.Rejected = batch.Rejected
	}

	result.SuccessCount = len(result.Templates)
	result.Status = models.ImportCompleted
	if len(result.Templates) == 0 {
		result.Status = models.ImportValidationFailed
	}

	s.logger.InfoContext(ctx, "Template import completed",
		"filename", filename,
		"total_rows", result.TotalRows,
		"templates", result.SuccessCount,
		"rejected", len(result.Rejected),
		"row_errors", result.ErrorCount)

	return result, nil
}

func parseQuestionRow(getColumn func(string) string, rowNum int) (map[string]any, string, []models.ImportValidationError) {
	var errs []models.ImportValidationError
	rowErr := func(column, message, value, code string) {
		errs = append(errs, models.ImportValidationError{Row: rowNum, Column: column, Message: message, Value: value, Code: code})
	}

	if getColumn(colTemplateID) == "" {
		rowErr(colTemplateID, "template_id is required", "", "REQUIRED")
	}
	key := getColumn(colKey)
	if key == "" {
		rowErr(colKey, "key is required", "", "REQUIRED")
	}

	scope := strings.ToLower(getColumn(colScope))
	switch scope {
	case "", "sample":
		scope = "sample"
	case "session":
	default:
		rowErr(colScope, "scope must be session or sample", scope, "INVALID_SCOPE")
	}

	question := map[string]any{"key": key}
	if label := getColumn(colLabel); label != "" {
		question["label"] = label
	}
	if qType := getColumn(colType); qType != "" {
		question["type"] = qType
	}
	if options := getColumn(colOptions); options != "" {
		question["options"] = splitOptions(options)
	}

	if points := getColumn(colPoints); points != "" {
		v, err := strconv.ParseFloat(points, 64)
		if err != nil || v < 0 {
			rowErr(colPoints, "points must be a non-negative number", points, "INVALID_POINTS")
		} else {
			question["points"] = v
		}
	}

	for _, col := range []struct{ column, field string }{
		{colRequired, "required"},
		{colAffectsScore, "affectsScore"},
		{colCriticalFail, "criticalFail"},
		{colSubjectCode, "subjectCode"},
	} {
		value := getColumn(col.column)
		if value == "" {
			continue
		}
		b, ok := parseFlag(value)
		if !ok {
			rowErr(col.column, col.column+" must be true or false", value, "INVALID_BOOLEAN")
			continue
		}
		question[col.field] = b
	}

	if failIf := strings.ToLower(getColumn(colCriticalFailIf)); failIf != "" {
		question["criticalFailIf"] = failIf
	}

	return question, scope, errs
}

// parseTemplateSettings reads the template-level columns of one row. The
// second map holds the scoring policy fields.
func parseTemplateSettings(getColumn func(string) string, rowNum int) (map[string]any, map[string]any, []models.ImportValidationError) {
	var errs []models.ImportValidationError
	settings := map[string]any{}
	scoringSettings := map[string]any{}

	for _, col := range []struct{ column, field string }{
		{colTemplateTitle, "title"},
		{colCategory, "category"},
		{colVersion, "version"},
		{colFtagTags, "ftagTags"},
		{colNydohTags, "nydohTags"},
	} {
		if value := getColumn(col.column); value != "" {
			settings[col.field] = value
		}
	}
	if mode := getColumn(colScoringMode); mode != "" {
		scoringSettings["mode"] = mode
	}
	if policy := getColumn(colNAPolicy); policy != "" {
		scoringSettings["naPolicy"] = policy
	}

	for _, col := range []struct {
		column, field string
		max           float64
	}{
		{colPassingThreshold, "passingThreshold", 100},
		{colMaxScore, "maxScore", 0},
	} {
		value := getColumn(col.column)
		if value == "" {
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || (col.max > 0 && v > col.max) {
			errs = append(errs, models.ImportValidationError{
				Row:     rowNum,
				Column:  col.column,
				Message: col.column + " must be a number in range",
				Value:   value,
				Code:    "INVALID_NUMBER",
			})
			continue
		}
		scoringSettings[col.field] = v
	}

	return settings, scoringSettings, errs
}

// parseGateColumns returns a gating rule on the row's question, nil when the
// gate columns are blank.
func parseGateColumns(getColumn func(string) string, key any) map[string]any {
	failIf := strings.ToLower(getColumn(colGateFailIf))
	reason := getColumn(colGateReason)
	if failIf == "" && reason == "" {
		return nil
	}
	gate := map[string]any{"key": key}
	if failIf != "" {
		gate["failIf"] = failIf
	}
	if reason != "" {
		gate["reason"] = reason
	}
	return gate
}

func fillUnset(dst, src map[string]any) {
	for k, v := range src {
		if _, set := dst[k]; !set {
			dst[k] = v
		}
	}
}

func splitOptions(s string) []any {
	sep := ","
	if strings.Contains(s, "|") {
		sep = "|"
	}
	var out []any
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	return b, err == nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// ===== EXPORT OPERATIONS =====

func (s *importService) ExportTemplatesToCSV(templates []*models.Template) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(templateColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range templateRows(templates) {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importService) ExportTemplatesToExcel(templates []*models.Template) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Templates"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	rows := make([][]interface{}, 0)
	for _, row := range templateRows(templates) {
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		rows = append(rows, values)
	}
	if err := writeRows(f, sheetName, templateColumns, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func templateRows(templates []*models.Template) [][]string {
	var rows [][]string
	for _, t := range templates {
		maxScoreOverride := ""
		if t.Scoring.MaxScore > 0 {
			maxScoreOverride = strconv.FormatFloat(t.Scoring.MaxScore, 'f', -1, 64)
		}
		gates := make(map[string]models.GatingRule, len(t.GatingRules))
		for _, rule := range t.GatingRules {
			if _, seen := gates[rule.Key]; !seen {
				gates[rule.Key] = rule
			}
		}
		for _, scoped := range []struct {
			scope     string
			questions []models.Question
		}{{"session", t.SessionQuestions}, {"sample", t.SampleQuestions}} {
			for _, q := range scoped.questions {
				rows = append(rows, []string{
					t.TemplateID,
					t.Title,
					t.Category,
					t.Version,
					string(t.Scoring.Mode),
					string(t.Scoring.NAPolicy),
					strconv.FormatFloat(t.Scoring.PassingThreshold, 'f', -1, 64),
					maxScoreOverride,
					strings.Join(t.FtagTags, "|"),
					strings.Join(t.NydohTags, "|"),
					scoped.scope,
					q.Key,
					q.Label,
					string(q.Type),
					strings.Join(q.Options, "|"),
					strconv.FormatFloat(q.Points, 'f', -1, 64),
					strconv.FormatBool(q.Required),
					strconv.FormatBool(q.AffectsScore),
					strconv.FormatBool(q.CriticalFail),
					q.CriticalFailIf,
					strconv.FormatBool(q.SubjectCode),
					gates[q.Key].FailIf,
					gates[q.Key].Reason,
				})
			}
		}
	}
	return rows
}
