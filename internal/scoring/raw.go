package scoring

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/qa-compliance-service/internal/models"
)

// Raw template documents arrive from JSON, YAML and spreadsheet rows, so the
// accessors below accept every scalar encoding those decoders produce.

func rawString(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func rawFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func rawBool(m map[string]any, key string) (bool, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, false
	}
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	case float64:
		return val != 0, true
	case int:
		return val != 0, true
	}
	return false, false
}

func rawMap(m map[string]any, key string) map[string]any {
	switch val := m[key].(type) {
	case map[string]any:
		return val
	case models.RawTemplate:
		return val
	}
	return nil
}

func rawList(m map[string]any, key string) []any {
	switch val := m[key].(type) {
	case []any:
		return val
	case []map[string]any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out
	}
	return nil
}

// rawStrings reads a list of scalars, trimming and dropping blanks. A single
// comma-separated string is accepted for legacy tag fields.
func rawStrings(m map[string]any, key string) []string {
	if s, ok := m[key].(string); ok {
		return splitList(s)
	}
	var out []string
	for _, item := range rawList(m, key) {
		if s, ok := rawString(map[string]any{"v": item}, "v"); ok {
			out = append(out, s)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case models.RawTemplate:
		return val, true
	}
	return nil, false
}

// ToRawTemplate converts a canonical template back to its raw document form.
func ToRawTemplate(t *models.Template) (models.RawTemplate, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	var raw models.RawTemplate
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}
	return raw, nil
}
