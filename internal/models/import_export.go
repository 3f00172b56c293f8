package models

type ImportJobStatus string

const (
	ImportProcessing       ImportJobStatus = "processing"
	ImportCompleted        ImportJobStatus = "completed"
	ImportValidationFailed ImportJobStatus = "validation_failed"
)

// RawTemplate is a loosely-typed, JSON-shaped template definition as supplied by
// seed files, spreadsheet imports or callers. It is only ever read through the
// normalizer.
type RawTemplate map[string]any

// TemplateImportResult summarizes a spreadsheet template import.
type TemplateImportResult struct {
	FileName      string                  `json:"file_name"`
	TotalRows     int                     `json:"total_rows"`
	ProcessedRows int                     `json:"processed_rows"`
	SuccessCount  int                     `json:"success_count"`
	ErrorCount    int                     `json:"error_count"`
	Errors        []ImportValidationError `json:"errors"`
	Templates     []*Template             `json:"templates"`
	Rejected      []RejectedTemplate      `json:"rejected"`
	Status        ImportJobStatus         `json:"status"`
}

type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// RejectedTemplate is a template that failed canonical validation during a batch.
type RejectedTemplate struct {
	Index      int    `json:"index"`
	TemplateID string `json:"templateId"`
	Error      string `json:"error"`
	Details    any    `json:"details,omitempty"`
}
