package validator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "github.com/SAP-F-2025/qa-compliance-service/internal/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/template.schema.json
var templateSchemaJSON []byte

const templateSchemaURL = "https://qa-compliance.schemas.local/template.schema.json"

var (
	templateSchemaOnce sync.Once
	templateSchema     *jsonschema.Schema
	templateSchemaErr  error
)

func compiledTemplateSchema() (*jsonschema.Schema, error) {
	templateSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(templateSchemaURL, bytes.NewReader(templateSchemaJSON)); err != nil {
			templateSchemaErr = fmt.Errorf("template schema load failed: %w", err)
			return
		}
		templateSchema, templateSchemaErr = c.Compile(templateSchemaURL)
		if templateSchemaErr != nil {
			templateSchemaErr = fmt.Errorf("template schema compile failed: %w", templateSchemaErr)
		}
	})
	return templateSchema, templateSchemaErr
}

// ValidateCanonicalDocument checks an exchanged template document against the
// embedded canonical schema. Violations come back as ValidationErrors.
func ValidateCanonicalDocument(doc []byte) error {
	schema, err := compiledTemplateSchema()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(doc, &instance); err != nil {
		return apperrors.ValidationErrors{{Field: "document", Message: "must be valid JSON: " + err.Error(), Rule: "json"}}
	}

	if err := schema.Validate(instance); err != nil {
		return schemaErrors(err)
	}
	return nil
}

func schemaErrors(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var errs apperrors.ValidationErrors
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := e.InstanceLocation
			if field == "" {
				field = "/"
			}
			errs = append(errs, apperrors.ValidationError{Field: field, Message: e.Message, Rule: "schema"})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return errs
}
