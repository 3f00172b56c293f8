package errors

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("test_field", "test message", "test_value")

	assert.Equal(t, "test_field", err.Field)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, "test_value", err.Value)
	assert.Equal(t, "validation error on field 'test_field': test message", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("field1", "message1", nil))
	assert.Equal(t, "validation failed: field1 message1", errs.Error())

	errs = append(errs, *NewValidationError("field2", "message2", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("test_field", "test message", "required", "test_value")

	assert.Equal(t, "required", err.Rule)
	assert.Equal(t, "test_field", err.Field)
}

type nestedItem struct {
	Key string `json:"key" validate:"required"`
}

type nestedDoc struct {
	Title string       `json:"title" validate:"required"`
	Items []nestedItem `json:"items" validate:"dive"`
}

func TestToValidationErrors(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	err := v.Struct(nestedDoc{Items: []nestedItem{{Key: "a"}, {}}})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "title", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "required", errs[0].Rule)
	assert.Equal(t, "items[1].key", errs[1].Field)

	t.Run("passes our own errors through", func(t *testing.T) {
		own := ValidationErrors{{Field: "x", Message: "bad"}}
		assert.Equal(t, own, ToValidationErrors(fmt.Errorf("wrapped: %w", own)))
	})

	t.Run("unknown error yields nothing", func(t *testing.T) {
		assert.Empty(t, ToValidationErrors(fmt.Errorf("boom")))
	})
}

func TestSchemaValidationError(t *testing.T) {
	errs := ValidationErrors{{Field: "version", Message: "must be a semantic version", Rule: "semver"}}
	err := NewSchemaValidationError("hand_hygiene", 2, errs)

	assert.Equal(t, `template "hand_hygiene" (index 2): validation failed: version must be a semantic version`, err.Error())
	assert.True(t, IsSchemaValidation(fmt.Errorf("normalize: %w", err)))
	assert.False(t, IsSchemaValidation(errs))
	assert.Equal(t, errs, ToValidationErrors(err))
}
