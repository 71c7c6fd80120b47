package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["id", "position"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"position": {"type": "integer", "minimum": 0}
	}
}`

func TestValidateJSONStringValid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"id": "research", "position": 1}`)
	assert.NoError(t, err)
}

func TestValidateJSONStringViolations(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"id": "", "position": -2}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 2)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateJSONStringMissingRequired(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"id": "research"}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 1)
	assert.Contains(t, validationErr.Errors[0].Message, "position")
}

func TestValidateJSONStringBadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 42}`, `{}`)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}
