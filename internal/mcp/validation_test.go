package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateParamsAgainstSchema_FlagsUnknownField(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"script": map[string]any{"type": "string"},
		},
	}
	warnings := ValidateParamsAgainstSchema(json.RawMessage(`{"script":"x","bogus":1}`), schema)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "bogus")
}

func TestValidateParamsAgainstSchema_NoWarningsForKnownFields(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"script": map[string]any{"type": "string"},
		},
	}
	warnings := ValidateParamsAgainstSchema(json.RawMessage(`{"script":"x"}`), schema)
	assert.Empty(t, warnings)
}

func TestValidateParamsAgainstSchema_EmptyDataNoWarnings(t *testing.T) {
	schema := map[string]any{"properties": map[string]any{}}
	assert.Empty(t, ValidateParamsAgainstSchema(nil, schema))
}
