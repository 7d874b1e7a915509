package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputSchemaProblem(t *testing.T) {
	type nilSlice struct {
		Items []string `json:"items"`
	}
	type omitzeroSlice struct {
		Items []string `json:"items,omitzero"`
	}
	type rawField struct {
		Data json.RawMessage `json:"data,omitempty"`
	}
	type nestedRaw struct {
		Inner struct {
			Schema []json.RawMessage `json:"schema,omitzero"`
		} `json:"inner"`
	}

	assert.Error(t, OutputSchemaProblem[nilSlice]())
	assert.NoError(t, OutputSchemaProblem[omitzeroSlice]())
	assert.Error(t, OutputSchemaProblem[rawField]())
	assert.Error(t, OutputSchemaProblem[nestedRaw]())
	assert.NoError(t, OutputSchemaProblem[any]())
}

func TestOutputSchemaProblem_BuiltinOutputs(t *testing.T) {
	assert.NoError(t, OutputSchemaProblem[IndexSchemaOutput]())
	assert.NoError(t, OutputSchemaProblem[InferSchemaOutput]())
	assert.NoError(t, OutputSchemaProblem[InterpretOutput]())
	assert.NoError(t, OutputSchemaProblem[ComposeTemplateOutput]())
	assert.NoError(t, OutputSchemaProblem[ValidateDataOutput]())
	assert.NoError(t, OutputSchemaProblem[RenderTemplateOutput]())
	assert.NoError(t, OutputSchemaProblem[CheckRulesOutput]())
	assert.NoError(t, OutputSchemaProblem[RedactOutput]())
}
