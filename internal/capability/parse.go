package capability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParseOrFallback decodes reply as a JSON object. A reply that is not an
// object, including one wrapped in a markdown fence, becomes a KindRaw
// result holding the trimmed reply under fallbackKey. When schema is non-nil
// a parsed object is also validated and Conforms set accordingly.
func ParseOrFallback(reply, fallbackKey string, schema *jsonschema.Schema) Result {
	trimmed := strings.TrimSpace(reply)

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil || fields == nil {
		return Raw(fallbackKey, trimmed)
	}

	res := Structured(fields)
	if schema != nil {
		res.Conforms = schema.Validate(any(fields)) == nil
	}
	return res
}

// compileSchema compiles a schema given as a Go map.
func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func mustCompileSchema(name string, schemaMap map[string]any) *jsonschema.Schema {
	s, err := compileSchema(name, schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

var sentimentSchema = mustCompileSchema("sentiment.json", map[string]any{
	"type":     "object",
	"required": []any{"emotions", "description"},
	"properties": map[string]any{
		"emotions": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": []any{"number", "string"}},
		},
		"description": map[string]any{"type": "string"},
	},
})

var classificationSchema = mustCompileSchema("classification.json", map[string]any{
	"type":     "object",
	"required": []any{"category", "confidence"},
	"properties": map[string]any{
		"category":   map[string]any{"type": "string"},
		"confidence": map[string]any{"type": []any{"number", "string"}},
	},
})
