// Package capability implements the prompted text and document capabilities
// and the registry the dispatcher selects them from.
//
// Every capability returns a tagged Result instead of an untyped mapping so
// callers can tell a parsed reply from a raw fallback or an input error.
package capability

import "encoding/json"

// Kind tags the shape of a Result.
type Kind string

const (
	// KindStructured carries a mapping parsed from the reply or built by the capability.
	KindStructured Kind = "structured"
	// KindRaw carries a single field holding a reply that failed to parse.
	KindRaw Kind = "raw"
	// KindText carries plain text.
	KindText Kind = "text"
	// KindError carries {"error": message}.
	KindError Kind = "error"
)

// Result is the outcome of one capability invocation.
type Result struct {
	Kind   Kind
	Fields map[string]any
	Text   string

	// Conforms reports whether a structured reply matched the capability's
	// JSON Schema. It is informational and never changes Kind.
	Conforms bool
}

// Structured returns a KindStructured result.
func Structured(fields map[string]any) Result {
	return Result{Kind: KindStructured, Fields: fields}
}

// Raw returns a KindRaw result holding text under key.
func Raw(key, text string) Result {
	return Result{Kind: KindRaw, Fields: map[string]any{key: text}}
}

// Text returns a KindText result.
func Text(s string) Result {
	return Result{Kind: KindText, Text: s}
}

// Error returns a KindError result.
func Error(msg string) Result {
	return Result{Kind: KindError, Fields: map[string]any{"error": msg}}
}

// IsError reports whether r is error-shaped.
func (r Result) IsError() bool { return r.Kind == KindError }

// ErrorMessage returns the message of a KindError result, or "".
func (r Result) ErrorMessage() string {
	if r.Kind != KindError {
		return ""
	}
	msg, _ := r.Fields["error"].(string)
	return msg
}

// Field returns a string field of a mapping result.
func (r Result) Field(key string) (string, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Value returns the untyped view used for display: the mapping, or the text
// for KindText.
func (r Result) Value() any {
	if r.Kind == KindText {
		return r.Text
	}
	if r.Fields == nil {
		return map[string]any{}
	}
	return r.Fields
}

// String renders the result for a human: plain text as-is, mappings as
// indented JSON.
func (r Result) String() string {
	if r.Kind == KindText {
		return r.Text
	}
	b, err := json.MarshalIndent(r.Value(), "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// MarshalJSON encodes the untyped view.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}
