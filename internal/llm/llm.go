// Package llm defines the text-generation contract every capability uses
// and the Gemini implementation behind it.
//
// The client is configured once at process start and injected where needed;
// nothing in this package holds global state.
package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned by every call on a generator that was built
// without an API credential.
var ErrNotConfigured = errors.New("generative API client is not configured (set GEMINI_API_KEY)")

// Attachment is binary content sent alongside a prompt (e.g. audio).
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is a single prompt to a hosted model.
type Request struct {
	// Model overrides the generator default when non-empty.
	Model       string
	Prompt      string
	Attachments []Attachment
}

// Generator produces text for a prompt. One call is one network request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// StripCodeFences removes a surrounding markdown fence such as ```json ... ```.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}

	return strings.TrimSpace(s)
}
