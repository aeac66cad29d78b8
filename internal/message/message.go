// Package message defines the request and response shapes of the agentkit
// JSON API. The CLI prints the same shapes.
package message

import (
	"github.com/nadzzz/agentkit/internal/agent"
	"github.com/nadzzz/agentkit/internal/batch"
	"github.com/nadzzz/agentkit/internal/capability"
)

// AskRequest is a free-text query for the dispatcher.
type AskRequest struct {
	// Query is the user's request in natural language.
	Query string `json:"query" example:"Translate 'good morning' to Spanish"`

	// SessionID selects the conversation. Empty uses the session cookie or
	// starts a new session.
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse is the dispatcher's answer.
type AskResponse struct {
	SessionID string       `json:"session_id"`
	Text      string       `json:"text"`
	ToolsUsed []string     `json:"tools_used"`
	Steps     []agent.Step `json:"steps,omitempty"`

	// Error is set if the query could not be answered.
	Error string `json:"error,omitempty"`
}

// NewAskResponse builds an AskResponse from a dispatcher response.
func NewAskResponse(sessionID string, resp agent.Response) AskResponse {
	tools := resp.ToolsUsed
	if tools == nil {
		tools = []string{}
	}
	return AskResponse{
		SessionID: sessionID,
		Text:      resp.Text,
		ToolsUsed: tools,
		Steps:     resp.Steps,
	}
}

// InvokeRequest carries the string arguments of a capability, keyed by
// parameter name (e.g. {"text": "...", "language": "es"}).
type InvokeRequest map[string]string

// InvokeResponse is the result of running one capability directly.
type InvokeResponse struct {
	Capability string `json:"capability"`

	// Kind is one of structured, raw, text, error.
	Kind string `json:"kind"`

	// Conforms is true when a structured reply matched the capability's schema.
	Conforms bool `json:"conforms"`

	// Result is a JSON object, or a string for text results.
	Result any `json:"result" swaggertype:"object"`

	// Error is set if the capability could not run.
	Error string `json:"error,omitempty"`
}

// NewInvokeResponse builds an InvokeResponse from a capability result.
func NewInvokeResponse(name string, res capability.Result) InvokeResponse {
	return InvokeResponse{
		Capability: name,
		Kind:       string(res.Kind),
		Conforms:   res.Conforms,
		Result:     res.Value(),
		Error:      res.ErrorMessage(),
	}
}

// CapabilitiesResponse lists the registered capabilities.
type CapabilitiesResponse struct {
	Capabilities []capability.Descriptor `json:"capabilities"`
}

// InvoicesResponse is the outcome of a multi-invoice query.
type InvoicesResponse struct {
	Query string `json:"query"`

	// Results maps "Invoice N" to that document's answer, in upload order.
	Results batch.Result `json:"results" swaggertype:"object"`

	// Summary is the plain-text rendering shown in the UI.
	Summary string `json:"summary"`

	Error string `json:"error,omitempty"`
}

// TranscribeResponse carries {"transcription": text} or {"error": message}.
type TranscribeResponse struct {
	Result any  `json:"result" swaggertype:"object"`
	OK     bool `json:"ok"`
}

// NewTranscribeResponse builds a TranscribeResponse from a capability result.
func NewTranscribeResponse(res capability.Result) TranscribeResponse {
	return TranscribeResponse{Result: res.Value(), OK: !res.IsError()}
}

// ErrorResponse is returned with a 4xx or 5xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
