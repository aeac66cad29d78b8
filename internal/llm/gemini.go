package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nadzzz/agentkit/internal/config"
	genai "google.golang.org/genai"
)

// Gemini implements Generator on top of the Google generative API.
// A Gemini built without a credential has a nil client and fails every call
// with ErrNotConfigured.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates the process-wide Gemini generator from config.
// A missing API key is not an error: the returned generator is unconfigured.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	g := &Gemini{model: cfg.Model, temperature: cfg.Temperature}
	if g.model == "" {
		g.model = "gemini-2.0-flash"
	}
	if !cfg.Configured() {
		return g, nil
	}

	c, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	g.client = c
	return g, nil
}

// NewClient builds a genai client for the Gemini API backend.
func NewClient(ctx context.Context, cfg config.GeminiConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
		cc.HTTPClient = &http.Client{}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return c, nil
}

// Configured reports whether the generator can reach the API.
func (g *Gemini) Configured() bool { return g.client != nil }

// Client exposes the underlying genai client (nil when unconfigured).
func (g *Gemini) Client() *genai.Client { return g.client }

// Generate sends one prompt (plus optional inline attachments) and returns the reply text.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.client == nil {
		return "", ErrNotConfigured
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, a := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}

	slog.Debug("gemini generate", "model", model, "prompt_length", len(req.Prompt), "attachments", len(req.Attachments))

	res, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", model, err)
	}
	return res.Text(), nil
}
