// Package whisper implements the Transcriber against any OpenAI-compatible
// transcription endpoint (whisper.cpp server, faster-whisper, OpenAI itself).
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/nadzzz/agentkit/internal/config"
	"github.com/nadzzz/agentkit/internal/transcribe"
)

// Transcriber posts audio as multipart/form-data to a Whisper endpoint.
type Transcriber struct {
	endpoint string
	model    string
	language string
	apiKey   string
	client   *http.Client
}

// New creates a Whisper transcriber from config. apiKey is optional and sent
// as a bearer token when set.
func New(cfg config.WhisperConfig, apiKey string) *Transcriber {
	return &Transcriber{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		language: cfg.Language,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "whisper" }

// Transcribe uploads the audio and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	ct := transcribe.DetectContentType(contentType, audio)
	if ct == "" {
		return "", fmt.Errorf("%w: %q", transcribe.ErrUnsupportedFormat, contentType)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+transcribe.ExtFromContentType(ct))
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if t.model != "" {
		_ = writer.WriteField("model", t.model)
	}
	if t.language != "" {
		_ = writer.WriteField("language", t.language)
	}
	_ = writer.WriteField("response_format", "json")
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", transcribe.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: status %d: %s", transcribe.ErrUnavailable, resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decoding transcription: %v", transcribe.ErrUnavailable, err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", transcribe.ErrUnintelligible
	}

	slog.Debug("whisper transcription complete", "text_length", len(text))
	return text, nil
}
