// Package gemini implements the Transcriber using Gemini's audio understanding.
//
// The audio is sent inline next to a transcription prompt; no separate
// speech API or credential is needed.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadzzz/agentkit/internal/llm"
	"github.com/nadzzz/agentkit/internal/transcribe"
)

// unintelligibleMarker is what the model is told to answer when it hears no speech.
const unintelligibleMarker = "[unintelligible]"

const prompt = "Generate a verbatim transcript of the speech in this audio. " +
	"Return only the transcript text, without timestamps, speaker labels or commentary. " +
	"If the audio contains no intelligible speech, return exactly: " + unintelligibleMarker

// Transcriber implements transcribe.Transcriber with an llm.Generator.
type Transcriber struct {
	gen   llm.Generator
	model string
}

// New creates a Gemini transcriber. An empty model uses the generator default.
func New(gen llm.Generator, model string) *Transcriber {
	return &Transcriber{gen: gen, model: model}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "gemini" }

// Transcribe sends WAV or MP3 audio inline and returns the transcript.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	ct := transcribe.DetectContentType(contentType, audio)
	if ct == "" {
		return "", fmt.Errorf("%w: %q", transcribe.ErrUnsupportedFormat, contentType)
	}

	out, err := t.gen.Generate(ctx, llm.Request{
		Model:       t.model,
		Prompt:      prompt,
		Attachments: []llm.Attachment{{MIMEType: ct, Data: audio}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", transcribe.ErrUnavailable, err)
	}

	text := llm.StripCodeFences(out)
	if text == "" || strings.EqualFold(text, unintelligibleMarker) {
		return "", transcribe.ErrUnintelligible
	}

	slog.Debug("gemini transcription complete", "text_length", len(text), "content_type", ct)
	return text, nil
}
