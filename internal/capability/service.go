package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadzzz/agentkit/internal/llm"
	"github.com/nadzzz/agentkit/internal/transcribe"
)

// DefaultLanguage is the translation target when none is given.
const DefaultLanguage = "fr"

// emailPreviewRunes bounds the email_content echoed by spam detection.
const emailPreviewRunes = 500

// Models names the hosted model each capability uses. Empty names defer to
// the generator default.
type Models struct {
	Default string
	Fast    string // summarization
}

// Service runs the prompted capabilities against an injected generator and
// transcriber. It holds no per-request state and is safe for concurrent use.
type Service struct {
	gen    llm.Generator
	stt    transcribe.Transcriber
	models Models
	log    *slog.Logger
}

// NewService creates a capability service. stt may be nil when transcription
// is not wired; Transcribe then reports the service as unavailable.
func NewService(gen llm.Generator, stt transcribe.Transcriber, models Models) *Service {
	return &Service{
		gen:    gen,
		stt:    stt,
		models: models,
		log:    slog.With("component", "capability"),
	}
}

func (s *Service) generate(ctx context.Context, model, prompt string) (string, error) {
	reply, err := s.gen.Generate(ctx, llm.Request{Model: model, Prompt: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Grammar corrects grammar and spelling.
func (s *Service) Grammar(ctx context.Context, text string) (Result, error) {
	if blank(text) {
		return Error("No text provided for grammar correction."), nil
	}
	reply, err := s.generate(ctx, s.models.Default, fmt.Sprintf("Correct grammar: '%s'", text))
	if err != nil {
		return Result{}, fmt.Errorf("grammar correction: %w", err)
	}
	return Structured(map[string]any{"original": text, "corrected": reply}), nil
}

// Sentiment asks for per-emotion percentages and a short description.
func (s *Service) Sentiment(ctx context.Context, text string) (Result, error) {
	if blank(text) {
		return Error("No text provided for sentiment analysis."), nil
	}
	prompt := fmt.Sprintf(`Analyze the sentiment of the following text and return a structured JSON response.
The response should contain:
- "emotions": an object with the emotion labels Happy, Sad, Angry and Neutral as keys and percentages as values.
- "description": a short sentiment summary.
Return only JSON format.
Text: '%s'`, text)

	reply, err := s.generate(ctx, s.models.Default, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("sentiment analysis: %w", err)
	}
	res := ParseOrFallback(reply, "raw_response", sentimentSchema)
	if res.Kind == KindStructured && !res.Conforms {
		s.log.Debug("sentiment reply does not match schema")
	}
	return res, nil
}

// Spam classifies an email as "Spam" or "Not Spam". Any reply mentioning
// "spam" in any case counts as spam.
func (s *Service) Spam(ctx context.Context, email string) (Result, error) {
	if blank(email) {
		return Error("No email content provided for spam detection."), nil
	}
	reply, err := s.generate(ctx, s.models.Default, fmt.Sprintf("Classify this email as 'Spam' or 'Not Spam': '%s'", email))
	if err != nil {
		return Result{}, fmt.Errorf("spam detection: %w", err)
	}

	classification := "Not Spam"
	if strings.Contains(strings.ToLower(reply), "spam") {
		classification = "Spam"
	}
	return Structured(map[string]any{
		"email_content":  truncateRunes(email, emailPreviewRunes),
		"classification": classification,
	}), nil
}

// Translate translates text into lang (ISO code or language name).
func (s *Service) Translate(ctx context.Context, text, lang string) (Result, error) {
	if blank(text) {
		return Error("No text provided for translation."), nil
	}
	if blank(lang) {
		lang = DefaultLanguage
	}
	reply, err := s.generate(ctx, s.models.Default, fmt.Sprintf("Translate this to %s: '%s'", lang, text))
	if err != nil {
		return Result{}, fmt.Errorf("translation: %w", err)
	}
	return Structured(map[string]any{"original": text, "translated": reply, "language": lang}), nil
}

// Summarize extracts key insights as plain text, avoiding sensitive details.
func (s *Service) Summarize(ctx context.Context, text string) (Result, error) {
	if blank(text) {
		return Error("No text provided for summarization."), nil
	}
	model := s.models.Fast
	if model == "" {
		model = s.models.Default
	}
	prompt := fmt.Sprintf(`Summarize the following text by extracting key insights while avoiding sensitive details like SSNs.
Return only the summary text without JSON formatting.

Text: '%s'`, text)

	reply, err := s.generate(ctx, model, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("summarization: %w", err)
	}
	return Text(reply), nil
}

// Classify assigns a category and a confidence score.
func (s *Service) Classify(ctx context.Context, text string) (Result, error) {
	if blank(text) {
		return Error("No text provided for classification."), nil
	}
	prompt := fmt.Sprintf(`Classify this text and provide a confidence score.
Return only a JSON object with "category" (string) and "confidence" (number between 0 and 1).
Text: '%s'`, text)

	reply, err := s.generate(ctx, s.models.Default, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("text classification: %w", err)
	}
	return ParseOrFallback(reply, "classification", classificationSchema), nil
}

// InvoiceQA answers query about a single invoice's text.
func (s *Service) InvoiceQA(ctx context.Context, invoiceText, query string) (Result, error) {
	if blank(invoiceText) {
		return Error("No invoice content provided."), nil
	}
	if blank(query) {
		return Error("No query provided for the invoice."), nil
	}
	prompt := fmt.Sprintf(`Based on this invoice: '%s', answer: %s
Return the response as a structured JSON object without markdown formatting.`, invoiceText, query)

	reply, err := s.generate(ctx, s.models.Default, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("invoice q&a: %w", err)
	}
	return ParseOrFallback(reply, "answer", nil), nil
}

// Messages shown for transcription failures.
const (
	MsgUnintelligible = "Could not understand the audio."
	MsgUnavailable    = "Speech recognition service is unavailable."
)

// Transcribe converts audio to {"transcription": text}. Backend failures are
// reported as error-shaped results, never as Go errors.
func (s *Service) Transcribe(ctx context.Context, audio []byte, contentType string) (Result, error) {
	if len(audio) == 0 {
		return Error("No audio provided for transcription."), nil
	}
	if s.stt == nil {
		return Error(MsgUnavailable), nil
	}

	text, err := s.stt.Transcribe(ctx, audio, contentType)
	switch {
	case err == nil:
		return Structured(map[string]any{"transcription": text}), nil
	case errors.Is(err, transcribe.ErrUnintelligible):
		return Error(MsgUnintelligible), nil
	case errors.Is(err, transcribe.ErrUnsupportedFormat):
		s.log.Warn("unsupported audio", "backend", s.stt.Name(), "error", err)
		return Error("Unsupported audio format. Upload a WAV or MP3 file."), nil
	default:
		s.log.Warn("transcription failed", "backend", s.stt.Name(), "error", err)
		return Error(MsgUnavailable), nil
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
