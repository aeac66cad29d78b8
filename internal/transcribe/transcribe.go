// Package transcribe defines the speech-to-text contract.
//
// agentkit ships with three backends: Gemini (default, the audio is sent
// inline with a transcription prompt), Whisper (any OpenAI-compatible
// /v1/audio/transcriptions endpoint) and Wyoming (a local ASR server such as
// wyoming-faster-whisper, spoken to over TCP).
package transcribe

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnintelligible means the backend answered but recognized no speech.
	ErrUnintelligible = errors.New("could not understand the audio")

	// ErrUnavailable means the backend could not be reached or refused the request.
	ErrUnavailable = errors.New("speech recognition service is unavailable")

	// ErrUnsupportedFormat means the audio container is not one the backend accepts.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Transcriber converts an audio buffer to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "gemini", "whisper", "wyoming").
	Name() string

	// Transcribe returns the recognized text. Implementations wrap
	// ErrUnintelligible and ErrUnavailable so callers can tell them apart.
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// DetectContentType normalizes a declared MIME type, falling back to sniffing
// the container magic bytes. It returns "audio/wav", "audio/mpeg" or "".
func DetectContentType(declared string, audio []byte) string {
	ct := strings.ToLower(declared)
	switch {
	case strings.Contains(ct, "wav"):
		return "audio/wav"
	case strings.Contains(ct, "mpeg"), strings.Contains(ct, "mp3"):
		return "audio/mpeg"
	}

	switch {
	case len(audio) >= 12 && string(audio[0:4]) == "RIFF" && string(audio[8:12]) == "WAVE":
		return "audio/wav"
	case len(audio) >= 3 && string(audio[0:3]) == "ID3":
		return "audio/mpeg"
	case len(audio) >= 2 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return "audio/mpeg"
	}
	return ""
}

// ExtFromContentType maps a normalized audio MIME type (see
// DetectContentType) to a file extension.
func ExtFromContentType(ct string) string {
	if ct == "audio/mpeg" {
		return ".mp3"
	}
	return ".wav"
}
