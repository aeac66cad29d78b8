// Package wyoming implements the Transcriber against a Wyoming ASR server
// such as wyoming-faster-whisper (TCP port 10300 by default).
//
// A transcription is a single connection:
//
//	-> transcribe {language}
//	-> audio-start {rate, width, channels}
//	-> audio-chunk* (16-bit PCM payload)
//	-> audio-stop
//	<- transcript {text}
package wyoming

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-audio/wav"

	"github.com/nadzzz/agentkit/internal/config"
	"github.com/nadzzz/agentkit/internal/transcribe"
)

const (
	sampleWidth = 2    // bytes per sample sent to the server
	chunkBytes  = 8192 // PCM bytes per audio-chunk event
)

// Transcriber streams decoded WAV audio to a Wyoming server.
type Transcriber struct {
	endpoint string
	language string
	timeout  time.Duration
}

// New creates a Wyoming transcriber from config.
func New(cfg config.WyomingConfig) *Transcriber {
	ep := strings.TrimPrefix(cfg.Endpoint, "tcp://")
	return &Transcriber{
		endpoint: ep,
		language: cfg.Language,
		timeout:  60 * time.Second,
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "wyoming" }

// Transcribe decodes the WAV container and sends its PCM to the server.
// Only WAV input is accepted.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if transcribe.DetectContentType(contentType, audio) != "audio/wav" {
		return "", fmt.Errorf("%w: wyoming backend accepts WAV only", transcribe.ErrUnsupportedFormat)
	}

	pcm, rate, channels, err := decodeWAV(audio)
	if err != nil {
		return "", err
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", t.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: connecting to %s: %v", transcribe.ErrUnavailable, t.endpoint, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(t.timeout))
	}

	format := map[string]any{"rate": rate, "width": sampleWidth, "channels": channels}

	req := event{Type: "transcribe", Data: map[string]any{}}
	if t.language != "" {
		req.Data["language"] = t.language
	}
	if err := writeEvent(conn, req, nil); err != nil {
		return "", fmt.Errorf("%w: sending transcribe: %v", transcribe.ErrUnavailable, err)
	}
	if err := writeEvent(conn, event{Type: "audio-start", Data: format}, nil); err != nil {
		return "", fmt.Errorf("%w: sending audio-start: %v", transcribe.ErrUnavailable, err)
	}
	for off := 0; off < len(pcm); off += chunkBytes {
		end := min(off+chunkBytes, len(pcm))
		if err := writeEvent(conn, event{Type: "audio-chunk", Data: format}, pcm[off:end]); err != nil {
			return "", fmt.Errorf("%w: sending audio-chunk: %v", transcribe.ErrUnavailable, err)
		}
	}
	if err := writeEvent(conn, event{Type: "audio-stop"}, nil); err != nil {
		return "", fmt.Errorf("%w: sending audio-stop: %v", transcribe.ErrUnavailable, err)
	}

	slog.Debug("wyoming audio sent", "endpoint", t.endpoint, "pcm_bytes", len(pcm), "rate", rate, "channels", channels)

	r := bufio.NewReader(conn)
	for {
		evt, _, err := readEvent(r)
		if err != nil {
			return "", fmt.Errorf("%w: reading response: %v", transcribe.ErrUnavailable, err)
		}
		switch evt.Type {
		case "transcript":
			text, _ := evt.Data["text"].(string)
			text = strings.TrimSpace(text)
			if text == "" {
				return "", transcribe.ErrUnintelligible
			}
			return text, nil
		case "error":
			msg, _ := evt.Data["text"].(string)
			return "", fmt.Errorf("%w: server error: %s", transcribe.ErrUnavailable, msg)
		default:
			slog.Debug("wyoming event ignored", "type", evt.Type)
		}
	}
}

// decodeWAV returns 16-bit little-endian PCM plus the sample rate and channel count.
func decodeWAV(audio []byte) ([]byte, int, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(audio))
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%w: invalid WAV file", transcribe.ErrUnsupportedFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: decoding WAV: %v", transcribe.ErrUnsupportedFormat, err)
	}

	depth := int(dec.BitDepth)
	pcm := make([]byte, 0, len(buf.Data)*sampleWidth)
	for _, s := range buf.Data {
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(to16(s, depth)))
	}
	return pcm, int(dec.SampleRate), int(dec.NumChans), nil
}

func to16(s, depth int) int16 {
	switch depth {
	case 8:
		return int16((s - 128) << 8)
	case 24:
		return int16(s >> 8)
	case 32:
		return int16(s >> 16)
	default:
		return int16(s)
	}
}
