package capability

import (
	"context"
	"sync"

	"github.com/nadzzz/agentkit/internal/llm"
)

type fakeGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []llm.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Name() string { return "fake" }

func (f *fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.text, f.err
}
