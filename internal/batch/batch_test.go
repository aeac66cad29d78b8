package batch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/document/documenttest"
)

// fakeAnswerer answers with the invoice text itself so tests can check
// which document produced which entry.
type fakeAnswerer struct {
	mu      sync.Mutex
	queries []string
	failOn  string
	delay   func(text string) time.Duration

	inFlight, maxInFlight atomic.Int32
}

func (f *fakeAnswerer) InvoiceQA(_ context.Context, text, query string) (capability.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay != nil {
		time.Sleep(f.delay(text))
	}

	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return capability.Result{}, errors.New("remote failure")
	}
	return capability.Structured(map[string]any{"answer": text}), nil
}

func TestProcessEmptyMiddleDocument(t *testing.T) {
	qa := &fakeAnswerer{}
	docs := []Document{
		{Name: "a.pdf", Data: documenttest.BuildPDF("Total 10")},
		{Name: "b.pdf", Data: documenttest.BuildPDF("")},
		{Name: "c.pdf", Data: documenttest.BuildPDF("Total 30")},
	}

	res, err := New(qa, 1).Process(context.Background(), docs, "What is the total?")
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)

	assert.Equal(t, "Invoice 1", res.Entries[0].Label)
	assert.Equal(t, "Total 10", res.Entries[0].Result.Fields["answer"])
	assert.Equal(t, capability.KindError, res.Entries[1].Result.Kind)
	assert.Equal(t, MsgNoText, res.Entries[1].Result.ErrorMessage())
	assert.Equal(t, "Total 30", res.Entries[2].Result.Fields["answer"])
	assert.Equal(t, []string{"What is the total?", "What is the total?"}, qa.queries)
}

func TestProcessFailuresDoNotAbort(t *testing.T) {
	qa := &fakeAnswerer{failOn: "boom"}
	docs := []Document{
		{Data: []byte("not a pdf")},
		{Data: documenttest.BuildPDF("boom")},
		{Data: documenttest.BuildPDF("fine")},
	}

	res, err := New(qa, 1).Process(context.Background(), docs, "q")
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	assert.True(t, res.Entries[0].Result.IsError())
	assert.Equal(t, "remote failure", res.Entries[1].Result.ErrorMessage())
	assert.Equal(t, "fine", res.Entries[2].Result.Fields["answer"])
}

func TestProcessConcurrentKeepsOrder(t *testing.T) {
	qa := &fakeAnswerer{delay: func(text string) time.Duration {
		if text == "first" {
			return 50 * time.Millisecond
		}
		return 0
	}}
	docs := []Document{
		{Data: documenttest.BuildPDF("first")},
		{Data: documenttest.BuildPDF("second")},
		{Data: documenttest.BuildPDF("third")},
		{Data: documenttest.BuildPDF("fourth")},
	}

	res, err := New(qa, 2).Process(context.Background(), docs, "q")
	require.NoError(t, err)
	var got []any
	for _, e := range res.Entries {
		got = append(got, e.Result.Fields["answer"])
	}
	assert.Equal(t, []any{"first", "second", "third", "fourth"}, got)
	assert.LessOrEqual(t, qa.maxInFlight.Load(), int32(2))
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeAnswerer{}, 1).Process(ctx, []Document{{Data: documenttest.BuildPDF("x")}}, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultMarshalJSONKeepsOrder(t *testing.T) {
	res := Result{Entries: []Entry{
		{Label: "Invoice 1", Result: capability.Raw("answer", "one")},
		{Label: "Invoice 2", Result: capability.Error(MsgNoText)},
		{Label: "Invoice 10", Result: capability.Structured(map[string]any{"answer": "ten"})},
	}}

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Equal(t, `{"Invoice 1":{"answer":"one"},"Invoice 2":{"error":"No text found in the PDF."},"Invoice 10":{"answer":"ten"}}`, string(b))

	empty, err := json.Marshal(Result{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestFlatten(t *testing.T) {
	res := Result{Entries: []Entry{
		{Label: "Invoice 1", Result: capability.Raw("answer", "$42")},
		{Label: "Invoice 2", Result: capability.Structured(map[string]any{"total": "$7"})},
		{Label: "Invoice 3", Result: capability.Error(MsgNoText)},
		{Label: "Invoice 4", Result: capability.Structured(map[string]any{"answer": 12.5})},
	}}
	assert.Equal(t, "Invoice 1: $42\n\nInvoice 2: No answer found\n\nInvoice 3: No text found in the PDF.\n\nInvoice 4: 12.5", res.Flatten())
}
