// Package batch answers one query against many invoice documents.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/document"
	"github.com/nadzzz/agentkit/internal/metrics"
)

// MsgNoText is the entry error for a document without extractable text.
const MsgNoText = "No text found in the PDF."

// Answerer answers a query about one invoice's text.
type Answerer interface {
	InvoiceQA(ctx context.Context, invoiceText, query string) (capability.Result, error)
}

// Document is one uploaded file.
type Document struct {
	Name string
	Data []byte
}

// Entry is the result for one document.
type Entry struct {
	Label  string // "Invoice N", 1-based in input order
	Name   string // original file name, may be empty
	Result capability.Result
}

// Result holds one entry per input document, in input order.
type Result struct {
	Entries []Entry
}

// MarshalJSON encodes the entries as one object keyed by label, keeping
// input order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Result)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.Label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Flatten renders "Invoice N: <answer>" blocks separated by a blank line.
// Entries without an answer field show "No answer found"; error entries
// show their message.
func (r Result) Flatten() string {
	blocks := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		blocks = append(blocks, e.Label+": "+entryText(e.Result))
	}
	return strings.Join(blocks, "\n\n")
}

func entryText(res capability.Result) string {
	if res.IsError() {
		return res.ErrorMessage()
	}
	v, ok := res.Fields["answer"]
	if !ok {
		return "No answer found"
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "No answer found"
	}
	return string(b)
}

// Batcher extracts text from each document and asks the same question of each.
type Batcher struct {
	qa          Answerer
	concurrency int
	log         *slog.Logger
}

// New creates a Batcher. concurrency < 1 is treated as 1 (sequential).
func New(qa Answerer, concurrency int) *Batcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batcher{
		qa:          qa,
		concurrency: concurrency,
		log:         slog.With("component", "batch"),
	}
}

// Process answers query for every document. A failing document yields an
// error entry; the batch itself only fails when ctx is cancelled.
func (b *Batcher) Process(ctx context.Context, docs []Document, query string) (Result, error) {
	entries := make([]Entry, len(docs))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			entries[i] = Entry{
				Label:  fmt.Sprintf("Invoice %d", i+1),
				Name:   doc.Name,
				Result: b.processOne(ctx, doc, query),
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("processing invoices: %w", err)
	}
	return Result{Entries: entries}, nil
}

func (b *Batcher) processOne(ctx context.Context, doc Document, query string) capability.Result {
	text, err := document.ExtractText(doc.Data)
	if err != nil {
		b.log.Warn("text extraction failed", "document", doc.Name, "error", err)
		metrics.BatchDocuments.WithLabelValues("error").Inc()
		return capability.Error(err.Error())
	}
	if text == "" {
		metrics.BatchDocuments.WithLabelValues("error").Inc()
		return capability.Error(MsgNoText)
	}

	res, err := b.qa.InvoiceQA(ctx, text, query)
	if err != nil {
		b.log.Warn("invoice query failed", "document", doc.Name, "error", err)
		metrics.BatchDocuments.WithLabelValues("error").Inc()
		return capability.Error(err.Error())
	}
	metrics.BatchDocuments.WithLabelValues("answered").Inc()
	return res
}
