package capability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nadzzz/agentkit/internal/metrics"
)

// ErrUnknown is returned when invoking a capability that is not registered.
var ErrUnknown = errors.New("unknown capability")

// Param describes one string argument of a capability.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// InvokeFunc runs a capability with string arguments keyed by Param.Name.
type InvokeFunc func(ctx context.Context, args map[string]string) (Result, error)

// Descriptor names a capability for the dispatcher and the UI.
type Descriptor struct {
	Name        string     `json:"name"`  // machine name, usable as a function name
	Title       string     `json:"title"` // display name
	Description string     `json:"description"`
	Params      []Param    `json:"params"`
	Invoke      InvokeFunc `json:"-"`
}

// Registry holds capability descriptors in registration order.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register adds d. Names must be unique and Invoke non-nil.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return errors.New("capability name is required")
	}
	if d.Invoke == nil {
		return fmt.Errorf("capability %q has no invoke function", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("capability %q already registered", d.Name)
	}
	d.Params = append([]Param(nil), d.Params...)
	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Invoke runs the named capability and records metrics for it.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]string) (Result, error) {
	d, ok := r.Get(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	start := time.Now()
	res, err := d.Invoke(ctx, args)
	if err != nil {
		metrics.ObserveCapability(name, "", time.Since(start))
		return Result{}, err
	}
	metrics.ObserveCapability(name, string(res.Kind), time.Since(start))
	return res, nil
}

// Capability names registered by RegisterDefaults.
const (
	NameGrammar   = "grammar_correction"
	NameSentiment = "sentiment_analysis"
	NameSpam      = "spam_detection"
	NameTranslate = "translation"
	NameSummarize = "summarization"
	NameClassify  = "text_classification"
	NameInvoice   = "invoice_qa"
)

var textParam = Param{Name: "text", Description: "The text to process.", Required: true}

// RegisterDefaults registers the text capabilities of svc. Audio
// transcription and multi-document invoices take file input and are served
// directly by the transports instead.
func RegisterDefaults(r *Registry, svc *Service) error {
	descs := []Descriptor{
		{
			Name:        NameInvoice,
			Title:       "Invoice Q&A",
			Description: "Answer questions based on invoice content.",
			Params: []Param{
				{Name: "invoice_text", Description: "The full text of the invoice.", Required: true},
				{Name: "query", Description: "The question to answer about the invoice.", Required: true},
			},
			Invoke: func(ctx context.Context, args map[string]string) (Result, error) {
				return svc.InvoiceQA(ctx, args["invoice_text"], args["query"])
			},
		},
		{
			Name:        NameTranslate,
			Title:       "Translation",
			Description: "Translate text into different languages.",
			Params: []Param{
				textParam,
				{Name: "language", Description: "Target language, e.g. fr, es, German. Defaults to fr."},
			},
			Invoke: func(ctx context.Context, args map[string]string) (Result, error) {
				return svc.Translate(ctx, args["text"], args["language"])
			},
		},
		{
			Name:        NameSummarize,
			Title:       "Summarization",
			Description: "Summarize long text documents.",
			Params:      []Param{textParam},
			Invoke: func(ctx context.Context, args map[string]string) (Result, error) {
				return svc.Summarize(ctx, args["text"])
			},
		},
		{
			Name:        NameSentiment,
			Title:       "Sentiment Analysis",
			Description: "Analyze the sentiment of a given text.",
			Params:      []Param{textParam},
			Invoke: func(ctx context.Context, args map[string]string) (Result, error) {
				return svc.Sentiment(ctx, args["text"])
			},
		},
		{
			Name:        NameGrammar,
			Title:       "Grammar Correction",
			Description: "Correct grammar and spelling in a given text.",
			Params:      []Param{textParam},
			Invoke: func(ctx context.Context, args map[string]string) (Result, error) {
				return svc.Grammar(ctx, args["text"])
			},
		},
		{
			Name:        NameClassify,
			Title:       "Text Classification",
			Description: "Classify text into predefined categories.",
			Params:      []Param{textParam},
			Invoke: func(ctx context.Context, args map[string]string) (Result, error) {
				return svc.Classify(ctx, args["text"])
			},
		},
		{
			Name:        NameSpam,
			Title:       "Spam Detection",
			Description: "Detect if an email is spam or not.",
			Params:      []Param{{Name: "text", Description: "The email content.", Required: true}},
			Invoke: func(ctx context.Context, args map[string]string) (Result, error) {
				return svc.Spam(ctx, args["text"])
			},
		},
	}

	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
