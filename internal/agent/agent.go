// Package agent implements the dispatcher that picks a capability for a
// free-text query.
//
// Selection itself is delegated to a Reasoner. The dispatcher owns the
// session memory: it reads the history before reasoning and appends the
// exchange only after the reasoner succeeds. Asks within one session are
// serialized; different sessions proceed in parallel.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/memory"
	"github.com/nadzzz/agentkit/internal/metrics"
)

// ErrEmptyQuery is returned by Ask for a blank query.
var ErrEmptyQuery = errors.New("query is empty")

// Step is one tool invocation made while reasoning.
type Step struct {
	Tool        string            `json:"tool"`
	Args        map[string]string `json:"args,omitempty"`
	Observation string            `json:"observation"`
}

// Request is the input to a Reasoner.
type Request struct {
	Query   string
	Tools   []capability.Descriptor
	History []memory.Turn
}

// Reply is the reasoner's final answer and the tools it used to reach it.
type Reply struct {
	Text  string
	Steps []Step
}

// Reasoner is the pluggable capability-selection loop.
type Reasoner interface {
	Reason(ctx context.Context, req Request) (Reply, error)
}

// Response is what the dispatcher returns to a transport.
type Response struct {
	Text      string   `json:"text"`
	ToolsUsed []string `json:"tools_used"`
	Steps     []Step   `json:"steps,omitempty"`
}

// LastTool returns the last capability used, or "".
func (r Response) LastTool() string {
	if len(r.ToolsUsed) == 0 {
		return ""
	}
	return r.ToolsUsed[len(r.ToolsUsed)-1]
}

// Dispatcher routes queries through a Reasoner with the registry's tools
// and the caller's session history.
type Dispatcher struct {
	reasoner Reasoner
	registry *capability.Registry
	store    *memory.Store
	now      func() time.Time
}

// New creates a Dispatcher.
func New(reasoner Reasoner, registry *capability.Registry, store *memory.Store) *Dispatcher {
	return &Dispatcher{
		reasoner: reasoner,
		registry: registry,
		store:    store,
		now:      time.Now,
	}
}

// Ask answers query within sessionID's conversation.
func (d *Dispatcher) Ask(ctx context.Context, sessionID, query string) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{}, ErrEmptyQuery
	}

	// Asks within one session run one at a time so each sees the turns of
	// the previous one.
	unlock := d.store.Lock(sessionID)
	defer unlock()

	start := d.now()
	logger := slog.With("session", sessionID)

	reply, err := d.reasoner.Reason(ctx, Request{
		Query:   query,
		Tools:   d.tools(),
		History: d.store.History(sessionID),
	})
	if err != nil {
		metrics.AgentQueries.WithLabelValues("error").Inc()
		logger.Error("reasoning failed", "error", err)
		return Response{}, fmt.Errorf("reasoning: %w", err)
	}

	d.store.Append(sessionID,
		memory.Turn{Role: memory.RoleUser, Text: query, At: start},
		memory.Turn{Role: memory.RoleAssistant, Text: reply.Text, At: d.now()},
	)

	resp := Response{Text: reply.Text, Steps: reply.Steps}
	for _, s := range reply.Steps {
		resp.ToolsUsed = append(resp.ToolsUsed, s.Tool)
	}
	if last := resp.LastTool(); last != "" {
		d.store.SetLastTool(sessionID, last)
	}
	metrics.AgentQueries.WithLabelValues("ok").Inc()
	logger.Info("query answered", "tools_used", resp.ToolsUsed, "duration", d.now().Sub(start))
	return resp, nil
}

// tools returns the registry's descriptors with Invoke routed through the
// registry so every call is measured.
func (d *Dispatcher) tools() []capability.Descriptor {
	descs := d.registry.List()
	for i := range descs {
		name := descs[i].Name
		descs[i].Invoke = func(ctx context.Context, args map[string]string) (capability.Result, error) {
			return d.registry.Invoke(ctx, name, args)
		}
	}
	return descs
}
