// Package gemini implements agent.Reasoner with Gemini function calling.
//
// Each capability descriptor becomes a function declaration with string
// parameters. The model calls tools until it produces a text answer or the
// step budget runs out, after which function calling is disabled and a
// final answer is demanded.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	genai "google.golang.org/genai"

	"github.com/nadzzz/agentkit/internal/agent"
	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/llm"
	"github.com/nadzzz/agentkit/internal/memory"
)

const systemPrompt = `You are an assistant that answers user queries with the tools available to you.
Pick the single tool that best fits the request and pass the user's text to it verbatim.
When the tool returns, answer the user with its result. Answer directly when no tool applies.`

// Options configures the reasoning loop.
type Options struct {
	Model       string
	MaxSteps    int
	Temperature float32
}

// Reasoner drives the tool-calling conversation.
type Reasoner struct {
	client *genai.Client
	opts   Options
	log    *slog.Logger
}

// New creates a Reasoner. A nil client yields a reasoner whose every call
// fails with llm.ErrNotConfigured.
func New(client *genai.Client, opts Options) *Reasoner {
	if opts.MaxSteps < 1 {
		opts.MaxSteps = 1
	}
	return &Reasoner{
		client: client,
		opts:   opts,
		log:    slog.With("component", "reasoner", "model", opts.Model),
	}
}

// Reason answers req.Query, invoking req.Tools as the model requests.
func (r *Reasoner) Reason(ctx context.Context, req agent.Request) (agent.Reply, error) {
	if r.client == nil {
		return agent.Reply{}, llm.ErrNotConfigured
	}

	tools := make(map[string]capability.Descriptor, len(req.Tools))
	for _, d := range req.Tools {
		tools[d.Name] = d
	}

	contents := historyContents(req.History)
	contents = append(contents, genai.NewContentFromText(req.Query, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(r.opts.Temperature),
	}
	if len(req.Tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: declarations(req.Tools)}}
	}

	var steps []agent.Step
	for {
		exhausted := len(steps) >= r.opts.MaxSteps
		if exhausted {
			cfg.ToolConfig = &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeNone},
			}
		}

		res, err := r.client.Models.GenerateContent(ctx, r.opts.Model, contents, cfg)
		if err != nil {
			return agent.Reply{}, fmt.Errorf("gemini reasoning (%s): %w", r.opts.Model, err)
		}

		calls := res.FunctionCalls()
		if len(calls) == 0 || exhausted {
			return agent.Reply{Text: finalText(res.Text(), steps), Steps: steps}, nil
		}

		contents = append(contents, res.Candidates[0].Content)

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			if len(steps) >= r.opts.MaxSteps {
				parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{
					"error": "tool budget exhausted, answer with what you have",
				}))
				continue
			}
			step, response := r.invoke(ctx, tools, call)
			steps = append(steps, step)
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, response))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

// invoke runs one tool call. Failures become observations for the model.
func (r *Reasoner) invoke(ctx context.Context, tools map[string]capability.Descriptor, call *genai.FunctionCall) (agent.Step, map[string]any) {
	args := stringArgs(call.Args)
	step := agent.Step{Tool: call.Name, Args: args}

	d, ok := tools[call.Name]
	if !ok {
		step.Observation = fmt.Sprintf("error: %v: %q", capability.ErrUnknown, call.Name)
		return step, map[string]any{"error": step.Observation}
	}

	r.log.Debug("invoking tool", "tool", call.Name)
	res, err := d.Invoke(ctx, args)
	if err != nil {
		r.log.Warn("tool failed", "tool", call.Name, "error", err)
		step.Observation = "error: " + err.Error()
		return step, map[string]any{"error": err.Error()}
	}
	step.Observation = res.String()
	if res.IsError() {
		return step, map[string]any{"error": res.ErrorMessage()}
	}
	return step, map[string]any{"output": res.Value()}
}

// finalText falls back to the last observation when the model ends with no text.
func finalText(text string, steps []agent.Step) string {
	text = strings.TrimSpace(text)
	if text == "" && len(steps) > 0 {
		return steps[len(steps)-1].Observation
	}
	return text
}

func historyContents(history []memory.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == memory.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(t.Text, role))
	}
	return out
}

func declarations(descs []capability.Descriptor) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(descs))
	for _, d := range descs {
		fd := &genai.FunctionDeclaration{Name: d.Name, Description: d.Description}
		if len(d.Params) > 0 {
			schema := &genai.Schema{Type: genai.TypeObject, Properties: make(map[string]*genai.Schema, len(d.Params))}
			for _, p := range d.Params {
				schema.Properties[p.Name] = &genai.Schema{Type: genai.TypeString, Description: p.Description}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			fd.Parameters = schema
		}
		out = append(out, fd)
	}
	return out
}

func stringArgs(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
