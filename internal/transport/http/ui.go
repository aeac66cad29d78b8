package http

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadzzz/agentkit/internal/agent"
	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/llm"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// fileCapabilities are served by the upload forms rather than the registry.
var fileCapabilities = []string{"Multiple Invoice Q&A", "Speech Recognition"}

type pageData struct {
	Capabilities     []capability.Descriptor
	FileCapabilities []string
	LastUsed         string
	MissingKey       bool
	MaxUploadMB      int64

	Query     string
	Answer    string
	AskError  string
	ToolsUsed []string

	InvoiceQuery   string
	InvoiceSummary string
	InvoiceError   string

	Transcript      string
	TranscriptError string
}

func (t *Transport) newPage(sessionID string) *pageData {
	p := &pageData{
		Capabilities:     t.opts.Registry.List(),
		FileCapabilities: fileCapabilities,
		MissingKey:       t.opts.MissingKey,
		MaxUploadMB:      t.opts.MaxUploadMB,
	}
	if name := t.opts.Sessions.LastTool(sessionID); name != "" {
		p.LastUsed = name
		if d, ok := t.opts.Registry.Get(name); ok && d.Title != "" {
			p.LastUsed = d.Title
		}
	}
	if res, ok := t.opts.Sessions.Transcript(sessionID); ok {
		p.Transcript = indentJSON(res)
	}
	return p
}

func (t *Transport) render(w http.ResponseWriter, p *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, p); err != nil {
		slog.Error("rendering page", "error", err)
	}
}

func (t *Transport) handleIndex(w http.ResponseWriter, r *http.Request) {
	t.render(w, t.newPage(t.session(w, r)))
}

func (t *Transport) handleAskForm(w http.ResponseWriter, r *http.Request) {
	sid := t.session(w, r)
	query := r.FormValue("query")

	resp, err := t.opts.Agent.Ask(r.Context(), sid, query)
	p := t.newPage(sid)
	p.Query = query
	if err != nil {
		p.AskError = askErrorText(err)
	} else {
		p.Answer = resp.Text
		p.ToolsUsed = resp.ToolsUsed
	}
	t.render(w, p)
}

func (t *Transport) handleInvoicesForm(w http.ResponseWriter, r *http.Request) {
	sid := t.session(w, r)
	if err := t.parseUpload(w, r); err != nil {
		p := t.newPage(sid)
		p.InvoiceError = err.Error()
		t.render(w, p)
		return
	}

	query := strings.TrimSpace(r.FormValue("invoice_query"))
	p := t.newPage(sid)
	p.InvoiceQuery = query

	docs, err := formDocuments(r)
	switch {
	case errors.Is(err, errNoFile):
		p.InvoiceError = "Upload at least one PDF invoice."
	case err != nil:
		p.InvoiceError = err.Error()
	case query == "":
		p.InvoiceError = "Enter a query for the invoices."
	default:
		res, err := t.opts.Invoices.Process(r.Context(), docs, query)
		if err != nil {
			p.InvoiceError = err.Error()
		} else {
			p.InvoiceSummary = res.Flatten()
		}
	}
	t.render(w, p)
}

func (t *Transport) handleTranscribeForm(w http.ResponseWriter, r *http.Request) {
	sid := t.session(w, r)
	if err := t.parseUpload(w, r); err != nil {
		p := t.newPage(sid)
		p.TranscriptError = err.Error()
		t.render(w, p)
		return
	}

	audio, contentType, err := formAudio(r)
	if err != nil {
		p := t.newPage(sid)
		p.TranscriptError = "Upload a WAV or MP3 file."
		t.render(w, p)
		return
	}

	res, err := t.opts.Audio.Transcribe(r.Context(), audio, contentType)
	if err != nil {
		res = capability.Error(err.Error())
	}
	t.opts.Sessions.SetTranscript(sid, res)
	t.render(w, t.newPage(sid))
}

// handleDownload serves the session's last transcript as transcription.txt.
func (t *Transport) handleDownload(w http.ResponseWriter, r *http.Request) {
	sid := t.session(w, r)
	res, ok := t.opts.Sessions.Transcript(sid)
	if !ok {
		http.Error(w, "no transcription available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transcription.txt"`)
	_, _ = w.Write([]byte(indentJSON(res)))
}

func indentJSON(res capability.Result) string {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func askErrorText(err error) string {
	switch {
	case errors.Is(err, agent.ErrEmptyQuery):
		return "Please enter a query."
	case errors.Is(err, llm.ErrNotConfigured):
		return llm.ErrNotConfigured.Error()
	default:
		return "The agent could not answer: " + err.Error()
	}
}
