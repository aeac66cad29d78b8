package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadzzz/agentkit/internal/agent"
	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/llm"
	"github.com/nadzzz/agentkit/internal/memory"
	"github.com/nadzzz/agentkit/internal/message"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, message.ErrorResponse{Error: msg})
}

// upstreamStatus maps a remote failure to an HTTP status.
func upstreamStatus(err error) int {
	if errors.Is(err, llm.ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// handleAPIAsk answers a free-text query through the dispatcher.
//
// @Summary     Ask the agent
// @Description The dispatcher picks a capability for the query, runs it and answers in natural language.
// @Description The conversation is kept per session: pass session_id or reuse the agentkit_session cookie.
// @Tags        agent
// @Accept      json
// @Produce     json
// @Param       request  body      message.AskRequest     true  "Query"
// @Success     200      {object}  message.AskResponse
// @Failure     400      {object}  message.ErrorResponse  "Empty query or invalid body"
// @Failure     502      {object}  message.ErrorResponse  "Generative API failure"
// @Failure     503      {object}  message.ErrorResponse  "API key not configured"
// @Router      /api/ask [post]
func (t *Transport) handleAPIAsk(w http.ResponseWriter, r *http.Request) {
	var req message.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	sid := req.SessionID
	if !memory.ValidSessionID(sid) {
		sid = t.session(w, r)
	}

	resp, err := t.opts.Agent.Ask(r.Context(), sid, req.Query)
	if err != nil {
		code := upstreamStatus(err)
		if errors.Is(err, agent.ErrEmptyQuery) {
			code = http.StatusBadRequest
		}
		out := message.NewAskResponse(sid, agent.Response{})
		out.Error = err.Error()
		writeJSON(w, code, out)
		return
	}
	writeJSON(w, http.StatusOK, message.NewAskResponse(sid, resp))
}

// handleAPICapabilities lists the registered capabilities.
//
// @Summary     List capabilities
// @Tags        capabilities
// @Produce     json
// @Success     200  {object}  message.CapabilitiesResponse
// @Router      /api/capabilities [get]
func (t *Transport) handleAPICapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, message.CapabilitiesResponse{Capabilities: t.opts.Registry.List()})
}

// handleAPIInvoke runs one capability directly, bypassing the agent.
//
// @Summary     Invoke a capability
// @Description Arguments are passed as a flat JSON object of strings keyed by parameter name.
// @Tags        capabilities
// @Accept      json
// @Produce     json
// @Param       name     path      string                 true  "Capability name"  example(translation)
// @Param       request  body      message.InvokeRequest  true  "Arguments"
// @Success     200      {object}  message.InvokeResponse
// @Failure     400      {object}  message.InvokeResponse  "Missing input"
// @Failure     404      {object}  message.ErrorResponse   "Unknown capability"
// @Failure     502      {object}  message.ErrorResponse   "Generative API failure"
// @Failure     503      {object}  message.ErrorResponse   "API key not configured"
// @Router      /api/capabilities/{name} [post]
func (t *Transport) handleAPIInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	args := message.InvokeRequest{}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	res, err := t.opts.Registry.Invoke(r.Context(), name, args)
	switch {
	case errors.Is(err, capability.ErrUnknown):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		slog.Error("capability failed", "capability", name, "error", err)
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	if name != "" {
		t.opts.Sessions.SetLastTool(t.session(w, r), name)
	}
	code := http.StatusOK
	if res.IsError() {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, message.NewInvokeResponse(name, res))
}

// handleAPIInvoices answers one query for each uploaded PDF.
//
// @Summary     Multi-invoice Q&A
// @Description Each PDF is converted to text and asked the same query. Results keep upload order.
// @Tags        invoices
// @Accept      multipart/form-data
// @Produce     json
// @Param       pdfs   formData  file    true  "PDF invoices (repeat the field for several files)"
// @Param       query  formData  string  true  "Question to ask of every invoice"
// @Success     200    {object}  message.InvoicesResponse
// @Failure     400    {object}  message.ErrorResponse  "Missing files or query"
// @Router      /api/invoices [post]
func (t *Transport) handleAPIInvoices(w http.ResponseWriter, r *http.Request) {
	if err := t.parseUpload(w, r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	docs, err := formDocuments(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	res, err := t.opts.Invoices.Process(r.Context(), docs, query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, message.InvoicesResponse{Query: query, Results: res, Summary: res.Flatten()})
}

// handleAPITranscribe transcribes an audio upload.
//
// @Summary     Transcribe audio
// @Description Accepts multipart/form-data with an "audio" file, or the raw WAV/MP3 bytes as the body.
// @Description The result becomes the session's transcript, downloadable at /transcription.txt.
// @Tags        audio
// @Accept      multipart/form-data
// @Accept      audio/wav
// @Accept      audio/mpeg
// @Produce     json
// @Param       audio  formData  file  false  "Audio file"
// @Success     200    {object}  message.TranscribeResponse
// @Failure     400    {object}  message.ErrorResponse  "No audio"
// @Failure     422    {object}  message.TranscribeResponse  "Audio could not be transcribed"
// @Router      /api/transcribe [post]
func (t *Transport) handleAPITranscribe(w http.ResponseWriter, r *http.Request) {
	var (
		audio       []byte
		contentType string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := t.parseUpload(w, r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var err error
		audio, contentType, err = formAudio(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, t.maxUpload))
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading audio: "+err.Error())
			return
		}
		audio, contentType = data, r.Header.Get("Content-Type")
	}

	res, err := t.opts.Audio.Transcribe(r.Context(), audio, contentType)
	if err != nil {
		res = capability.Error(err.Error())
	}
	t.opts.Sessions.SetTranscript(t.session(w, r), res)

	code := http.StatusOK
	if res.IsError() {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, message.NewTranscribeResponse(res))
}
