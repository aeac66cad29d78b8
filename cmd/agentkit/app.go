package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/agentkit/internal/agent"
	agentgemini "github.com/nadzzz/agentkit/internal/agent/gemini"
	"github.com/nadzzz/agentkit/internal/batch"
	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/config"
	"github.com/nadzzz/agentkit/internal/llm"
	"github.com/nadzzz/agentkit/internal/memory"
	"github.com/nadzzz/agentkit/internal/transcribe"
	geministt "github.com/nadzzz/agentkit/internal/transcribe/gemini"
	"github.com/nadzzz/agentkit/internal/transcribe/whisper"
	"github.com/nadzzz/agentkit/internal/transcribe/wyoming"
)

// app holds the wired components shared by every command.
type app struct {
	cfg        *config.Config
	service    *capability.Service
	registry   *capability.Registry
	sessions   *memory.Store
	dispatcher *agent.Dispatcher
	batcher    *batch.Batcher
	missingKey bool
}

func newApp(ctx context.Context, configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	config.SetupLogging(cfg.Logging)

	gen, err := llm.NewGemini(ctx, cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if !gen.Configured() {
		slog.Warn("GEMINI_API_KEY is not set; generative capabilities will fail until it is")
	}

	var stt transcribe.Transcriber
	switch cfg.Transcription.Backend {
	case "whisper":
		stt = whisper.New(cfg.Transcription.Whisper, cfg.Transcription.Whisper.APIKey)
		slog.Info("using whisper transcription", "endpoint", cfg.Transcription.Whisper.Endpoint)
	case "wyoming":
		stt = wyoming.New(cfg.Transcription.Wyoming)
		slog.Info("using wyoming transcription", "endpoint", cfg.Transcription.Wyoming.Endpoint)
	default:
		stt = geministt.New(gen, cfg.Gemini.Model)
		slog.Info("using gemini transcription", "model", cfg.Gemini.Model)
	}

	svc := capability.NewService(gen, stt, capability.Models{
		Default: cfg.Gemini.Model,
		Fast:    cfg.Gemini.FastModel,
	})
	reg := capability.NewRegistry()
	if err := capability.RegisterDefaults(reg, svc); err != nil {
		return nil, fmt.Errorf("registering capabilities: %w", err)
	}

	sessions := memory.NewStore(
		memory.WithIdleTTL(cfg.Sessions.IdleTTL),
		memory.WithMaxSessions(cfg.Sessions.MaxSessions),
	)
	reasoner := agentgemini.New(gen.Client(), agentgemini.Options{
		Model:       cfg.Gemini.AgentModel,
		MaxSteps:    cfg.Agent.MaxSteps,
		Temperature: cfg.Gemini.Temperature,
	})

	return &app{
		cfg:        cfg,
		service:    svc,
		registry:   reg,
		sessions:   sessions,
		dispatcher: agent.New(reasoner, reg, sessions),
		batcher:    batch.New(svc, cfg.Batch.Concurrency),
		missingKey: !gen.Configured(),
	}, nil
}
