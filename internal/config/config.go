// Package config handles loading and validating the agentkit configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the agentkit daemon.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Transports    TransportsConfig    `mapstructure:"transports"`
	Gemini        GeminiConfig        `mapstructure:"gemini"`
	Agent         AgentConfig         `mapstructure:"agent"`
	Batch         BatchConfig         `mapstructure:"batch"`
	Sessions      SessionsConfig      `mapstructure:"sessions"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC health transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the web UI and JSON API.
type HTTPConfig struct {
	Enabled     bool  `mapstructure:"enabled"`
	Port        int   `mapstructure:"port"`
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`
}

// GeminiConfig holds the generative API settings.
//
// Model is used by most capabilities; FastModel by summarization and
// AgentModel by the dispatcher's reasoning loop.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	FastModel   string  `mapstructure:"fast_model"`
	AgentModel  string  `mapstructure:"agent_model"`
	BaseURL     string  `mapstructure:"base_url"` // empty = Google default
	Temperature float32 `mapstructure:"temperature"`
}

// Configured reports whether an API credential is present.
func (g GeminiConfig) Configured() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

// AgentConfig configures the dispatcher.
type AgentConfig struct {
	MaxSteps int `mapstructure:"max_steps"`
}

// BatchConfig configures multi-invoice processing.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"` // 1 = sequential
}

// SessionsConfig bounds the in-memory session store.
type SessionsConfig struct {
	IdleTTL     time.Duration `mapstructure:"idle_ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

// TranscriptionConfig selects and configures the speech-to-text backend.
type TranscriptionConfig struct {
	Backend string        `mapstructure:"backend"` // "gemini", "whisper" or "wyoming"
	Whisper WhisperConfig `mapstructure:"whisper"`
	Wyoming WyomingConfig `mapstructure:"wyoming"`
}

// WhisperConfig holds settings for an OpenAI-compatible transcription endpoint.
type WhisperConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"` // ISO-639-1, empty = auto
	APIKey   string `mapstructure:"api_key"`  // optional bearer token
}

// WyomingConfig holds settings for a Wyoming ASR server (e.g. wyoming-faster-whisper).
type WyomingConfig struct {
	Endpoint string `mapstructure:"endpoint"` // host:port
	Language string `mapstructure:"language"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./agentkit.yaml, ./configs/agentkit.yaml, /etc/agentkit/agentkit.yaml.
// A .env file in the working directory is loaded first when present.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.max_upload_mb", 25)
	v.SetDefault("gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.fast_model", "gemini-1.5-flash")
	v.SetDefault("gemini.agent_model", "gemini-1.5-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.temperature", 0.5)
	v.SetDefault("agent.max_steps", 5)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("sessions.idle_ttl", "30m")
	v.SetDefault("sessions.max_sessions", 10000)
	v.SetDefault("transcription.backend", "gemini")
	v.SetDefault("transcription.whisper.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("transcription.whisper.model", "whisper-1")
	v.SetDefault("transcription.whisper.language", "")
	v.SetDefault("transcription.whisper.api_key", "")
	v.SetDefault("transcription.wyoming.endpoint", "localhost:10300")
	v.SetDefault("transcription.wyoming.language", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("agentkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/agentkit")
	}

	// Environment variables: AGENTKIT_GEMINI_MODEL, AGENTKIT_TRANSCRIPTION_BACKEND, etc.
	v.SetEnvPrefix("AGENTKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.Gemini.APIKey = resolveEnvRef(cfg.Gemini.APIKey)
	cfg.Transcription.Whisper.APIKey = resolveEnvRef(cfg.Transcription.Whisper.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at request time.
// A missing API key is not an error: the UI surfaces it instead.
func (c *Config) Validate() error {
	switch c.Transcription.Backend {
	case "gemini", "whisper", "wyoming":
	default:
		return fmt.Errorf("unknown transcription backend %q (supported: gemini, whisper, wyoming)", c.Transcription.Backend)
	}
	if c.Agent.MaxSteps < 1 {
		return fmt.Errorf("agent.max_steps must be >= 1, got %d", c.Agent.MaxSteps)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be >= 1, got %d", c.Batch.Concurrency)
	}
	if c.Sessions.IdleTTL <= 0 {
		return fmt.Errorf("sessions.idle_ttl must be positive, got %s", c.Sessions.IdleTTL)
	}
	if c.Sessions.MaxSessions < 1 {
		return fmt.Errorf("sessions.max_sessions must be >= 1, got %d", c.Sessions.MaxSessions)
	}
	if c.Transports.HTTP.MaxUploadMB < 1 {
		return fmt.Errorf("transports.http.max_upload_mb must be >= 1, got %d", c.Transports.HTTP.MaxUploadMB)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
