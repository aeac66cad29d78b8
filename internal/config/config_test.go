package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.True(t, cfg.Transports.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.Transports.HTTP.Port)
	assert.Equal(t, int64(25), cfg.Transports.HTTP.MaxUploadMB)
	assert.False(t, cfg.Transports.GRPC.Enabled)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.FastModel)
	assert.InDelta(t, 0.5, cfg.Gemini.Temperature, 1e-6)
	assert.Equal(t, 5, cfg.Agent.MaxSteps)
	assert.Equal(t, 1, cfg.Batch.Concurrency)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTTL)
	assert.Equal(t, 10000, cfg.Sessions.MaxSessions)
	assert.Equal(t, "gemini", cfg.Transcription.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Gemini.Configured())
}

func TestLoadResolvesAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.True(t, cfg.Gemini.Configured())
}

func TestLoadFile(t *testing.T) {
	yamlContent := `
gemini:
  model: gemini-2.5-flash
  api_key: "${MY_KEY}"
transcription:
  backend: wyoming
  wyoming:
    endpoint: asr.local:10300
batch:
  concurrency: 3
sessions:
  idle_ttl: 2h
  max_sessions: 50
logging:
  level: debug
  format: text
`
	t.Setenv("MY_KEY", "from-file-ref")
	path := filepath.Join(t.TempDir(), "agentkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "from-file-ref", cfg.Gemini.APIKey)
	assert.Equal(t, "wyoming", cfg.Transcription.Backend)
	assert.Equal(t, "asr.local:10300", cfg.Transcription.Wyoming.Endpoint)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.IdleTTL)
	assert.Equal(t, 50, cfg.Sessions.MaxSessions)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGENTKIT_TRANSCRIPTION_BACKEND", "whisper")
	t.Setenv("AGENTKIT_AGENT_MAX_STEPS", "9")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "whisper", cfg.Transcription.Backend)
	assert.Equal(t, 9, cfg.Agent.MaxSteps)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGENTKIT_TRANSCRIPTION_BACKEND", "carrier-pigeon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Agent:         AgentConfig{MaxSteps: 1},
		Batch:         BatchConfig{Concurrency: 1},
		Sessions:      SessionsConfig{IdleTTL: time.Minute, MaxSessions: 1},
		Transcription: TranscriptionConfig{Backend: "gemini"},
		Transports:    TransportsConfig{HTTP: HTTPConfig{MaxUploadMB: 1}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero steps", func(c *Config) { c.Agent.MaxSteps = 0 }},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }},
		{"zero session ttl", func(c *Config) { c.Sessions.IdleTTL = 0 }},
		{"zero session cap", func(c *Config) { c.Sessions.MaxSessions = 0 }},
		{"zero upload limit", func(c *Config) { c.Transports.HTTP.MaxUploadMB = 0 }},
		{"bad backend", func(c *Config) { c.Transcription.Backend = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("AGENTKIT_TEST_REF", "value")
	assert.Equal(t, "value", resolveEnvRef("${AGENTKIT_TEST_REF}"))
	assert.Equal(t, "", resolveEnvRef("${AGENTKIT_TEST_UNSET_REF}"))
	assert.Equal(t, "literal", resolveEnvRef("literal"))
}
