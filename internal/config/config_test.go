package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderKeys(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Delay)
	assert.Equal(t, 50, cfg.Tutor.MaxHistory)
	assert.Equal(t, 1, cfg.API.Retry.MaxAttempts)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearProviderKeys(t)
	path := filepath.Join(t.TempDir(), "brainkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user_id: user-123
api:
  base_url: https://lms.example.com
  retry:
    max_attempts: 3
    initial_wait: 250ms
search:
  delay: 150ms
llm:
  provider: openai
  openai:
    api_key: sk-file
`), 0o644))

	t.Setenv("BRAINKIT_API_TOKEN", "tok-env")
	t.Setenv("BRAINKIT_TUTOR_MAX_HISTORY", "20")
	t.Setenv("BRAINKIT_SERVER_RATE_LIMIT_BURST", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "user-123", cfg.UserID)
	assert.Equal(t, "https://lms.example.com", cfg.API.BaseURL)
	assert.Equal(t, "tok-env", cfg.API.Token)
	assert.Equal(t, 3, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.API.Retry.InitialWait)
	// Unset nested keys keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.API.Retry.MaxWait)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.Delay)
	assert.Equal(t, 20, cfg.Tutor.MaxHistory)
	assert.Equal(t, 7, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-file", cfg.LLM.OpenAI.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_DiscoversProviderKey(t *testing.T) {
	clearProviderKeys(t)
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.Anthropic.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, false},
		{"no timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, false},
		{"zero attempts", func(c *Config) { c.API.Retry.MaxAttempts = 0 }, false},
		{"negative delay", func(c *Config) { c.Search.Delay = -time.Second }, false},
		{"zero history", func(c *Config) { c.Tutor.MaxHistory = 0 }, false},
		{"bad log mode", func(c *Config) { c.Log.Mode = "verbose" }, false},
		{"sample ratio", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, false},
		{"llm key missing", func(c *Config) { c.LLM.Provider = "gemini" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
