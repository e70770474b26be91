// Package config loads brainkit settings from brainkit.yaml and BRAINKIT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/llm"
	"github.com/abhisek/brainkit/internal/store"
)

// EnvPrefix is prepended to every environment override, e.g.
// BRAINKIT_API_BASE_URL or BRAINKIT_SERVER_JWT_SECRET.
const EnvPrefix = "BRAINKIT"

type Config struct {
	// UserID is the learner the CLI and TUI act for.
	UserID string `mapstructure:"user_id"`

	API     APIConfig     `mapstructure:"api"`
	Search  SearchConfig  `mapstructure:"search"`
	Tutor   TutorConfig   `mapstructure:"tutor"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Tracing TracingConfig `mapstructure:"tracing"`
	LLM     llm.Config    `mapstructure:"llm"`
}

// APIConfig describes how the client reaches the Brain AI backend.
type APIConfig struct {
	BaseURL   string               `mapstructure:"base_url"`
	Token     string               `mapstructure:"token"`
	Timeout   time.Duration        `mapstructure:"timeout"` // 0 waits indefinitely
	RateLimit float64              `mapstructure:"rate_limit"` // requests per second, 0 disables
	Burst     int                  `mapstructure:"burst"`
	Retry     brainapi.RetryConfig `mapstructure:"retry"`
	// Record appends every backend call to the local event store.
	Record bool `mapstructure:"record"`
}

type SearchConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type TutorConfig struct {
	MaxHistory int `mapstructure:"max_history"`
	// Persist keeps tutor conversations in the local store across runs.
	Persist bool `mapstructure:"persist"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"` // empty means store.DefaultDBPath()
}

type LogConfig struct {
	Mode       string `mapstructure:"mode"` // dev or prod
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type ServerConfig struct {
	Addr      string          `mapstructure:"addr"`
	Mode      string          `mapstructure:"mode"` // gin mode: debug, release, test
	JWTSecret string          `mapstructure:"jwt_secret"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	// Output is where spans are written; empty means stderr.
	Output string `mapstructure:"output"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Burst:   1,
			Retry:   brainapi.DefaultRetryConfig(),
			Record:  true,
		},
		Search: SearchConfig{Delay: 300 * time.Millisecond},
		Tutor:  TutorConfig{MaxHistory: 50, Persist: true},
		Log: LogConfig{
			Mode:       "dev",
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 20,
				Burst:             40,
			},
		},
		Tracing: TracingConfig{
			ServiceName: "brainkit",
			SampleRatio: 1.0,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load reads configuration from the given file (or brainkit.yaml in the
// working directory and the user config dir when path is empty), then
// applies BRAINKIT_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("brainkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := userConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Fall back to the conventional provider key variables when no
	// provider was configured explicitly.
	if !cfg.LLM.Enabled() {
		if discovered, ok := llm.DiscoverConfig(); ok {
			cfg.LLM = discovered
		}
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// never appear in a config file.
func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"user_id": d.UserID,

		"api.base_url":           d.API.BaseURL,
		"api.token":              d.API.Token,
		"api.timeout":            d.API.Timeout,
		"api.rate_limit":         d.API.RateLimit,
		"api.burst":              d.API.Burst,
		"api.record":             d.API.Record,
		"api.retry.max_attempts": d.API.Retry.MaxAttempts,
		"api.retry.initial_wait": d.API.Retry.InitialWait,
		"api.retry.max_wait":     d.API.Retry.MaxWait,
		"api.retry.multiplier":   d.API.Retry.Multiplier,

		"search.delay":      d.Search.Delay,
		"tutor.max_history": d.Tutor.MaxHistory,
		"tutor.persist":     d.Tutor.Persist,
		"store.path":        d.Store.Path,

		"log.mode":         d.Log.Mode,
		"log.level":        d.Log.Level,
		"log.file":         d.Log.File,
		"log.max_size_mb":  d.Log.MaxSizeMB,
		"log.max_backups":  d.Log.MaxBackups,
		"log.max_age_days": d.Log.MaxAgeDays,

		"server.addr":                           d.Server.Addr,
		"server.mode":                           d.Server.Mode,
		"server.jwt_secret":                     d.Server.JWTSecret,
		"server.rate_limit.requests_per_second": d.Server.RateLimit.RequestsPerSecond,
		"server.rate_limit.burst":               d.Server.RateLimit.Burst,

		"tracing.enabled":      d.Tracing.Enabled,
		"tracing.service_name": d.Tracing.ServiceName,
		"tracing.sample_ratio": d.Tracing.SampleRatio,
		"tracing.output":       d.Tracing.Output,

		"llm.provider":            d.LLM.Provider,
		"llm.timeout":             d.LLM.Timeout,
		"llm.anthropic.api_key":   d.LLM.Anthropic.APIKey,
		"llm.anthropic.model":     d.LLM.Anthropic.Model,
		"llm.openai.api_key":      d.LLM.OpenAI.APIKey,
		"llm.openai.model":        d.LLM.OpenAI.Model,
		"llm.openai.base_url":     d.LLM.OpenAI.BaseURL,
		"llm.gemini.api_key":      d.LLM.Gemini.APIKey,
		"llm.gemini.model":        d.LLM.Gemini.Model,
		"llm.openrouter.api_key":  d.LLM.OpenRouter.APIKey,
		"llm.openrouter.model":    d.LLM.OpenRouter.Model,
		"llm.openrouter.base_url": d.LLM.OpenRouter.BaseURL,
		"llm.retry.max_attempts":  d.LLM.Retry.MaxAttempts,
		"llm.retry.initial_wait":  d.LLM.Retry.InitialWait,
		"llm.retry.max_wait":      d.LLM.Retry.MaxWait,
		"llm.retry.multiplier":    d.LLM.Retry.Multiplier,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.API.Retry.MaxAttempts < 1 {
		return fmt.Errorf("api.retry.max_attempts must be at least 1")
	}
	if c.Search.Delay < 0 {
		return fmt.Errorf("search.delay must not be negative")
	}
	if c.Tutor.MaxHistory < 1 {
		return fmt.Errorf("tutor.max_history must be at least 1")
	}
	switch c.Log.Mode {
	case "dev", "prod":
	default:
		return fmt.Errorf("log.mode must be dev or prod, got %q", c.Log.Mode)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1]")
	}
	return c.LLM.Validate()
}

func userConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "brainkit"), nil
}

// DBPath resolves the event store location.
func (c *Config) DBPath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, store.EnsureDir(c.Store.Path)
	}
	return store.DefaultDBPath()
}
