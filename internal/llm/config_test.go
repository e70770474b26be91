package llm

import "testing"

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"none needs no key", Config{Provider: "none"}, false},
		{"empty needs no key", Config{}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	if DefaultConfig().Enabled() {
		t.Error("default config should not select a provider")
	}
	if !(Config{Provider: "mock"}).Enabled() {
		t.Error("mock should count as enabled")
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("discovered a provider with no keys set")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-oai" {
		t.Fatalf("got %q ok=%v, want openai first", cfg.Provider, ok)
	}
}
