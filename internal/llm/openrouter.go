package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider creates a provider for the OpenRouter API, which
// speaks the OpenAI protocol. Model names are vendor-prefixed and passed
// through unchanged, e.g. "anthropic/claude-3-haiku".
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return newOpenAICompatible("openrouter", cfg.APIKey, baseURL, cfg.Model), nil
}
