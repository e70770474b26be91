package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/store"
)

// ErrNoProvider is returned by NewProvider when no provider is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// NewProvider builds the configured provider wrapped as
// retry → logging → provider. A nil eventRepo skips event logging.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	case "none", "":
		return nil, ErrNoProvider
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if eventRepo != nil {
		base = WithLogging(base, eventRepo, logger)
	}
	return WithRetry(base, cfg.Retry), nil
}
