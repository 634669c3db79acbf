package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/novax/sochratic/internal/config"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewProvider builds a Provider from configuration, wrapped with logging
// and retry middleware: caller → retry → logging → vendor.
func NewProvider(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicModel)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "openrouter":
		base, err = NewOpenAIProvider(cfg.OpenRouterKey, cfg.OpenRouterModel, openRouterBaseURL)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, log), DefaultRetryConfig()), nil
}
