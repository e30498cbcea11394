package ai

import (
	"context"
	"fmt"
	"strings"
)

// NewGenerator picks a backend from the configuration. An explicit provider
// wins; otherwise Gemini is preferred when both keys are present.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	provider := Provider(strings.ToLower(strings.TrimSpace(string(cfg.Provider))))
	if provider == "" {
		switch {
		case strings.TrimSpace(cfg.GeminiAPIKey) != "":
			provider = ProviderGemini
		case strings.TrimSpace(cfg.OpenAIAPIKey) != "":
			provider = ProviderOpenAI
		default:
			return nil, ErrDisabled
		}
	}

	switch provider {
	case ProviderGemini:
		gen, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case ProviderOpenAI:
		gen, err := NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
