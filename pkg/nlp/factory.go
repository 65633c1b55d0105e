package nlp

import (
	"fmt"
	"log/slog"
)

// NewClient resolves the generation capability from configuration, once
// at startup. It returns (nil, nil) when no provider is configured; the
// capability is then Unavailable and callers use fact-based answers,
// rather than probing per call.
func NewClient(config *Config, cbConfig CircuitBreakerConfig, logger *slog.Logger) (Client, error) {
	if config == nil || config.Provider == "" {
		return nil, nil
	}

	var (
		client Client
		err    error
	)
	switch config.Provider {
	case "gemini":
		if config.APIKey == "" {
			// No key means the capability is absent, not broken.
			return nil, nil
		}
		client = NewGeminiClient(config)
	case "openai":
		if config.APIKey == "" && config.BaseURL == "" {
			return nil, nil
		}
		client, err = NewOpenAIClient(config)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", config.Provider)
	}

	if cbConfig.Enabled {
		client = NewCircuitBreakerClient(client, cbConfig, logger)
	}
	return client, nil
}
