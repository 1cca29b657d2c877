package ai

import (
	"fmt"
	"time"
)

// ProviderOptions selects and parameterizes a backend. Selection is a pure
// function of configuration: resolve once at startup and reuse the value.
type ProviderOptions struct {
	// Backend is one of "openai", "anthropic", "ollama", "relay".
	Backend string

	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	RelayURL        string

	PollInterval time.Duration
	WaitCeiling  time.Duration
}

// NewProvider resolves the configured backend.
func NewProvider(opts ProviderOptions) (Provider, error) {
	switch opts.Backend {
	case "openai":
		return NewOpenAIProvider(opts.OpenAIAPIKey, opts.Model)
	case "anthropic":
		return NewAnthropicProvider(opts.AnthropicAPIKey, opts.Model)
	case "ollama":
		return NewOllamaProvider(opts.OllamaHost, opts.Model)
	case "relay":
		if opts.RelayURL == "" {
			return nil, fmt.Errorf("relay url required")
		}
		return NewRelayProvider(opts.RelayURL, opts.PollInterval, opts.WaitCeiling), nil
	default:
		return nil, fmt.Errorf("unsupported ai backend: %s", opts.Backend)
	}
}
