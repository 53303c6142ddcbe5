package summary

import (
	"context"
	"fmt"

	"github.com/teemow/mailbrief/internal/config"
)

// CompletionRequest is a single-turn text completion request, the only
// shape the briefing pipeline needs.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider abstracts the LLM backend behind a minimal completion API.
type Provider interface {
	// Complete sends the request and returns the model's text response.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name identifies the provider in logs and status output.
	Name() string
	// Model returns the configured model name.
	Model() string
}

// NewProvider constructs the provider selected by the configuration.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AIProvider)
	}
}
