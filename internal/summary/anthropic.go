package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/retry"
)

// AnthropicProvider completes prompts through the Anthropic messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider for the given API key and model.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		client: &client,
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string { return config.ProviderAnthropic }

func (p *AnthropicProvider) Model() string { return p.model }

// Complete sends a single-turn message, retrying rate limits and server
// errors.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := retry.Do(ctx, retry.AIPolicy(), func() (*anthropic.Message, error) {
		resp, err := p.client.Messages.New(ctx, params)
		return resp, classifyAnthropicError(err)
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.AsText().Text)
		}
	}
	return strings.TrimSpace(content.String()), nil
}

// classifyAnthropicError maps SDK errors onto the retry classification,
// honoring Retry-After on rate limits.
func classifyAnthropicError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 && apiErr.Response != nil {
			if d := retry.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After")); d > 0 {
				return retry.After(err, d)
			}
		}
		return retry.ClassifyHTTP(apiErr.StatusCode, err)
	}
	return retry.ClassifyError(err)
}
