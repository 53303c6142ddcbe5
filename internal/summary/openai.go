package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/retry"
)

// OpenAIProvider completes prompts through the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the given API key and model.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return config.ProviderOpenAI }

func (p *OpenAIProvider) Model() string { return p.model }

// Complete sends a single-turn chat completion, retrying rate limits and
// server errors.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Opt(int64(req.MaxTokens))
	}
	params.Temperature = openai.Opt(req.Temperature)

	resp, err := retry.Do(ctx, retry.AIPolicy(), func() (*openai.ChatCompletion, error) {
		resp, err := p.client.Chat.Completions.New(ctx, params)
		return resp, classifyOpenAIError(err)
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyOpenAIError maps SDK errors onto the retry classification,
// honoring Retry-After on rate limits.
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
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
