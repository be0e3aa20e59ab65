package provider

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-sonnet-20241022"

// AnthropicGenerator implements Generator using Anthropic's Claude API.
// It wraps the official anthropic-sdk-go client, formats drafting requests
// into prompts, and returns the generated HTML.
//
// AnthropicGenerator is safe for concurrent use after creation. The
// underlying SDK client handles concurrent requests safely.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicGenerator creates a new Claude-backed drafting provider.
//
// The API key can be obtained from https://console.anthropic.com/.
// An empty model selects DefaultAnthropicModel.
func NewAnthropicGenerator(apiKey, model string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicGenerator{
		client: &client,
		model:  model,
	}, nil
}

// Name returns "anthropic" as the provider identifier.
func (a *AnthropicGenerator) Name() string {
	return "anthropic"
}

// GenerateDraft implements Generator by calling Claude with the drafting
// prompt and returning the response text as the HTML draft.
func (a *AnthropicGenerator) GenerateDraft(ctx context.Context, req DraftRequest) (Draft, error) {
	prompt := buildDraftPrompt(req)

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Draft{}, err
	}

	// Extract text content from the message
	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}
	if responseText == "" {
		return Draft{}, errors.New("empty response from Anthropic API")
	}

	return Draft{
		HTML:      stripCodeFences(responseText),
		Model:     a.model,
		Reasoning: string(message.StopReason),
	}, nil
}
