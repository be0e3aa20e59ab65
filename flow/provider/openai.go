package provider

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIGenerator implements Generator using OpenAI's chat completion API.
// It wraps the official OpenAI Go SDK.
//
// OpenAIGenerator is safe for concurrent use after creation.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a new GPT-backed drafting provider.
//
// An empty model selects DefaultOpenAIModel.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIGenerator{
		client: &client,
		model:  model,
	}, nil
}

// Name returns "openai" as the provider identifier.
func (p *OpenAIGenerator) Name() string {
	return "openai"
}

// GenerateDraft implements Generator by calling the chat completion API
// with the drafting prompt and returning the response as the HTML draft.
//
// The method respects context cancellation and timeouts.
func (p *OpenAIGenerator) GenerateDraft(ctx context.Context, req DraftRequest) (Draft, error) {
	// Check context before making an expensive API call
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}

	prompt := buildDraftPrompt(req)

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
	})
	if err != nil {
		return Draft{}, err
	}

	if len(completion.Choices) == 0 {
		return Draft{}, errors.New("no response from OpenAI API")
	}

	choice := completion.Choices[0]
	return Draft{
		HTML:      stripCodeFences(choice.Message.Content),
		Model:     p.model,
		Reasoning: choice.FinishReason,
	}, nil
}
