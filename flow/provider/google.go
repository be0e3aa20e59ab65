package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGoogleModel is used when no model is configured.
const DefaultGoogleModel = "gemini-1.5-flash"

// GoogleGenerator implements Generator using Google's Gemini API.
// It wraps the official generative-ai-go client.
type GoogleGenerator struct {
	client *genai.Client
	model  string
}

// NewGoogleGenerator creates a new Gemini-backed drafting provider.
//
// An empty model selects DefaultGoogleModel.
func NewGoogleGenerator(apiKey, model string) (*GoogleGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if model == "" {
		model = DefaultGoogleModel
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	return &GoogleGenerator{
		client: client,
		model:  model,
	}, nil
}

// Close closes the underlying Gemini client and releases resources.
// Should be called when the generator is no longer needed.
func (g *GoogleGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Name returns "google" as the provider identifier.
func (g *GoogleGenerator) Name() string {
	return "google"
}

// GenerateDraft implements Generator by calling Gemini with the drafting
// prompt and returning the response text as the HTML draft.
func (g *GoogleGenerator) GenerateDraft(ctx context.Context, req DraftRequest) (Draft, error) {
	prompt := buildDraftPrompt(req)

	model := g.client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Draft{}, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return Draft{}, errors.New("empty response from Google API")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Draft{}, errors.New("empty response from Google API")
	}

	var responseText string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText += string(text)
		}
	}
	if responseText == "" {
		return Draft{}, errors.New("empty response from Google API")
	}

	return Draft{
		HTML:      stripCodeFences(responseText),
		Model:     g.model,
		Reasoning: candidate.FinishReason.String(),
	}, nil
}
