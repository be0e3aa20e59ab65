// Package provider defines the capability interfaces behind the drafting
// and delivery collaborators, with a closed set of concrete variants.
//
// Provider selection happens once, at construction time, from explicit
// configuration — the workflow engine never branches on a provider name.
// Generators turn instructions (plus an optional prior document) into an
// HTML draft; Deliverers dispatch an approved HTML document to recipients.
//
// Available generators:
//   - Anthropic (Claude): detailed drafting, long context
//   - OpenAI (GPT): general-purpose drafting
//   - Google (Gemini): fast drafting
//   - Mock: scripted responses for tests
//
// Available deliverers:
//   - SMTP: direct submission to a mail relay
//   - Mock: recorded deliveries for tests
package provider

import (
	"context"
	"fmt"
	"time"
)

// DraftRequest carries the inputs for one drafting invocation.
type DraftRequest struct {
	// Instructions is the authoritative drafting instruction text.
	Instructions string

	// PriorHTML is the previous draft to revise. Empty on the first
	// generation of an instance.
	PriorHTML string

	// Subject is the email subject the draft is written for.
	Subject string
}

// Draft is the normalized result of a drafting invocation.
type Draft struct {
	// HTML is the generated document body.
	HTML string

	// Model identifies the model that produced the draft.
	Model string

	// Reasoning carries the provider's reported finish detail
	// (stop reason, finish reason). May be empty.
	Reasoning string
}

// Generator produces HTML drafts from instructions.
//
// Implementations should respect context cancellation and translate
// provider-specific errors into plain errors; the engine treats any
// Generator error as a recoverable drafting failure.
type Generator interface {
	GenerateDraft(ctx context.Context, req DraftRequest) (Draft, error)
}

// Email is an approved document ready for dispatch.
type Email struct {
	Subject     string
	HTML        string
	SenderEmail string
	SenderName  string
	To          []string
	Cc          []string
	Bcc         []string
}

// Receipt identifies a completed delivery.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Deliverer dispatches an approved HTML document to its recipients.
type Deliverer interface {
	DeliverEmail(ctx context.Context, email Email) (Receipt, error)
}

// GeneratorConfig selects and configures a drafting provider.
type GeneratorConfig struct {
	// Name selects the variant: "anthropic", "openai", "google" or "mock".
	Name string

	// APIKey authenticates against the provider.
	APIKey string

	// Model optionally overrides the variant's default model.
	Model string
}

// NewGenerator constructs the configured Generator variant.
//
// This is the single selection point mandated for provider polymorphism;
// callers hold the returned interface and never switch on the name again.
func NewGenerator(cfg GeneratorConfig) (Generator, error) {
	switch cfg.Name {
	case "anthropic":
		return NewAnthropicGenerator(cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model)
	case "google":
		return NewGoogleGenerator(cfg.APIKey, cfg.Model)
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown drafting provider: %q", cfg.Name)
	}
}
