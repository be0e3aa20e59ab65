package client

import (
	"context"

	"github.com/dshills/mailflow-go/flow/provider"
)

// ProviderDrafting adapts a provider.Generator to the Drafting interface,
// so an in-process LLM provider can stand in for an HTTP drafting service.
type ProviderDrafting struct {
	gen provider.Generator
}

// NewProviderDrafting wraps gen as a Drafting collaborator.
func NewProviderDrafting(gen provider.Generator) *ProviderDrafting {
	return &ProviderDrafting{gen: gen}
}

// RequestDraft implements Drafting.
func (d *ProviderDrafting) RequestDraft(ctx context.Context, req DraftRequest) (DraftResult, error) {
	draft, err := d.gen.GenerateDraft(ctx, provider.DraftRequest{
		Instructions: req.Instructions,
		PriorHTML:    req.PriorHTML,
		Subject:      req.Subject,
	})
	if err != nil {
		return DraftResult{}, err
	}
	return DraftResult{
		HTML:      draft.HTML,
		Model:     draft.Model,
		Reasoning: draft.Reasoning,
	}, nil
}

// ProviderDelivery adapts a provider.Deliverer to the Delivery interface.
type ProviderDelivery struct {
	del provider.Deliverer
}

// NewProviderDelivery wraps del as a Delivery collaborator.
func NewProviderDelivery(del provider.Deliverer) *ProviderDelivery {
	return &ProviderDelivery{del: del}
}

// RequestDelivery implements Delivery.
func (d *ProviderDelivery) RequestDelivery(ctx context.Context, req DeliveryRequest) (DeliveryResult, error) {
	receipt, err := d.del.DeliverEmail(ctx, provider.Email{
		Subject:     req.Subject,
		HTML:        req.HTML,
		SenderEmail: req.SenderEmail,
		SenderName:  req.SenderName,
		To:          req.To,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
	})
	if err != nil {
		return DeliveryResult{}, err
	}
	return DeliveryResult{MessageID: receipt.MessageID, SentAt: receipt.SentAt}, nil
}
