// Package client defines the collaborator interfaces the workflow engine
// calls out to: a drafting collaborator that produces HTML documents, a
// review collaborator that collects a human decision, and a delivery
// collaborator that dispatches approved documents.
//
// HTTP implementations talk JSON to external services; provider-backed
// adapters wrap the in-process provider variants. The engine only ever
// sees the interfaces.
package client

import (
	"context"
	"fmt"
	"time"
)

// StatusError reports a collaborator HTTP response outside the 2xx range.
type StatusError struct {
	// Collaborator names the collaborator that failed ("drafting",
	// "review", "delivery").
	Collaborator string

	// Status is the HTTP status code received.
	Status int

	// Body is the response body, truncated for diagnostics.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s collaborator returned status %d: %s", e.Collaborator, e.Status, e.Body)
}

// DraftRequest asks the drafting collaborator for an HTML document.
type DraftRequest struct {
	InstanceID   string `json:"instance_id"`
	Username     string `json:"username"`
	Instructions string `json:"instructions"`
	PriorHTML    string `json:"prior_html,omitempty"`
	Subject      string `json:"subject,omitempty"`
	TraceID      string `json:"trace_id,omitempty"`
}

// DraftResult is the drafting collaborator's response.
type DraftResult struct {
	HTML      string `json:"html"`
	Model     string `json:"model,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Drafting produces HTML drafts for an instance.
type Drafting interface {
	RequestDraft(ctx context.Context, req DraftRequest) (DraftResult, error)
}

// ReviewRequest submits a draft to the review collaborator.
//
// LoopIndex is zero-based; the first review of an instance carries 0.
type ReviewRequest struct {
	InstanceID string
	Username   string
	HTML       string
	Config     map[string]interface{}
	LoopIndex  int
	TraceID    string
}

// ReviewOutcome is the normalized result of a review submission.
//
// Accepted means the collaborator took custody of the draft and will call
// back with a decision later. It does NOT mean the draft was approved.
type ReviewOutcome struct {
	Accepted    bool
	StatusCode  int
	ErrorDetail string
	Note        string
}

// Review submits drafts for asynchronous human review.
type Review interface {
	RequestReview(ctx context.Context, req ReviewRequest) (ReviewOutcome, error)
}

// DeliveryRequest asks the delivery collaborator to dispatch a document.
type DeliveryRequest struct {
	InstanceID  string   `json:"instance_id"`
	Username    string   `json:"username"`
	HTML        string   `json:"html"`
	Subject     string   `json:"subject"`
	SenderEmail string   `json:"sender_email"`
	SenderName  string   `json:"sender_name,omitempty"`
	To          []string `json:"to"`
	Cc          []string `json:"cc,omitempty"`
	Bcc         []string `json:"bcc,omitempty"`
	TraceID     string   `json:"trace_id,omitempty"`
}

// DeliveryResult is the delivery collaborator's receipt.
type DeliveryResult struct {
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// Delivery dispatches approved documents to their recipients.
type Delivery interface {
	RequestDelivery(ctx context.Context, req DeliveryRequest) (DeliveryResult, error)
}
