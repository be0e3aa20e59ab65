package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 512

// httpPostJSON sends a JSON POST and returns the status code and body.
func httpPostJSON(ctx context.Context, hc *http.Client, url string, payload interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

// HTTPDrafting is a Drafting implementation backed by an HTTP service.
type HTTPDrafting struct {
	url    string
	client *http.Client
}

// NewHTTPDrafting creates a drafting client that POSTs JSON to url.
// A nil httpClient selects a client with a 60 second timeout.
func NewHTTPDrafting(url string, httpClient *http.Client) *HTTPDrafting {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPDrafting{url: url, client: httpClient}
}

// RequestDraft implements Drafting.
func (c *HTTPDrafting) RequestDraft(ctx context.Context, req DraftRequest) (DraftResult, error) {
	status, body, err := httpPostJSON(ctx, c.client, c.url, req)
	if err != nil {
		return DraftResult{}, err
	}
	if status < 200 || status >= 300 {
		return DraftResult{}, &StatusError{Collaborator: "drafting", Status: status, Body: truncate(body)}
	}

	var result DraftResult
	if err := json.Unmarshal(body, &result); err != nil {
		return DraftResult{}, fmt.Errorf("failed to decode draft response: %w", err)
	}
	if result.HTML == "" {
		return DraftResult{}, fmt.Errorf("drafting collaborator returned an empty draft")
	}
	return result, nil
}

// reviewWire is the JSON body sent to the review collaborator. The loop
// counter on the wire is one-based.
type reviewWire struct {
	InstanceID string                 `json:"instance_id"`
	Username   string                 `json:"username"`
	HTML       string                 `json:"html"`
	Config     map[string]interface{} `json:"config,omitempty"`
	Loop       int                    `json:"loop"`
	TraceID    string                 `json:"trace_id,omitempty"`
}

type reviewWireResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Note   string `json:"note"`
}

// HTTPReview is a Review implementation backed by an HTTP service.
type HTTPReview struct {
	url    string
	client *http.Client
}

// NewHTTPReview creates a review client that POSTs JSON to url.
// A nil httpClient selects a client with a 30 second timeout.
func NewHTTPReview(url string, httpClient *http.Client) *HTTPReview {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPReview{url: url, client: httpClient}
}

// RequestReview implements Review.
//
// The submission is accepted only when the collaborator answers 2xx with
// no error detail and a status other than "no review configured" or
// "skip". A transport failure is returned as an error; a non-2xx answer
// or a declining body is a non-accepted outcome, not an error.
func (c *HTTPReview) RequestReview(ctx context.Context, req ReviewRequest) (ReviewOutcome, error) {
	wire := reviewWire{
		InstanceID: req.InstanceID,
		Username:   req.Username,
		HTML:       req.HTML,
		Config:     req.Config,
		Loop:       req.LoopIndex + 1,
		TraceID:    req.TraceID,
	}

	status, body, err := httpPostJSON(ctx, c.client, c.url, wire)
	if err != nil {
		return ReviewOutcome{}, err
	}
	if status < 200 || status >= 300 {
		return ReviewOutcome{
			Accepted:    false,
			StatusCode:  status,
			ErrorDetail: truncate(body),
		}, nil
	}

	var resp reviewWireResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return ReviewOutcome{}, fmt.Errorf("failed to decode review response: %w", err)
		}
	}

	outcome := ReviewOutcome{
		StatusCode:  status,
		ErrorDetail: resp.Error,
		Note:        resp.Note,
	}
	switch {
	case resp.Error != "":
		outcome.Accepted = false
	case resp.Status == "no review configured" || resp.Status == "skip":
		outcome.Accepted = false
		if outcome.Note == "" {
			outcome.Note = resp.Status
		}
	default:
		outcome.Accepted = true
	}
	return outcome, nil
}

// HTTPDelivery is a Delivery implementation backed by an HTTP service.
type HTTPDelivery struct {
	url    string
	client *http.Client
}

// NewHTTPDelivery creates a delivery client that POSTs JSON to url.
// A nil httpClient selects a client with a 30 second timeout.
func NewHTTPDelivery(url string, httpClient *http.Client) *HTTPDelivery {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPDelivery{url: url, client: httpClient}
}

// RequestDelivery implements Delivery.
func (c *HTTPDelivery) RequestDelivery(ctx context.Context, req DeliveryRequest) (DeliveryResult, error) {
	status, body, err := httpPostJSON(ctx, c.client, c.url, req)
	if err != nil {
		return DeliveryResult{}, err
	}
	if status < 200 || status >= 300 {
		return DeliveryResult{}, &StatusError{Collaborator: "delivery", Status: status, Body: truncate(body)}
	}

	var result DeliveryResult
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return DeliveryResult{}, fmt.Errorf("failed to decode delivery response: %w", err)
		}
	}
	if result.SentAt.IsZero() {
		result.SentAt = time.Now()
	}
	return result, nil
}
