package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGenerator implements Generator with scripted responses for testing.
// Responses are returned in order; when the script is exhausted it falls
// back to a deterministic draft derived from the request.
type MockGenerator struct {
	mu        sync.Mutex
	responses []Draft
	errs      []error
	index     int

	// Requests records every request received, in order.
	Requests []DraftRequest
}

// NewMockGenerator creates a mock drafting provider with no scripted
// responses. Use ScriptDraft and ScriptError to queue behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// ScriptDraft queues a draft to return for a future call.
func (m *MockGenerator) ScriptDraft(html string) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, Draft{HTML: html, Model: "mock"})
	m.errs = append(m.errs, nil)
	return m
}

// ScriptError queues an error to return for a future call.
func (m *MockGenerator) ScriptError(err error) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, Draft{})
	m.errs = append(m.errs, err)
	return m
}

// Name returns "mock" as the provider identifier.
func (m *MockGenerator) Name() string {
	return "mock"
}

// GenerateDraft implements Generator. It returns the next scripted
// response, or a deterministic draft when the script is exhausted.
func (m *MockGenerator) GenerateDraft(ctx context.Context, req DraftRequest) (Draft, error) {
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.index < len(m.responses) {
		draft, err := m.responses[m.index], m.errs[m.index]
		m.index++
		if err != nil {
			return Draft{}, err
		}
		return draft, nil
	}

	return Draft{
		HTML:  fmt.Sprintf("<p>%s</p>", req.Instructions),
		Model: "mock",
	}, nil
}

// MockDeliverer implements Deliverer by recording deliveries in memory.
type MockDeliverer struct {
	mu sync.Mutex

	// Err, when set, is returned by every delivery attempt.
	Err error

	// Sent records every email delivered, in order.
	Sent []Email

	nextID int
}

// NewMockDeliverer creates a mock delivery provider.
func NewMockDeliverer() *MockDeliverer {
	return &MockDeliverer{}
}

// DeliverEmail implements Deliverer. It records the email and returns a
// synthetic receipt, or Err when one is configured.
func (m *MockDeliverer) DeliverEmail(ctx context.Context, email Email) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return Receipt{}, m.Err
	}

	m.nextID++
	m.Sent = append(m.Sent, email)
	return Receipt{
		MessageID: fmt.Sprintf("mock-%d", m.nextID),
		SentAt:    time.Now(),
	}, nil
}
