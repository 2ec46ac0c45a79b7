package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a scripted Provider for testing. Responses are returned
// in the order they were queued; every request is recorded for inspection.
type MockProvider struct {
	mu        sync.Mutex
	responses []mockStep
	requests  []*ChatRequest
	fallback  *ChatResponse
}

type mockStep struct {
	resp *ChatResponse
	err  error
}

// NewMockProvider creates an empty mock. Without queued responses it
// returns a static "ok" completion.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		fallback: &ChatResponse{Content: "ok"},
	}
}

// WithResponse queues a completion to return.
func (m *MockProvider) WithResponse(resp *ChatResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockStep{resp: resp})
	return m
}

// WithContent queues a plain-text completion.
func (m *MockProvider) WithContent(content string) *MockProvider {
	return m.WithResponse(&ChatResponse{Content: content})
}

// WithToolCall queues a completion that requests a single tool call.
func (m *MockProvider) WithToolCall(id, name, arguments string) *MockProvider {
	return m.WithResponse(&ChatResponse{
		ToolCalls: []ToolCall{{ID: id, Name: name, Arguments: arguments}},
	})
}

// WithError queues a provider error.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockStep{err: err})
	return m
}

// WithFallback sets the response used once the queue is exhausted.
func (m *MockProvider) WithFallback(resp *ChatResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = resp
	return m
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return "mock"
}

// Chat implements Provider.
func (m *MockProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.responses) == 0 {
		if m.fallback != nil {
			return m.fallback, nil
		}
		return nil, fmt.Errorf("mock provider: no responses queued")
	}
	step := m.responses[0]
	m.responses = m.responses[1:]
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []*ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of Chat invocations.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
