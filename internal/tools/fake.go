package tools

import (
	"context"
	"fmt"
	"sync"
)

// FakeProvider is an in-memory capability provider for tests.
type FakeProvider struct {
	mu        sync.Mutex
	tools     []RawTool
	handlers  map[string]func(ctx context.Context, args map[string]any) (string, error)
	listErr   error
	listCalls int
	calls     []FakeCall
	closed    int
}

// FakeCall records one tool invocation.
type FakeCall struct {
	Name string
	Args map[string]any
}

// NewFakeProvider creates an empty fake provider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		handlers: make(map[string]func(ctx context.Context, args map[string]any) (string, error)),
	}
}

// WithTool registers a tool and its handler.
func (f *FakeProvider) WithTool(name, description string, handler func(ctx context.Context, args map[string]any) (string, error)) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = append(f.tools, RawTool{Name: name, Description: description})
	if handler != nil {
		f.handlers[name] = handler
	}
	return f
}

// WithListError makes ListTools fail with err.
func (f *FakeProvider) WithListError(err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
	return f
}

// ListTools implements Provider.
func (f *FakeProvider) ListTools(ctx context.Context) ([]RawTool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]RawTool, len(f.tools))
	copy(out, f.tools)
	return out, nil
}

// Call implements Provider.
func (f *FakeProvider) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	f.mu.Lock()
	handler, ok := f.handlers[name]
	f.calls = append(f.calls, FakeCall{Name: name, Args: args})
	f.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return handler(ctx, args)
}

// Close implements Provider.
func (f *FakeProvider) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// ListCalls returns how many times tools were discovered.
func (f *FakeProvider) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// Calls returns the recorded tool invocations.
func (f *FakeProvider) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CloseCount returns how many times Close was called.
func (f *FakeProvider) CloseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
