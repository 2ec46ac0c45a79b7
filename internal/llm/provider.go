// Package llm provides the completion-capability boundary for GlowBot.
// The rest of the system treats a Provider as a black box: given messages
// and optional tool schemas, produce a free-text or structured completion.
package llm

import (
	"context"
	"io"
)

// MaxErrorBodySize limits how much error response body we read (1MB).
// This prevents memory exhaustion from malformed error responses.
const MaxErrorBodySize = 1 * 1024 * 1024

// readLimitedBody reads up to maxBytes from r, returning the bytes read.
func readLimitedBody(r io.Reader, maxBytes int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBytes))
}

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Provider defines the interface for completion capabilities.
type Provider interface {
	// Chat sends a conversation and returns the completion.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider identifier.
	Name() string
}

// Message represents a conversation message.
type Message struct {
	// Role is one of the Role* constants.
	Role string `json:"role"`

	// Content is the message text. May be empty for tool-call messages.
	Content string `json:"content"`

	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolCalls are tool invocations requested by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON object
}

// ToolSchema describes a callable tool to the model.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"` // JSON schema
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	// Model to use (provider-specific). Empty uses the provider default.
	Model string `json:"model,omitempty"`

	// SystemPrompt sets the model's behavior.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Messages in the conversation.
	Messages []Message `json:"messages"`

	// Tools the model may call.
	Tools []ToolSchema `json:"tools,omitempty"`

	// Temperature controls randomness (0.0-1.0).
	Temperature float64 `json:"temperature"`

	// MaxTokens limits response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// JSONMode forces the model to emit a single JSON object.
	JSONMode bool `json:"json_mode,omitempty"`
}

// ChatResponse contains the model's completion.
type ChatResponse struct {
	// Content is the free-text reply. Empty when the model only
	// requested tool calls.
	Content string `json:"content"`

	// ToolCalls requested by the model, in order.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Model that produced the completion.
	Model string `json:"model,omitempty"`

	// TokensUsed is the total token count, when the provider reports it.
	TokensUsed int `json:"tokens_used,omitempty"`
}

// HasToolCalls reports whether the model requested at least one tool call.
func (r *ChatResponse) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}
