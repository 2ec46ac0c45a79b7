package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/auth"
	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/tools"
)

// maxToolRounds bounds the model↔tool loop inside a single specialist
// invocation. A model that keeps requesting tools past the bound gets a
// final no-tools completion instead.
const maxToolRounds = 5

// apologyFallback is the fixed user-facing reply when a specialist fails
// unrecoverably. Shared context is preserved so the next turn can still
// use earlier discoveries.
const apologyFallback = "Xin lỗi chị, em đang gặp chút trục trặc kỹ thuật. Chị vui lòng thử lại sau một chút nhé ạ!"

// Artifact is the record of one tool invocation made during a turn.
type Artifact struct {
	ToolName   string
	ToolCallID string
	Data       string
	Success    bool
}

// Result is what a specialist hands back to the orchestrator.
type Result struct {
	Reply     *StateMessage
	Artifacts []Artifact
	ToolCalls int
}

// Specialist is one routed agent node.
type Specialist interface {
	Name() string
	Respond(ctx context.Context, state *TurnState) (*Result, error)
}

// argRewriter lets a specialist adjust tool arguments before dispatch.
// Returning an error vetoes the call; the error text is fed back to the
// model as the tool result so it can recover or decline.
type argRewriter func(name string, args map[string]any) (map[string]any, error)

// runToolLoop drives the bounded completion/tool cycle shared by the
// tool-using specialists. It appends assistant and tool messages to the
// turn state as it goes and returns the final assistant reply plus the
// artifacts produced along the way.
func runToolLoop(ctx context.Context, provider llm.Provider, registry *tools.Registry, state *TurnState, systemPrompt string, schemas []llm.ToolSchema, rewrite argRewriter, log zerolog.Logger) (*Result, error) {
	ctx = auth.WithToken(ctx, state.AuthToken)
	res := &Result{}

	for round := 0; ; round++ {
		req := &llm.ChatRequest{
			SystemPrompt: systemPrompt,
			Messages:     state.LLMMessages(),
			Tools:        schemas,
		}
		final := round >= maxToolRounds
		if final {
			// Force a textual answer out of whatever was gathered.
			req.Tools = nil
		}

		resp, err := provider.Chat(ctx, req)
		if err != nil {
			return res, fmt.Errorf("chat completion: %w", err)
		}

		// The final round returns unconditionally: a provider that keeps
		// requesting tools past the bound gets its calls dropped, not
		// executed, so the loop always terminates.
		if final || !resp.HasToolCalls() {
			if final && resp.HasToolCalls() {
				log.Warn().Int("round", round).Msg("tool round bound reached, dropping further tool calls")
			}
			reply := state.Append(llm.RoleAssistant, stripCodeFences(resp.Content))
			res.Reply = reply
			return res, nil
		}

		state.AppendLLM(llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})

		for _, call := range resp.ToolCalls {
			args := map[string]any{}
			if call.Arguments != "" {
				if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
					log.Warn().Str("tool", call.Name).Err(err).Msg("tool arguments not valid JSON")
					args = map[string]any{}
				}
			}

			if rewrite != nil {
				rewritten, rerr := rewrite(call.Name, args)
				if rerr != nil {
					log.Warn().Str("tool", call.Name).Err(rerr).Msg("tool call vetoed")
					artifact := Artifact{
						ToolName:   call.Name,
						ToolCallID: call.ID,
						Data:       fmt.Sprintf(`{"error": %q}`, rerr.Error()),
					}
					res.Artifacts = append(res.Artifacts, artifact)
					state.AppendLLM(llm.Message{Role: llm.RoleTool, Content: artifact.Data, ToolCallID: call.ID})
					continue
				}
				args = rewritten
			}

			res.ToolCalls++
			out, callErr := registry.Invoke(ctx, call.Name, args)
			artifact := Artifact{ToolName: call.Name, ToolCallID: call.ID, Data: out, Success: callErr == nil}
			if callErr != nil {
				log.Warn().Str("tool", call.Name).Err(callErr).Msg("tool call failed")
				artifact.Data = fmt.Sprintf(`{"error": %q}`, callErr.Error())
			}
			res.Artifacts = append(res.Artifacts, artifact)

			state.AppendLLM(llm.Message{
				Role:       llm.RoleTool,
				Content:    artifact.Data,
				ToolCallID: call.ID,
			})
		}
	}
}

// stripCodeFences removes a wrapping markdown code fence from a model
// reply. Chat replies are rendered as plain text, so a fenced answer
// reads as noise to the user.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	inner := strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(inner, "\n"); idx >= 0 {
		// Drop the language tag line.
		inner = inner[idx+1:]
	} else {
		inner = strings.TrimLeft(inner, "`")
	}
	inner = strings.TrimSuffix(strings.TrimSpace(inner), "```")
	return strings.TrimSpace(inner)
}

// toolSchemas converts registry descriptors into provider tool schemas.
func toolSchemas(descriptors []tools.Descriptor) []llm.ToolSchema {
	if len(descriptors) == 0 {
		return nil
	}
	schemas := make([]llm.ToolSchema, 0, len(descriptors))
	for _, d := range descriptors {
		schemas = append(schemas, llm.ToolSchema{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  map[string]any{"type": "object", "additionalProperties": true},
		})
	}
	return schemas
}
