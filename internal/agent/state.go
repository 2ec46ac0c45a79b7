// Package agent implements the specialist agents and the per-turn state
// they share. A turn's state is created when a user message arrives,
// mutated by every node in the turn graph, and discarded when the final
// reply is produced; durable conversation history lives in the external
// conversation store.
package agent

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/router"
)

// DefaultMaxLoops bounds specialist invocations per turn. The bound is a
// circuit breaker against supervisor↔specialist routing cycles.
const DefaultMaxLoops = 4

// ContextKeyFoundProducts is the shared-context key under which the
// product specialist publishes the products of its latest search.
// The value is a []Product snapshot; last search wins within a turn.
const ContextKeyFoundProducts = "found_products"

// Product is the structured product artifact extracted from search-tool
// output and shared across specialists within a turn.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Brand     string `json:"brand,omitempty"`
	Price     int64  `json:"price,omitempty"`
	Category  string `json:"category,omitempty"`
	Available bool   `json:"is_available,omitempty"`
}

// StateMessage is one turn message with a stable identifier. The
// identifier survives quality-check rewriting, so persistence treats the
// rewritten reply as an update rather than a new message.
type StateMessage struct {
	ID string `json:"id"`
	llm.Message
}

// TurnState is the per-turn working memory threaded through the graph.
type TurnState struct {
	// Messages is the ordered, role-tagged turn transcript.
	Messages []StateMessage

	// Next is the routing decision for the current step.
	Next router.Route

	// Shared is the scratch mapping specialists use to pass discovered
	// data to later nodes. Not persisted beyond the turn.
	Shared map[string]any

	// UserID identifies the user the turn belongs to.
	UserID string

	// AuthToken is the caller's opaque credential, injected into every
	// tool call.
	AuthToken string

	// LoopCount counts specialist invocations this turn; the orchestrator
	// terminates the turn when MaxLoops would be exceeded.
	LoopCount int
	MaxLoops  int
}

// NewTurnState creates turn state seeded with prior history and the new
// user message.
func NewTurnState(userID, authToken string, history []llm.Message, userMessage string) *TurnState {
	state := &TurnState{
		Shared:    make(map[string]any),
		UserID:    userID,
		AuthToken: authToken,
		MaxLoops:  DefaultMaxLoops,
	}
	for _, m := range history {
		state.AppendLLM(m)
	}
	state.Append(llm.RoleUser, userMessage)
	return state
}

// Append adds a new message with a fresh identifier and returns it.
func (s *TurnState) Append(role, content string) *StateMessage {
	return s.AppendLLM(llm.Message{Role: role, Content: content})
}

// AppendLLM adds an llm.Message with a fresh identifier and returns it.
func (s *TurnState) AppendLLM(m llm.Message) *StateMessage {
	s.Messages = append(s.Messages, StateMessage{ID: uuid.NewString(), Message: m})
	return &s.Messages[len(s.Messages)-1]
}

// LLMMessages returns the transcript in provider form.
func (s *TurnState) LLMMessages() []llm.Message {
	out := make([]llm.Message, len(s.Messages))
	for i, m := range s.Messages {
		out[i] = m.Message
	}
	return out
}

// LastAssistant returns the most recent assistant message, or nil.
func (s *TurnState) LastAssistant() *StateMessage {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == llm.RoleAssistant && s.Messages[i].Content != "" {
			return &s.Messages[i]
		}
	}
	return nil
}

// SetFoundProducts publishes a product snapshot to shared context,
// replacing any snapshot from an earlier search in the same turn.
func (s *TurnState) SetFoundProducts(products []Product) {
	if len(products) == 0 {
		return
	}
	s.Shared[ContextKeyFoundProducts] = products
}

// FoundProducts reads the shared product snapshot. Consumers validate
// the shape defensively: the shared mapping is untyped by design, so an
// unexpected value yields nil rather than a panic.
func (s *TurnState) FoundProducts() []Product {
	raw, ok := s.Shared[ContextKeyFoundProducts]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []Product:
		return v
	default:
		// Tolerate JSON-shaped data written by out-of-process producers.
		b, err := json.Marshal(raw)
		if err != nil {
			return nil
		}
		var products []Product
		if err := json.Unmarshal(b, &products); err != nil {
			return nil
		}
		return products
	}
}

// IncrementLoop bumps the loop counter and reports whether the turn is
// still within its bound.
func (s *TurnState) IncrementLoop() bool {
	s.LoopCount++
	max := s.MaxLoops
	if max <= 0 {
		max = DefaultMaxLoops
	}
	return s.LoopCount <= max
}
