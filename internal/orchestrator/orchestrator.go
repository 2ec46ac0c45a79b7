// Package orchestrator runs the per-turn graph: supervisor routing,
// specialist execution, quality-check formatting, and preference
// auto-update. One turn in, one TurnResult out; errors never escape to
// the caller as panics or returned failures.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/agent"
	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/prefs"
	"github.com/vbeauty-labs/glowbot/internal/router"
)

// panicApology is the reply of last resort, used when a node panics.
const panicApology = "Xin lỗi chị, hệ thống đang gặp sự cố. Chị vui lòng quay lại sau ít phút nhé ạ!"

// loopApology ends a turn the routing bound cut short.
const loopApology = "Xin lỗi chị, em chưa xử lý xong yêu cầu này. Chị thử diễn đạt lại giúp em nhé ạ!"

// TurnMetadata summarizes a turn for the caller's logging layer.
type TurnMetadata struct {
	ToolCallsCount int    `json:"tool_calls_count"`
	HasArtifacts   bool   `json:"has_artifacts"`
	Error          string `json:"error,omitempty"`
}

// TurnResult is the in-process boundary returned to the surrounding
// service after a turn completes.
type TurnResult struct {
	Content   string           `json:"content"`
	Artifacts []agent.Artifact `json:"artifacts,omitempty"`
	Metadata  TurnMetadata     `json:"metadata"`

	// Specialist is the node that produced the reply, for the caller to
	// feed back as LastSpecialist on the next turn. Zero when the turn
	// ended without a specialist reply.
	Specialist router.Route `json:"-"`
}

// TurnInput carries one user message plus its conversation context.
type TurnInput struct {
	UserID    string
	AuthToken string
	History   []llm.Message
	Message   string

	// LastSpecialist is the specialist that answered the previous turn,
	// tracked by the caller across turns for routing continuity. Zero
	// value means no specialist has taken the floor yet.
	LastSpecialist router.Route
}

// Orchestrator wires the supervisor, the specialists, the formatter, and
// the preference engine into the turn graph.
type Orchestrator struct {
	supervisor *router.Supervisor
	product    agent.Specialist
	order      agent.Specialist
	general    agent.Specialist
	formatter  *Formatter
	inference  *prefs.Inference
	maxLoops   int
	log        zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxLoops overrides the specialist invocation bound per turn.
func WithMaxLoops(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxLoops = n
		}
	}
}

// WithInference enables preference auto-update from user messages.
func WithInference(inf *prefs.Inference) Option {
	return func(o *Orchestrator) { o.inference = inf }
}

// New assembles the turn graph.
func New(supervisor *router.Supervisor, product, order, general agent.Specialist, formatter *Formatter, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		supervisor: supervisor,
		product:    product,
		order:      order,
		general:    general,
		formatter:  formatter,
		maxLoops:   agent.DefaultMaxLoops,
		log:        log.With().Str("component", "orchestrator").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleTurn processes one user message through the graph and returns
// the final reply. It never panics and never returns an error: every
// failure path collapses into an apologetic TurnResult.
func (o *Orchestrator) HandleTurn(ctx context.Context, input TurnInput) (result *TurnResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Interface("panic", r).Str("user_id", input.UserID).Msg("turn panicked")
			result = &TurnResult{
				Content:  panicApology,
				Metadata: TurnMetadata{Error: fmt.Sprintf("panic: %v", r)},
			}
		}
	}()

	// Preference inference is fire-and-observe: it never blocks or fails
	// the turn, only enriches future ones.
	if o.inference != nil {
		changed, err := o.inference.Apply(ctx, input.UserID, input.Message)
		switch {
		case err != nil:
			o.log.Warn().Err(err).Str("user_id", input.UserID).Msg("preference update failed")
		case len(changed) > 0:
			o.log.Info().Str("user_id", input.UserID).Strs("fields", changed).Msg("preferences updated")
		}
	}

	state := agent.NewTurnState(input.UserID, input.AuthToken, input.History, input.Message)
	state.MaxLoops = o.maxLoops

	return o.runGraph(ctx, state, input.LastSpecialist)
}

func (o *Orchestrator) runGraph(ctx context.Context, state *agent.TurnState, lastSpecialist router.Route) *TurnResult {
	result := &TurnResult{}

	for {
		decision := o.supervisor.Route(ctx, state.LLMMessages(), lastSpecialist)
		state.Next = decision.NextNode
		o.log.Debug().Str("next", decision.NextNode.String()).Str("reasoning", decision.Reasoning).Msg("routed")

		if decision.NextNode == router.RouteEnd {
			// Trivial exchange: no reply is produced for the turn.
			result.Metadata.HasArtifacts = len(result.Artifacts) > 0
			return result
		}

		specialist := o.specialistFor(decision.NextNode)
		if specialist == nil {
			o.log.Error().Str("route", decision.NextNode.String()).Msg("no specialist for route")
			return o.finish(state, result, "unroutable decision")
		}

		if !state.IncrementLoop() {
			o.log.Warn().Int("loops", state.LoopCount).Msg("loop bound exceeded, terminating turn")
			state.Append(llm.RoleAssistant, loopApology)
			return o.finish(state, result, "loop bound exceeded")
		}

		res, err := specialist.Respond(ctx, state)
		if err != nil {
			// Specialists recover internally; an error here is a
			// programming bug, still fail soft.
			o.log.Error().Err(err).Str("agent", specialist.Name()).Msg("specialist error")
			state.Append(llm.RoleAssistant, panicApology)
			return o.finish(state, result, err.Error())
		}
		result.Artifacts = append(result.Artifacts, res.Artifacts...)
		result.Metadata.ToolCallsCount += res.ToolCalls

		if res.Reply == nil {
			// The specialist produced nothing user-facing; hand control
			// back to the supervisor. The loop counter bounds this cycle.
			lastSpecialist = decision.NextNode
			continue
		}

		result.Specialist = decision.NextNode

		switch decision.NextNode {
		case router.RouteProduct, router.RouteOrder:
			o.qualityCheck(ctx, state)
			return o.finish(state, result, "")
		default:
			// General replies are already final.
			return o.finish(state, result, "")
		}
	}
}

func (o *Orchestrator) specialistFor(route router.Route) agent.Specialist {
	switch route {
	case router.RouteProduct:
		return o.product
	case router.RouteOrder:
		return o.order
	case router.RouteGeneral:
		return o.general
	default:
		return nil
	}
}

// qualityCheck rewrites the specialist's reply into the house style,
// in place, keeping the message identifier stable.
func (o *Orchestrator) qualityCheck(ctx context.Context, state *agent.TurnState) {
	if o.formatter == nil {
		return
	}
	last := state.LastAssistant()
	if last == nil {
		return
	}
	rewritten, err := o.formatter.Rewrite(ctx, last.Content, state.FoundProducts())
	if err != nil {
		o.log.Warn().Err(err).Msg("quality check failed, keeping original reply")
		return
	}
	last.Content = rewritten
}

func (o *Orchestrator) finish(state *agent.TurnState, result *TurnResult, errText string) *TurnResult {
	if last := state.LastAssistant(); last != nil {
		result.Content = last.Content
	}
	result.Metadata.HasArtifacts = len(result.Artifacts) > 0
	result.Metadata.Error = errText
	return result
}
