// Package router implements the supervisor that decides which specialist
// agent handles a conversation turn. Deterministic phrase guards run
// first; an LLM classification constrained to the route enum handles the
// rest, with a safe fallback when the model fails.
package router

// Route identifies the next node in the turn graph.
type Route string

const (
	// RouteProduct handles product discovery and consultation.
	RouteProduct Route = "product_agent"
	// RouteOrder handles cart and order actions.
	RouteOrder Route = "order_agent"
	// RouteGeneral handles greetings, small talk and everything else.
	RouteGeneral Route = "general_agent"
	// RouteEnd terminates the turn without a specialist.
	RouteEnd Route = "END"
)

// AllRoutes returns all valid routes for validation.
func AllRoutes() []Route {
	return []Route{RouteProduct, RouteOrder, RouteGeneral, RouteEnd}
}

// String returns the string representation of a Route.
func (r Route) String() string {
	return string(r)
}

// IsValid checks if a Route is a known valid value.
func (r Route) IsValid() bool {
	for _, valid := range AllRoutes() {
		if r == valid {
			return true
		}
	}
	return false
}

// IsSpecialist reports whether the route names a specialist agent.
func (r Route) IsSpecialist() bool {
	return r == RouteProduct || r == RouteOrder || r == RouteGeneral
}

// Decision is the supervisor's structured routing output.
type Decision struct {
	// NextNode is the specialist (or terminal) that handles this turn.
	NextNode Route `json:"next_node"`

	// Reasoning is the model's short justification, kept for logs.
	Reasoning string `json:"reasoning,omitempty"`
}
