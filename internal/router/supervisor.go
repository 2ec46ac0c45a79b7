package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/llm"
)

// HistoryWindow bounds how many trailing messages the supervisor reads.
// Older context is deliberately ignored.
const HistoryWindow = 10

// supervisorPrompt constrains the model to the four-way route enum and
// encodes the continuity ("stickiness") rules.
const supervisorPrompt = `Bạn là supervisor của trợ lý mua sắm mỹ phẩm. Đọc hội thoại và chọn node xử lý tin nhắn mới nhất của khách.

Các node:
- product_agent: tìm kiếm, tư vấn, so sánh sản phẩm, hỏi giá, thành phần
- order_agent: thêm vào giỏ, xem giỏ hàng, đặt hàng, thanh toán, trạng thái đơn
- general_agent: chào hỏi, tạm biệt, câu hỏi ngoài mua sắm
- END: tin nhắn không cần trả lời thêm

Quy tắc:
1. Chào hỏi/tạm biệt rõ ràng → general_agent.
2. Ý định mua/đặt hàng rõ ràng → order_agent.
3. Tin nhắn ngắn hoặc mơ hồ (vd "giá sao?", "còn không?") → chọn lại đúng specialist vừa trả lời gần nhất, KHÔNG chuyển về general_agent.
4. Mơ hồ nhưng vẫn giống câu hỏi mua sắm → product_agent, không bao giờ general_agent.

Trả về JSON: {"next_node": "<tên node>", "reasoning": "<ngắn gọn>"}`

// Greeting and purchase-intent guard phrases. Checked before the model
// is consulted; an exact cue makes the route deterministic.
var (
	greetingCues = []string{
		"xin chào", "chào shop", "chào bạn", "hello", "hi shop",
		"tạm biệt", "bye", "goodbye", "hẹn gặp lại",
	}
	purchaseCues = []string{
		"mua ngay", "đặt hàng", "thêm vào giỏ", "bỏ vào giỏ",
		"giỏ hàng", "thanh toán", "checkout", "chốt đơn", "lấy cho mình",
	}
)

// Supervisor routes conversation turns to specialists.
type Supervisor struct {
	provider llm.Provider
	window   int
	log      zerolog.Logger
}

// Option is a functional option for configuring Supervisor.
type Option func(*Supervisor)

// WithHistoryWindow overrides the trailing-message window size.
func WithHistoryWindow(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.window = n
		}
	}
}

// New creates a Supervisor backed by the given completion provider.
func New(provider llm.Provider, log zerolog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		provider: provider,
		window:   HistoryWindow,
		log:      log.With().Str("component", "supervisor").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Route decides which node handles the current turn. lastSpecialist is
// the specialist that most recently took the floor (RouteGeneral when
// none). Route never returns an error: any completion failure falls back
// to general_agent so the conversation is never crashed by routing.
func (s *Supervisor) Route(ctx context.Context, messages []llm.Message, lastSpecialist Route) Decision {
	input := lastUserMessage(messages)

	// Deterministic guards run before the model.
	if route, ok := guardRoute(input); ok {
		return Decision{NextNode: route, Reasoning: "phrase guard"}
	}

	decision, err := s.classify(ctx, messages, lastSpecialist)
	if err != nil {
		s.log.Warn().Err(err).Msg("routing classification failed, falling back to general_agent")
		return Decision{NextNode: RouteGeneral, Reasoning: "classification failure fallback"}
	}
	return decision
}

// guardRoute applies the explicit phrase rules. Greetings and farewells
// always go to general_agent; explicit purchase intent always goes to
// order_agent.
func guardRoute(input string) (Route, bool) {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return "", false
	}
	if lower == "chào" || lower == "hi" || lower == "hello" {
		return RouteGeneral, true
	}
	for _, cue := range greetingCues {
		if strings.Contains(lower, cue) {
			return RouteGeneral, true
		}
	}
	for _, cue := range purchaseCues {
		if strings.Contains(lower, cue) {
			return RouteOrder, true
		}
	}
	return "", false
}

// classify asks the model for a structured four-way decision.
func (s *Supervisor) classify(ctx context.Context, messages []llm.Message, lastSpecialist Route) (Decision, error) {
	window := trailingWindow(messages, s.window)

	var b strings.Builder
	if lastSpecialist.IsSpecialist() {
		fmt.Fprintf(&b, "Specialist vừa trả lời gần nhất: %s\n\n", lastSpecialist)
	}
	b.WriteString("Hội thoại:\n")
	for _, m := range window {
		if m.Role == llm.RoleTool {
			continue
		}
		fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Content)
	}

	resp, err := s.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: supervisorPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Temperature:  0,
		JSONMode:     true,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("supervisor completion: %w", err)
	}

	decision, err := parseDecision(resp.Content)
	if err != nil {
		return Decision{}, err
	}

	s.log.Debug().
		Str("next_node", decision.NextNode.String()).
		Str("reasoning", decision.Reasoning).
		Msg("routing decision")
	return decision, nil
}

// parseDecision reads the model's structured output, tolerating fenced
// JSON and bare route names.
func parseDecision(content string) (Decision, error) {
	trimmed := strings.TrimSpace(content)

	if start, end := strings.Index(trimmed, "{"), strings.LastIndex(trimmed, "}"); start >= 0 && end > start {
		var decision Decision
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &decision); err == nil {
			if decision.NextNode.IsValid() {
				return decision, nil
			}
			return Decision{}, fmt.Errorf("invalid route %q", decision.NextNode)
		}
	}

	// Some models answer with the bare node name despite instructions.
	if route := Route(strings.Trim(trimmed, "\"' .")); route.IsValid() {
		return Decision{NextNode: route}, nil
	}
	return Decision{}, fmt.Errorf("unparseable routing decision: %q", truncate(content, 120))
}

// trailingWindow returns at most n trailing messages.
func trailingWindow(messages []llm.Message, n int) []llm.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// lastUserMessage returns the content of the most recent user message.
func lastUserMessage(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
