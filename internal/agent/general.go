package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/llm"
)

const generalAgentName = "general"

// generalWindow is how many trailing turn messages the general
// specialist sees. Small talk does not need deep history.
const generalWindow = 6

const generalSystemPrompt = `Bạn là Ngọc, trợ lý thân thiện của cửa hàng mỹ phẩm VBeauty.
Bạn trả lời chào hỏi, cảm ơn và các câu hỏi chung về cửa hàng.
Trả lời ngắn gọn, ấm áp, bằng tiếng Việt, xưng "em", gọi khách là "chị".
Nếu khách hỏi về sản phẩm hoặc đơn hàng cụ thể, mời khách nói rõ hơn để em hỗ trợ.`

// GeneralAgent handles greetings, thanks, and store questions. It never
// calls tools and never touches shared context; its reply is final for
// the turn.
type GeneralAgent struct {
	provider llm.Provider
	log      zerolog.Logger
}

func NewGeneralAgent(provider llm.Provider, log zerolog.Logger) *GeneralAgent {
	return &GeneralAgent{provider: provider, log: log.With().Str("agent", generalAgentName).Logger()}
}

func (a *GeneralAgent) Name() string { return generalAgentName }

func (a *GeneralAgent) Respond(ctx context.Context, state *TurnState) (*Result, error) {
	messages := state.LLMMessages()
	if len(messages) > generalWindow {
		messages = messages[len(messages)-generalWindow:]
	}

	resp, err := a.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: generalSystemPrompt,
		Messages:     messages,
	})
	if err != nil {
		a.log.Error().Err(err).Msg("general agent failed")
		return apologize(state), nil
	}
	return &Result{Reply: state.Append(llm.RoleAssistant, stripCodeFences(resp.Content))}, nil
}
