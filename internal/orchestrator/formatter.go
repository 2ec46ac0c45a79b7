package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/agent"
	"github.com/vbeauty-labs/glowbot/internal/llm"
)

const formatterPrompt = `Bạn là biên tập viên của VBeauty. Viết lại câu trả lời dưới đây theo đúng khuôn mẫu của cửa hàng:

1. Mở đầu bằng một lời chào ngắn gọn, thân thiện ("Dạ chị ơi," hoặc tương tự).
2. Nếu có sản phẩm, liệt kê dạng gạch đầu dòng, tên sản phẩm in đậm bằng *tên*, kèm giá dạng 350.000đ.
3. Kết thúc bằng một câu mời gọi hành động (ví dụ: "Chị muốn em tư vấn thêm hay thêm vào giỏ luôn ạ?").

TUYỆT ĐỐI không thay đổi thông tin thực tế: tên sản phẩm, giá, tồn kho, trạng thái đơn hàng phải giữ nguyên.
Không thêm sản phẩm không có trong câu trả lời gốc.
Trả về văn bản thuần, không bọc trong khối mã markdown.`

// Formatter is the quality_check node. It rewrites a specialist reply
// into the house style without touching its factual content.
type Formatter struct {
	provider llm.Provider
	log      zerolog.Logger
}

// NewFormatter builds the quality_check rewriter.
func NewFormatter(provider llm.Provider, log zerolog.Logger) *Formatter {
	return &Formatter{provider: provider, log: log.With().Str("component", "quality_check").Logger()}
}

// Rewrite returns the house-styled version of reply. products, when
// present, is included so the rewrite can bold and price-tag the items
// the reply mentions. Errors propagate so the caller can keep the
// original reply.
func (f *Formatter) Rewrite(ctx context.Context, reply string, products []agent.Product) (string, error) {
	if strings.TrimSpace(reply) == "" {
		return reply, nil
	}

	var b strings.Builder
	b.WriteString("Câu trả lời gốc:\n")
	b.WriteString(reply)
	if len(products) > 0 {
		b.WriteString("\n\nSản phẩm liên quan (chỉ để đối chiếu giá và tên):\n")
		for _, p := range products {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, formatVND(p.Price))
		}
	}

	resp, err := f.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: formatterPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Temperature:  0,
	})
	if err != nil {
		return "", fmt.Errorf("quality check completion: %w", err)
	}

	rewritten := strings.TrimSpace(stripFences(resp.Content))
	if rewritten == "" {
		return "", fmt.Errorf("quality check returned empty rewrite")
	}
	return rewritten, nil
}

// formatVND renders a price in the dotted Vietnamese style, 350000 as
// "350.000đ".
func formatVND(v int64) string {
	if v <= 0 {
		return "liên hệ"
	}
	digits := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteString("đ")
	return b.String()
}

func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	inner := strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(inner, "\n"); idx >= 0 {
		inner = inner[idx+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(inner), "```"))
}
