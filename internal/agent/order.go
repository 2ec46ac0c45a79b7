package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/tools"
)

const orderAgentName = "order"

const orderSystemPrompt = `Bạn là chuyên viên đặt hàng của VBeauty, tên là Ngọc.
Nhiệm vụ của bạn là giúp khách thêm sản phẩm vào giỏ, xem giỏ hàng và chốt đơn.

Quy tắc:
1. Chỉ xác nhận thao tác THÀNH CÔNG khi tool trả về kết quả thành công. Nếu tool báo lỗi hoặc chưa gọi tool, tuyệt đối không nói là đã làm xong.
2. Khi khách nói "sản phẩm số N" hay "cái thứ N", hãy dùng đúng mã sản phẩm tương ứng trong danh sách bên dưới.
3. Trả lời bằng tiếng Việt, xưng "em", gọi khách là "chị".
4. Trả lời bằng văn bản thuần, không dùng khối mã markdown.`

// ordinalKeys are argument names specialists' models use when they pass
// a list position instead of a canonical product identifier.
var ordinalKeys = []string{"product_id", "item_index", "index", "ordinal", "item"}

// OrderAgent handles cart mutations and order placement. It resolves
// "the Nth item" references against the products the product specialist
// published earlier in the turn and refuses to confirm actions the
// tools did not actually perform.
type OrderAgent struct {
	provider llm.Provider
	registry *tools.Registry
	log      zerolog.Logger

	mu          sync.Mutex
	descriptors []tools.Descriptor
	loaded      bool
}

// NewOrderAgent builds the order specialist. Tool discovery is deferred
// until the first Respond call.
func NewOrderAgent(provider llm.Provider, registry *tools.Registry, log zerolog.Logger) *OrderAgent {
	return &OrderAgent{
		provider: provider,
		registry: registry,
		log:      log.With().Str("agent", orderAgentName).Logger(),
	}
}

func (a *OrderAgent) Name() string { return orderAgentName }

func (a *OrderAgent) ensureTools(ctx context.Context) ([]tools.Descriptor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return a.descriptors, nil
	}
	descriptors, err := a.registry.ForAgent(ctx, orderAgentName)
	if err != nil {
		return nil, err
	}
	a.descriptors = descriptors
	a.loaded = true
	return descriptors, nil
}

// Respond runs the tool loop with an argument rewriter that substitutes
// canonical product identifiers for ordinal references before any cart
// mutation reaches a tool.
func (a *OrderAgent) Respond(ctx context.Context, state *TurnState) (*Result, error) {
	descriptors, err := a.ensureTools(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("tool discovery failed")
		return apologize(state), nil
	}

	prompt := orderSystemPrompt
	products := state.FoundProducts()
	if len(products) > 0 {
		prompt += "\n\nSản phẩm khách vừa xem (số thứ tự: mã sản phẩm - tên):\n" + formatProductIndex(products)
	}

	rewrite := func(name string, args map[string]any) (map[string]any, error) {
		return resolveOrdinals(name, args, products)
	}

	res, err := runToolLoop(ctx, a.provider, a.registry, state, prompt, toolSchemas(descriptors), rewrite, a.log)
	if err != nil {
		a.log.Error().Err(err).Msg("order agent failed")
		return apologize(state), nil
	}
	return res, nil
}

// formatProductIndex renders the 1-indexed listing the user saw, paired
// with each product's canonical identifier.
func formatProductIndex(products []Product) string {
	var b strings.Builder
	for i, p := range products {
		fmt.Fprintf(&b, "%d: %s - %s\n", i+1, p.ID, p.Name)
	}
	return b.String()
}

// resolveOrdinals maps a 1-indexed list position in the tool arguments
// to the canonical identifier of the corresponding found product. An
// ordinal with no matching product vetoes the call.
func resolveOrdinals(_ string, args map[string]any, products []Product) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}

	for _, key := range ordinalKeys {
		raw, ok := out[key]
		if !ok {
			continue
		}
		n, isOrdinal := asOrdinal(raw)
		if !isOrdinal {
			continue
		}
		if len(products) == 0 {
			return nil, fmt.Errorf("không có danh sách sản phẩm để đối chiếu mục số %d", n)
		}
		if n < 1 || n > len(products) {
			return nil, fmt.Errorf("mục số %d không nằm trong danh sách %d sản phẩm", n, len(products))
		}
		delete(out, key)
		out["product_id"] = products[n-1].ID
		return out, nil
	}
	return out, nil
}

// asOrdinal reports whether a tool argument value is a small positive
// integer, i.e. a list position rather than a real identifier.
func asOrdinal(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		n := int(t)
		if float64(n) == t && n > 0 && n < 100 {
			return n, true
		}
	case int:
		if t > 0 && t < 100 {
			return t, true
		}
	case string:
		s := strings.TrimSpace(t)
		n, err := strconv.Atoi(s)
		if err == nil && n > 0 && n < 100 {
			return n, true
		}
	}
	return 0, false
}
