package agent

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/tools"
)

const productAgentName = "product"

const productSystemPrompt = `Bạn là chuyên viên tư vấn mỹ phẩm của VBeauty, tên là Ngọc.
Nhiệm vụ của bạn là tư vấn sản phẩm chăm sóc da và trang điểm cho khách hàng.

Quy tắc:
1. Luôn dùng tool tìm kiếm để lấy thông tin sản phẩm thật. Không bao giờ bịa tên sản phẩm, giá hay tồn kho.
2. Khi liệt kê sản phẩm, đánh số thứ tự từ 1 để khách dễ chọn.
3. Giá hiển thị theo VND, ví dụ 350.000đ.
4. Trả lời bằng tiếng Việt, xưng "em", gọi khách là "chị".
5. Trả lời bằng văn bản thuần, KHÔNG bọc câu trả lời trong khối mã markdown.`

// ProductAgent answers product discovery and consultation queries. It
// discovers its tool subset lazily, keeps track of which tools are
// search tools, and publishes search results to shared context for
// later specialists.
type ProductAgent struct {
	provider llm.Provider
	registry *tools.Registry
	log      zerolog.Logger

	mu          sync.Mutex
	descriptors []tools.Descriptor
	searchTools map[string]bool
}

// NewProductAgent builds the product specialist. Tool discovery is
// deferred until the first Respond call.
func NewProductAgent(provider llm.Provider, registry *tools.Registry, log zerolog.Logger) *ProductAgent {
	return &ProductAgent{
		provider: provider,
		registry: registry,
		log:      log.With().Str("agent", productAgentName).Logger(),
	}
}

func (a *ProductAgent) Name() string { return productAgentName }

// ensureTools loads the agent's tool subset once and classifies search
// tools by metadata category or name prefix.
func (a *ProductAgent) ensureTools(ctx context.Context) ([]tools.Descriptor, map[string]bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.searchTools != nil {
		return a.descriptors, a.searchTools, nil
	}

	descriptors, err := a.registry.ForAgent(ctx, productAgentName)
	if err != nil {
		return nil, nil, err
	}
	search := make(map[string]bool)
	for _, d := range descriptors {
		if isSearchTool(d) {
			search[d.Name] = true
		}
	}
	a.descriptors = descriptors
	a.searchTools = search
	return descriptors, search, nil
}

func isSearchTool(d tools.Descriptor) bool {
	return d.Meta.Category == "search" || strings.HasPrefix(d.Name, "search")
}

// Respond runs the tool loop and then mines the produced artifacts for
// structured product data. Failures collapse into a fixed apologetic
// reply; shared context from earlier specialists is left untouched.
func (a *ProductAgent) Respond(ctx context.Context, state *TurnState) (*Result, error) {
	descriptors, search, err := a.ensureTools(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("tool discovery failed")
		return apologize(state), nil
	}

	res, err := runToolLoop(ctx, a.provider, a.registry, state, productSystemPrompt, toolSchemas(descriptors), nil, a.log)
	if err != nil {
		a.log.Error().Err(err).Msg("product agent failed")
		return apologize(state), nil
	}

	// Last-search-wins: scan artifacts newest first, take the first
	// search-tool output that parses.
	for i := len(res.Artifacts) - 1; i >= 0; i-- {
		art := res.Artifacts[i]
		if !art.Success || !search[art.ToolName] {
			continue
		}
		products := parseProducts(art.Data)
		if len(products) > 0 {
			state.SetFoundProducts(products)
			a.log.Debug().Int("count", len(products)).Str("tool", art.ToolName).Msg("published found products")
		}
		break
	}

	return res, nil
}

// parseProducts accepts either {"products": [...]} or a bare array.
func parseProducts(payload string) []Product {
	var wrapped struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && len(wrapped.Products) > 0 {
		return wrapped.Products
	}
	var bare []Product
	if err := json.Unmarshal([]byte(payload), &bare); err == nil {
		return bare
	}
	return nil
}

// apologize records the canned failure reply as the turn's assistant
// message. Shared context is deliberately not cleared.
func apologize(state *TurnState) *Result {
	return &Result{Reply: state.Append(llm.RoleAssistant, apologyFallback)}
}
