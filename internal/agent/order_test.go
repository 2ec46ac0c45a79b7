package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/tools"
)

func orderFake() *tools.FakeProvider {
	return tools.NewFakeProvider().
		WithTool("add_to_cart", `{"agent": "order", "category": "cart", "requires_auth": true} | Thêm sản phẩm vào giỏ.`,
			func(ctx context.Context, args map[string]any) (string, error) {
				return `{"status": "ok", "cart_size": 1}`, nil
			}).
		WithTool("place_order", `{"agent": "order", "category": "cart", "requires_auth": true} | Chốt đơn hàng.`,
			func(ctx context.Context, args map[string]any) (string, error) {
				return "", errors.New("payment gateway down")
			})
}

func foundTwo(state *TurnState) {
	state.SetFoundProducts([]Product{
		{ID: "sku-100", Name: "CeraVe Foaming Cleanser"},
		{ID: "sku-200", Name: "La Roche-Posay Effaclar"},
	})
}

func TestOrderAgentResolvesOrdinalReference(t *testing.T) {
	provider := llm.NewMockProvider().
		WithToolCall("call-1", "add_to_cart", `{"product_id": 2, "quantity": 1}`).
		WithContent("Em đã thêm La Roche-Posay Effaclar vào giỏ rồi ạ")
	fake := orderFake()
	registry := tools.NewRegistry(fake, zerolog.Nop())
	agent := NewOrderAgent(provider, registry, zerolog.Nop())

	state := newState("lấy cho chị cái thứ 2")
	foundTwo(state)

	res, err := agent.Respond(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, 1, res.ToolCalls)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "sku-200", calls[0].Args["product_id"], "ordinal 2 maps to the second found product's canonical id")
}

func TestOrderAgentPromptListsFoundProducts(t *testing.T) {
	provider := llm.NewMockProvider().WithContent("dạ chị chọn sản phẩm nào ạ?")
	registry := tools.NewRegistry(orderFake(), zerolog.Nop())
	agent := NewOrderAgent(provider, registry, zerolog.Nop())

	state := newState("mua hàng")
	foundTwo(state)

	_, err := agent.Respond(context.Background(), state)
	require.NoError(t, err)

	reqs := provider.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].SystemPrompt, "1: sku-100")
	assert.Contains(t, reqs[0].SystemPrompt, "2: sku-200")
}

func TestOrderAgentVetoesOutOfRangeOrdinal(t *testing.T) {
	provider := llm.NewMockProvider().
		WithToolCall("call-1", "add_to_cart", `{"product_id": 5}`).
		WithContent("Dạ em chưa thấy sản phẩm số 5, chị kiểm tra lại giúp em nhé ạ")
	fake := orderFake()
	registry := tools.NewRegistry(fake, zerolog.Nop())
	agent := NewOrderAgent(provider, registry, zerolog.Nop())

	state := newState("lấy cái số 5")
	foundTwo(state)

	res, err := agent.Respond(context.Background(), state)
	require.NoError(t, err)
	assert.Empty(t, fake.Calls(), "out-of-range ordinal must not reach the tool")
	require.Len(t, res.Artifacts, 1)
	assert.False(t, res.Artifacts[0].Success)
	assert.Contains(t, res.Artifacts[0].Data, "error")
}

func TestOrderAgentVetoesOrdinalWithoutFoundProducts(t *testing.T) {
	provider := llm.NewMockProvider().
		WithToolCall("call-1", "add_to_cart", `{"product_id": "1"}`).
		WithContent("Chị cho em biết sản phẩm cụ thể để em thêm vào giỏ nhé ạ")
	fake := orderFake()
	registry := tools.NewRegistry(fake, zerolog.Nop())
	agent := NewOrderAgent(provider, registry, zerolog.Nop())

	state := newState("thêm cái đầu tiên vào giỏ")
	_, err := agent.Respond(context.Background(), state)
	require.NoError(t, err)
	assert.Empty(t, fake.Calls())
}

func TestOrderAgentPassesCanonicalIDThrough(t *testing.T) {
	provider := llm.NewMockProvider().
		WithToolCall("call-1", "add_to_cart", `{"product_id": "sku-100"}`).
		WithContent("Em thêm rồi ạ")
	fake := orderFake()
	registry := tools.NewRegistry(fake, zerolog.Nop())
	agent := NewOrderAgent(provider, registry, zerolog.Nop())

	state := newState("thêm CeraVe vào giỏ")
	foundTwo(state)

	_, err := agent.Respond(context.Background(), state)
	require.NoError(t, err)
	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "sku-100", calls[0].Args["product_id"])
}

func TestOrderAgentToolFailureRecordedAsUnsuccessful(t *testing.T) {
	provider := llm.NewMockProvider().
		WithToolCall("call-1", "place_order", `{"product_id": "sku-100"}`).
		WithContent("Dạ hệ thống thanh toán đang gặp sự cố, em chưa chốt được đơn cho chị ạ")
	registry := tools.NewRegistry(orderFake(), zerolog.Nop())
	agent := NewOrderAgent(provider, registry, zerolog.Nop())

	state := newState("chốt đơn giúp chị")
	res, err := agent.Respond(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.False(t, res.Artifacts[0].Success)
}

func TestOrderAgentApologizesOnProviderFailure(t *testing.T) {
	provider := llm.NewMockProvider().WithError(errors.New("timeout"))
	registry := tools.NewRegistry(orderFake(), zerolog.Nop())
	agent := NewOrderAgent(provider, registry, zerolog.Nop())

	state := newState("mua hàng")
	foundTwo(state)

	res, err := agent.Respond(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, apologyFallback, res.Reply.Content)
	assert.Len(t, state.FoundProducts(), 2)
}

func TestResolveOrdinals(t *testing.T) {
	products := []Product{{ID: "sku-1"}, {ID: "sku-2"}, {ID: "sku-3"}}

	tests := []struct {
		name    string
		args    map[string]any
		wantID  any
		wantErr bool
	}{
		{"numeric json ordinal", map[string]any{"product_id": float64(3)}, "sku-3", false},
		{"string ordinal", map[string]any{"product_id": "1"}, "sku-1", false},
		{"index key", map[string]any{"item_index": float64(2)}, "sku-2", false},
		{"canonical id untouched", map[string]any{"product_id": "sku-2"}, "sku-2", false},
		{"zero passes through", map[string]any{"product_id": float64(0)}, float64(0), false},
		{"too large", map[string]any{"product_id": float64(9)}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := resolveOrdinals("add_to_cart", tt.args, products)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, out["product_id"])
		})
	}
}
