package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbeauty-labs/glowbot/internal/llm"
)

func TestNewTurnStateSeedsHistoryAndMessage(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "chào"},
		{Role: llm.RoleAssistant, Content: "dạ em chào chị"},
	}
	state := NewTurnState("user-1", "tok", history, "có kem chống nắng không?")

	require.Len(t, state.Messages, 3)
	assert.Equal(t, llm.RoleUser, state.Messages[2].Role)
	assert.Equal(t, "có kem chống nắng không?", state.Messages[2].Content)
	for i, m := range state.Messages {
		assert.NotEmpty(t, m.ID, "message %d must carry an identifier", i)
	}
	assert.NotEqual(t, state.Messages[0].ID, state.Messages[1].ID)
}

func TestLastAssistant(t *testing.T) {
	state := newState("xin chào")
	assert.Nil(t, state.LastAssistant())

	state.Append(llm.RoleAssistant, "câu trả lời thứ nhất")
	state.Append(llm.RoleUser, "hỏi thêm")
	second := state.Append(llm.RoleAssistant, "câu trả lời thứ hai")

	got := state.LastAssistant()
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "câu trả lời thứ hai", got.Content)
}

func TestFoundProductsDefensiveShapes(t *testing.T) {
	state := newState("hi")

	assert.Nil(t, state.FoundProducts(), "missing key")

	state.Shared[ContextKeyFoundProducts] = "not a list"
	assert.Nil(t, state.FoundProducts(), "wrong type yields nil, never panics")

	state.Shared[ContextKeyFoundProducts] = []any{
		map[string]any{"id": "sku-1", "name": "CeraVe", "price": float64(350000)},
	}
	got := state.FoundProducts()
	require.Len(t, got, 1, "JSON-shaped data is tolerated")
	assert.Equal(t, "sku-1", got[0].ID)
	assert.Equal(t, int64(350000), got[0].Price)

	state.SetFoundProducts([]Product{{ID: "sku-2"}})
	got = state.FoundProducts()
	require.Len(t, got, 1)
	assert.Equal(t, "sku-2", got[0].ID, "later write replaces earlier value")
}

func TestSetFoundProductsIgnoresEmpty(t *testing.T) {
	state := newState("hi")
	state.SetFoundProducts([]Product{{ID: "sku-1"}})
	state.SetFoundProducts(nil)
	assert.Len(t, state.FoundProducts(), 1, "empty search must not erase a prior snapshot")
}

func TestIncrementLoopBound(t *testing.T) {
	state := newState("hi")
	state.MaxLoops = 2

	assert.True(t, state.IncrementLoop())
	assert.True(t, state.IncrementLoop())
	assert.False(t, state.IncrementLoop(), "third invocation exceeds the bound")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "xin chào chị", "xin chào chị"},
		{"plain fence", "```\nnội dung\n```", "nội dung"},
		{"language tag", "```html\n<b>CeraVe</b>\n```", "<b>CeraVe</b>"},
		{"surrounding whitespace", "  ```\nhai\ndòng\n```  ", "hai\ndòng"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}
