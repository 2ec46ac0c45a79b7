package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbeauty-labs/glowbot/internal/prefs"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	return NewProvider(nil, "", nil, zerolog.Nop())
}

type searchResponse struct {
	Products []Item `json:"products"`
	Note     string `json:"note"`
	Message  string `json:"message"`
}

func doSearch(t *testing.T, p *Provider, args map[string]any) searchResponse {
	t.Helper()
	out, err := p.Call(context.Background(), "search_products", args)
	require.NoError(t, err)
	var resp searchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestSearchByKeyword(t *testing.T) {
	resp := doSearch(t, newProvider(t), map[string]any{"keyword": "sữa rửa mặt"})
	require.NotEmpty(t, resp.Products)
	for _, item := range resp.Products {
		assert.Equal(t, "sữa rửa mặt", item.Category)
	}
	assert.Empty(t, resp.Note, "strict match needs no relaxation note")
}

func TestSearchFallsBackWhenBrandMissing(t *testing.T) {
	resp := doSearch(t, newProvider(t), map[string]any{
		"keyword": "kem chống nắng",
		"brand":   "CeraVe", // no CeraVe sunscreen in the demo catalog
	})
	require.NotEmpty(t, resp.Products, "brand relaxation should surface other brands")
	assert.NotEmpty(t, resp.Note, "relaxed result carries an explanation")
}

func TestSearchNoResultsMessage(t *testing.T) {
	resp := doSearch(t, newProvider(t), map[string]any{"keyword": "xịt khoáng chứa vàng 24k"})
	assert.Empty(t, resp.Products)
	assert.NotEmpty(t, resp.Message)
}

func TestSearchUsesStoredPreferences(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), "user-1", &prefs.Record{
		FavoriteBrands: []string{"CeraVe"},
	}))
	p := NewProvider(nil, "user-1", store, zerolog.Nop())

	resp := doSearch(t, p, map[string]any{"keyword": "sữa rửa mặt"})
	require.NotEmpty(t, resp.Products)
	for _, item := range resp.Products {
		assert.Equal(t, "CeraVe", item.Brand, "stored brand preference narrows the search")
	}
}

func TestSearchParsesPriceStrings(t *testing.T) {
	resp := doSearch(t, newProvider(t), map[string]any{
		"keyword":   "serum",
		"max_price": "300k",
	})
	require.NotEmpty(t, resp.Products)
	for _, item := range resp.Products {
		assert.LessOrEqual(t, item.Price, int64(300000))
	}
}

func TestCartLifecycle(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	_, err := p.Call(ctx, "place_order", nil)
	assert.Error(t, err, "empty cart cannot be ordered")

	out, err := p.Call(ctx, "add_to_cart", map[string]any{"product_id": "srm-cerave-01", "quantity": float64(2)})
	require.NoError(t, err)
	assert.Contains(t, out, `"quantity": 2`)

	out, err = p.Call(ctx, "view_cart", nil)
	require.NoError(t, err)
	var cart struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cart))
	assert.Equal(t, int64(700000), cart.Total)

	out, err = p.Call(ctx, "place_order", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "placed")

	_, err = p.Call(ctx, "place_order", nil)
	assert.Error(t, err, "order clears the cart")
}

func TestAddToCartUnavailableItem(t *testing.T) {
	p := newProvider(t)
	_, err := p.Call(context.Background(), "add_to_cart", map[string]any{"product_id": "serum-klairs-01"})
	assert.Error(t, err)
}

func TestProductDetail(t *testing.T) {
	p := newProvider(t)
	out, err := p.Call(context.Background(), "get_product_detail", map[string]any{"product_id": "kcn-anessa-01"})
	require.NoError(t, err)
	assert.Contains(t, out, "Anessa")

	_, err = p.Call(context.Background(), "get_product_detail", map[string]any{"product_id": "missing"})
	assert.Error(t, err)
}

func TestToolDescriptorsPartitionByAgent(t *testing.T) {
	raw, err := newProvider(t).ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 5)
	for _, tool := range raw {
		assert.Contains(t, tool.Description, `"agent"`)
	}
}
