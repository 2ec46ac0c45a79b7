// Package catalog is an in-process capability provider backed by a demo
// product catalog. It exists so the standalone CLI can run without an
// external tool service: the same registry, metadata-header, and
// auth-injection machinery applies to it as to a remote provider.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/prefs"
	"github.com/vbeauty-labs/glowbot/internal/search"
	"github.com/vbeauty-labs/glowbot/internal/tools"
	"github.com/vbeauty-labs/glowbot/internal/vocab"
)

// Item is one catalog entry.
type Item struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Category  string   `json:"category"`
	Price     int64    `json:"price"`
	SkinTypes []string `json:"skin_types,omitempty"`
	Concerns  []string `json:"concerns,omitempty"`
	Available bool     `json:"is_available"`
}

// Provider serves product search and cart tools from an in-memory
// catalog. It implements tools.Provider.
type Provider struct {
	userID string
	store  prefs.Store
	log    zerolog.Logger

	mu    sync.Mutex
	items []Item
	cart  map[string]int
}

// NewProvider builds a provider over the given catalog items. store may
// be nil; when present, stored preferences seed every search as the base
// filter layer.
func NewProvider(items []Item, userID string, store prefs.Store, log zerolog.Logger) *Provider {
	if items == nil {
		items = DemoItems()
	}
	return &Provider{
		userID: userID,
		store:  store,
		log:    log.With().Str("component", "catalog").Logger(),
		items:  items,
		cart:   make(map[string]int),
	}
}

// ListTools implements tools.Provider. Descriptions carry the metadata
// header the registry partitions on.
func (p *Provider) ListTools(ctx context.Context) ([]tools.RawTool, error) {
	return []tools.RawTool{
		{
			Name:        "search_products",
			Description: `{"agent": "product", "category": "search"} | Tìm sản phẩm theo từ khóa, thương hiệu, khoảng giá, loại da. Tham số: keyword, brand, category, min_price, max_price, skin_types, concerns.`,
		},
		{
			Name:        "get_product_detail",
			Description: `{"agent": "product", "category": "detail"} | Xem chi tiết một sản phẩm theo product_id.`,
		},
		{
			Name:        "add_to_cart",
			Description: `{"agent": "order", "category": "cart", "requires_auth": true} | Thêm sản phẩm vào giỏ. Tham số: product_id, quantity.`,
		},
		{
			Name:        "view_cart",
			Description: `{"agent": "order", "category": "cart", "requires_auth": true} | Xem giỏ hàng hiện tại.`,
		},
		{
			Name:        "place_order",
			Description: `{"agent": "order", "category": "cart", "requires_auth": true} | Chốt đơn với các sản phẩm trong giỏ.`,
		},
	}, nil
}

// Call implements tools.Provider.
func (p *Provider) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "search_products":
		return p.searchProducts(ctx, args)
	case "get_product_detail":
		return p.productDetail(args)
	case "add_to_cart":
		return p.addToCart(args)
	case "view_cart":
		return p.viewCart()
	case "place_order":
		return p.placeOrder()
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

// Close implements tools.Provider.
func (p *Provider) Close() error { return nil }

// searchProducts filters the catalog, walking the fallback sequence when
// the strict filters match nothing.
func (p *Provider) searchProducts(ctx context.Context, args map[string]any) (string, error) {
	params := queryParams(args)

	var record *prefs.Record
	if p.store != nil && p.userID != "" {
		rec, err := p.store.Get(ctx, p.userID)
		if err != nil {
			p.log.Warn().Err(err).Msg("preference lookup failed, searching without preferences")
		} else {
			record = rec
		}
	}
	filters := search.BuildMerged(record, params)

	matched := p.match(filters)
	if len(matched) > 0 {
		return searchPayload(matched, "")
	}

	for _, step := range search.Sequence(filters) {
		matched = p.match(step.Filters)
		if len(matched) > 0 {
			p.log.Debug().Str("level", step.Level.String()).Msg("fallback search matched")
			return searchPayload(matched, step.Explanation)
		}
	}

	suggestion := ""
	if s := search.SuggestRelaxation(filters); s != nil {
		suggestion = s.Explanation
	}
	return fmt.Sprintf(`{"products": [], "message": %q}`, search.NoResultsMessage(filters, suggestion)), nil
}

func (p *Provider) match(f search.Filters) []Item {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Item
	for _, item := range p.items {
		if matches(item, f) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item Item, f search.Filters) bool {
	if f.Available != nil && item.Available != *f.Available {
		return false
	}
	if f.Keyword != "" {
		kw := vocab.NormalizeString(f.Keyword)
		hay := strings.ToLower(item.Name + " " + item.Brand + " " + item.Category)
		if !strings.Contains(hay, kw) {
			return false
		}
	}
	if f.Brand != "" && !strings.EqualFold(item.Brand, f.Brand) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && item.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && item.Price > *f.MaxPrice {
		return false
	}
	if len(f.SkinTypes) > 0 && !overlaps(item.SkinTypes, f.SkinTypes) {
		return false
	}
	if len(f.Concerns) > 0 && !overlaps(item.Concerns, f.Concerns) {
		return false
	}
	return true
}

func overlaps(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func searchPayload(items []Item, note string) (string, error) {
	payload := map[string]any{"products": items}
	if note != "" {
		payload["note"] = note
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Provider) productDetail(args map[string]any) (string, error) {
	id, _ := args["product_id"].(string)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range p.items {
		if item.ID == id {
			b, err := json.Marshal(item)
			return string(b), err
		}
	}
	return "", fmt.Errorf("không tìm thấy sản phẩm %q", id)
}

func (p *Provider) addToCart(args map[string]any) (string, error) {
	id, _ := args["product_id"].(string)
	qty := 1
	if q, ok := args["quantity"].(float64); ok && q > 0 {
		qty = int(q)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range p.items {
		if item.ID != id {
			continue
		}
		if !item.Available {
			return "", fmt.Errorf("sản phẩm %q tạm hết hàng", item.Name)
		}
		p.cart[id] += qty
		return fmt.Sprintf(`{"status": "ok", "product_id": %q, "quantity": %d}`, id, p.cart[id]), nil
	}
	return "", fmt.Errorf("không tìm thấy sản phẩm %q", id)
}

func (p *Provider) viewCart() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	type line struct {
		Item     Item  `json:"item"`
		Quantity int   `json:"quantity"`
		Subtotal int64 `json:"subtotal"`
	}
	var lines []line
	var total int64
	for _, item := range p.items {
		qty, ok := p.cart[item.ID]
		if !ok {
			continue
		}
		sub := item.Price * int64(qty)
		lines = append(lines, line{Item: item, Quantity: qty, Subtotal: sub})
		total += sub
	}
	b, err := json.Marshal(map[string]any{"lines": lines, "total": total})
	return string(b), err
}

func (p *Provider) placeOrder() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.cart) == 0 {
		return "", fmt.Errorf("giỏ hàng đang trống")
	}
	count := len(p.cart)
	p.cart = make(map[string]int)
	return fmt.Sprintf(`{"status": "placed", "items": %d}`, count), nil
}

// queryParams maps loosely-typed tool arguments into QueryParams.
func queryParams(args map[string]any) search.QueryParams {
	params := search.QueryParams{
		Keyword:  str(args, "keyword"),
		Brand:    str(args, "brand"),
		Category: str(args, "category"),
	}
	if v, ok := num(args, "min_price"); ok {
		params.MinPrice = search.Int64(v)
	}
	if v, ok := num(args, "max_price"); ok {
		params.MaxPrice = search.Int64(v)
	}
	params.SkinTypes = strs(args, "skin_types")
	params.Concerns = strs(args, "concerns")
	return params
}

func str(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func num(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case string:
		return vocab.ParsePrice(v)
	}
	return 0, false
}

func strs(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
