package prefs

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/vocab"
)

// extractionPrompt instructs the model to pull out only what the user
// explicitly stated. The model must never guess.
const extractionPrompt = `Bạn là bộ trích xuất sở thích mỹ phẩm. Đọc MỘT tin nhắn của khách và trích xuất CHỈ những thông tin khách nói rõ ràng. Không suy diễn.

Trả về một JSON object duy nhất với các trường (bỏ qua trường nào không được nhắc tới):
{
  "skin_type": "loại da (vd: da dầu, da khô, da hỗn hợp, da nhạy cảm)",
  "skin_concerns": ["vấn đề da: mụn, thâm, nám, lão hóa, ..."],
  "favorite_brands": ["tên thương hiệu"],
  "preferred_categories": ["danh mục sản phẩm"],
  "allergies": ["thành phần cần tránh"],
  "price_range_min": 100000,
  "price_range_max": 500000
}

Giá tiền là số VND. Chỉ trả về JSON, không giải thích.`

// Updates is a set of preference changes extracted from one message or
// produced by a merge. Nil/empty fields mean "no change".
type Updates struct {
	SkinType            *string  `json:"skin_type,omitempty"`
	SkinConcerns        []string `json:"skin_concerns,omitempty"`
	FavoriteBrands      []string `json:"favorite_brands,omitempty"`
	PreferredCategories []string `json:"preferred_categories,omitempty"`
	Allergies           []string `json:"allergies,omitempty"`
	PriceMin            *int64   `json:"price_range_min,omitempty"`
	PriceMax            *int64   `json:"price_range_max,omitempty"`
}

// IsEmpty reports whether no field changed.
func (u Updates) IsEmpty() bool {
	return u.SkinType == nil && len(u.SkinConcerns) == 0 &&
		len(u.FavoriteBrands) == 0 && len(u.PreferredCategories) == 0 &&
		len(u.Allergies) == 0 && u.PriceMin == nil && u.PriceMax == nil
}

// Fields returns the sorted names of the changed fields, for logging.
func (u Updates) Fields() []string {
	var fields []string
	if u.SkinType != nil {
		fields = append(fields, "skin_type")
	}
	if len(u.SkinConcerns) > 0 {
		fields = append(fields, "skin_concerns")
	}
	if len(u.FavoriteBrands) > 0 {
		fields = append(fields, "favorite_brands")
	}
	if len(u.PreferredCategories) > 0 {
		fields = append(fields, "preferred_categories")
	}
	if len(u.Allergies) > 0 {
		fields = append(fields, "allergies")
	}
	if u.PriceMin != nil {
		fields = append(fields, "price_range_min")
	}
	if u.PriceMax != nil {
		fields = append(fields, "price_range_max")
	}
	sort.Strings(fields)
	return fields
}

// extraction is the JSON shape the model is asked to produce.
type extraction struct {
	SkinType            string   `json:"skin_type"`
	SkinConcerns        []string `json:"skin_concerns"`
	FavoriteBrands      []string `json:"favorite_brands"`
	PreferredCategories []string `json:"preferred_categories"`
	Allergies           []string `json:"allergies"`
	PriceRangeMin       *float64 `json:"price_range_min"`
	PriceRangeMax       *float64 `json:"price_range_max"`
}

// Inference extracts preference updates from chat messages and applies
// them to the store. All failures are soft: a malformed extraction must
// never corrupt stored preferences, so errors collapse to "nothing
// extracted".
type Inference struct {
	provider llm.Provider
	store    Store
	log      zerolog.Logger

	// userLocks serializes read-merge-write cycles per user so two
	// concurrent messages from one user cannot tear a union merge.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewInference creates a preference inference engine.
func NewInference(provider llm.Provider, store Store, log zerolog.Logger) *Inference {
	return &Inference{
		provider:  provider,
		store:     store,
		log:       log.With().Str("component", "prefs.inference").Logger(),
		userLocks: make(map[string]*sync.Mutex),
	}
}

// InferFromMessage asks the completion capability to extract preference
// updates from a single user message. Returns empty Updates on blank
// input, provider error, or malformed output, never an error.
func (e *Inference) InferFromMessage(ctx context.Context, message string) Updates {
	if strings.TrimSpace(message) == "" {
		return Updates{}
	}

	resp, err := e.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: extractionPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: message}},
		Temperature:  0,
		JSONMode:     true,
	})
	if err != nil {
		e.log.Debug().Err(err).Msg("preference extraction call failed")
		return Updates{}
	}

	raw, ok := extractJSONObject(resp.Content)
	if !ok {
		e.log.Debug().Str("content", truncate(resp.Content, 200)).Msg("no JSON object in extraction output")
		return Updates{}
	}

	var ext extraction
	if err := json.Unmarshal([]byte(raw), &ext); err != nil {
		e.log.Debug().Err(err).Msg("extraction output failed schema validation")
		return Updates{}
	}
	return cleanExtraction(ext)
}

// extractJSONObject returns the span from the first '{' to the last '}',
// tolerating markdown-fenced output around the object.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// cleanExtraction converts a raw extraction into normalized Updates:
// strings trimmed, lists deduplicated case-insensitively with first
// casing preserved, price bounds swapped when min > max.
func cleanExtraction(ext extraction) Updates {
	var u Updates
	if skinType := strings.TrimSpace(ext.SkinType); skinType != "" {
		u.SkinType = &skinType
	}
	u.SkinConcerns = vocab.DedupPreserveCase(ext.SkinConcerns)
	u.FavoriteBrands = vocab.DedupPreserveCase(ext.FavoriteBrands)
	u.PreferredCategories = vocab.DedupPreserveCase(ext.PreferredCategories)
	u.Allergies = vocab.DedupPreserveCase(ext.Allergies)

	if ext.PriceRangeMin != nil && *ext.PriceRangeMin >= 0 {
		v := int64(*ext.PriceRangeMin)
		u.PriceMin = &v
	}
	if ext.PriceRangeMax != nil && *ext.PriceRangeMax >= 0 {
		v := int64(*ext.PriceRangeMax)
		u.PriceMax = &v
	}
	if u.PriceMin != nil && u.PriceMax != nil && *u.PriceMin > *u.PriceMax {
		u.PriceMin, u.PriceMax = u.PriceMax, u.PriceMin
	}
	return u
}

// MergeUpdates merges extracted updates into an existing record and
// returns only the fields that actually change. Skin type is replaced
// only when different. List fields are unioned: existing entries kept,
// new entries appended unless their lowercase form is already present.
// Price bounds are replaced wholesale, then re-normalized. These union
// semantics are the counterpart to the override-only semantics of filter
// merging; the two must not be confused.
func MergeUpdates(existing *Record, extracted Updates) Updates {
	if existing == nil {
		existing = &Record{}
	}
	var out Updates

	if extracted.SkinType != nil &&
		!strings.EqualFold(strings.TrimSpace(*extracted.SkinType), strings.TrimSpace(existing.SkinType)) {
		out.SkinType = extracted.SkinType
	}

	if merged, changed := unionList(existing.SkinConcerns, extracted.SkinConcerns); changed {
		out.SkinConcerns = merged
	}
	if merged, changed := unionList(existing.FavoriteBrands, extracted.FavoriteBrands); changed {
		out.FavoriteBrands = merged
	}
	if merged, changed := unionList(existing.PreferredCategories, extracted.PreferredCategories); changed {
		out.PreferredCategories = merged
	}
	if merged, changed := unionList(existing.Allergies, extracted.Allergies); changed {
		out.Allergies = merged
	}

	newMin, newMax := existing.PriceMin, existing.PriceMax
	if extracted.PriceMin != nil {
		newMin = extracted.PriceMin
	}
	if extracted.PriceMax != nil {
		newMax = extracted.PriceMax
	}
	if newMin != nil && newMax != nil && *newMin > *newMax {
		newMin, newMax = newMax, newMin
	}
	if !int64PtrEqual(newMin, existing.PriceMin) {
		out.PriceMin = newMin
	}
	if !int64PtrEqual(newMax, existing.PriceMax) {
		out.PriceMax = newMax
	}
	return out
}

// unionList appends incoming entries whose lowercase form is not already
// present. Existing entries and their casing always win.
func unionList(existing, incoming []string) ([]string, bool) {
	if len(incoming) == 0 {
		return nil, false
	}
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[strings.ToLower(strings.TrimSpace(item))] = struct{}{}
	}
	merged := append([]string(nil), existing...)
	changed := false
	for _, item := range incoming {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, trimmed)
		changed = true
	}
	if !changed {
		return nil, false
	}
	return merged, true
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// applyUpdates writes the changed fields onto a record.
func applyUpdates(record *Record, u Updates) {
	if u.SkinType != nil {
		record.SkinType = strings.TrimSpace(*u.SkinType)
	}
	if len(u.SkinConcerns) > 0 {
		record.SkinConcerns = u.SkinConcerns
	}
	if len(u.FavoriteBrands) > 0 {
		record.FavoriteBrands = u.FavoriteBrands
	}
	if len(u.PreferredCategories) > 0 {
		record.PreferredCategories = u.PreferredCategories
	}
	if len(u.Allergies) > 0 {
		record.Allergies = u.Allergies
	}
	if u.PriceMin != nil {
		record.PriceMin = u.PriceMin
	}
	if u.PriceMax != nil {
		record.PriceMax = u.PriceMax
	}
	record.normalizePriceRange()
}

// Apply runs the full auto-update path for one message: extract, merge
// with the stored record, and upsert when something changed. Returns the
// names of the changed fields; the slice is empty when nothing changed.
// Merge cycles are serialized per user.
func (e *Inference) Apply(ctx context.Context, userID, message string) ([]string, error) {
	extracted := e.InferFromMessage(ctx, message)
	if extracted.IsEmpty() {
		return nil, nil
	}

	lock := e.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := MergeUpdates(existing, extracted)
	if merged.IsEmpty() {
		return nil, nil
	}

	record := existing.Clone()
	if record == nil {
		record = &Record{}
	}
	applyUpdates(record, merged)
	if err := e.store.Upsert(ctx, userID, record); err != nil {
		return nil, err
	}

	fields := merged.Fields()
	e.log.Info().Str("user_id", userID).Strs("fields", fields).Msg("preferences updated from message")
	return fields, nil
}

// lockFor returns the per-user merge lock, creating it on first use.
func (e *Inference) lockFor(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// truncate shortens s for log output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
