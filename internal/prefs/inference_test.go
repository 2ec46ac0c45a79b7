package prefs

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbeauty-labs/glowbot/internal/llm"
	"github.com/vbeauty-labs/glowbot/internal/logging"
)

func newTestInference(provider llm.Provider) (*Inference, *MemoryStore) {
	store := NewMemoryStore()
	return NewInference(provider, store, logging.New(logging.Config{Level: "error"})), store
}

// ============================================================================
// InferFromMessage
// ============================================================================

func TestInferFromMessage_BlankInput(t *testing.T) {
	engine, _ := newTestInference(llm.NewMockProvider())

	for _, input := range []string{"", "   ", "\n\t"} {
		if got := engine.InferFromMessage(context.Background(), input); !got.IsEmpty() {
			t.Errorf("InferFromMessage(%q) = %+v, want empty", input, got)
		}
	}
}

func TestInferFromMessage_ParsesExtraction(t *testing.T) {
	mock := llm.NewMockProvider().WithContent(
		`{"skin_type": " da dầu ", "skin_concerns": ["Mụn", "mụn", "thâm"], "price_range_min": 500000, "price_range_max": 200000}`,
	)
	engine, _ := newTestInference(mock)

	got := engine.InferFromMessage(context.Background(), "da mình dầu, hay bị mụn với thâm, tầm 200-500k")

	require.NotNil(t, got.SkinType)
	assert.Equal(t, "da dầu", *got.SkinType)
	assert.Equal(t, []string{"Mụn", "thâm"}, got.SkinConcerns)
	// Bounds arrive swapped and must be auto-corrected.
	require.NotNil(t, got.PriceMin)
	require.NotNil(t, got.PriceMax)
	assert.Equal(t, int64(200000), *got.PriceMin)
	assert.Equal(t, int64(500000), *got.PriceMax)

	// Extraction runs at temperature 0 with JSON forcing.
	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Zero(t, reqs[0].Temperature)
	assert.True(t, reqs[0].JSONMode)
}

func TestInferFromMessage_MarkdownFencedJSON(t *testing.T) {
	mock := llm.NewMockProvider().WithContent("```json\n{\"favorite_brands\": [\"CeraVe\"]}\n```")
	engine, _ := newTestInference(mock)

	got := engine.InferFromMessage(context.Background(), "mình thích CeraVe")

	assert.Equal(t, []string{"CeraVe"}, got.FavoriteBrands)
}

func TestInferFromMessage_FailsSoft(t *testing.T) {
	tests := []struct {
		name string
		mock *llm.MockProvider
	}{
		{"provider error", llm.NewMockProvider().WithError(errors.New("timeout"))},
		{"no JSON object", llm.NewMockProvider().WithContent("xin chào!")},
		{"malformed JSON", llm.NewMockProvider().WithContent(`{"skin_type": `)},
		{"wrong types", llm.NewMockProvider().WithContent(`{"skin_concerns": "not-a-list"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestInference(tt.mock)
			got := engine.InferFromMessage(context.Background(), "da mình khô")
			assert.True(t, got.IsEmpty(), "expected empty updates, got %+v", got)
		})
	}
}

// ============================================================================
// MergeUpdates
// ============================================================================

func TestMergeUpdates_ListUnion(t *testing.T) {
	existing := &Record{SkinConcerns: []string{"mụn"}}
	extracted := Updates{SkinConcerns: []string{"Mụn", "khô"}}

	got := MergeUpdates(existing, extracted)

	// Case-insensitive dedup: existing casing wins, new unique appended.
	assert.Equal(t, []string{"mụn", "khô"}, got.SkinConcerns)
}

func TestMergeUpdates_ListNoChange(t *testing.T) {
	existing := &Record{SkinConcerns: []string{"mụn", "thâm"}}
	extracted := Updates{SkinConcerns: []string{"MỤN", "Thâm"}}

	got := MergeUpdates(existing, extracted)

	assert.True(t, got.IsEmpty(), "re-stating existing concerns must not produce a write: %+v", got)
}

func TestMergeUpdates_SkinTypeReplaceOnlyIfDifferent(t *testing.T) {
	existing := &Record{SkinType: "da dầu"}

	same := "Da Dầu"
	if got := MergeUpdates(existing, Updates{SkinType: &same}); got.SkinType != nil {
		t.Errorf("unchanged skin type must be omitted, got %q", *got.SkinType)
	}

	different := "da khô"
	got := MergeUpdates(existing, Updates{SkinType: &different})
	require.NotNil(t, got.SkinType)
	assert.Equal(t, "da khô", *got.SkinType)
}

func TestMergeUpdates_PriceSwapped(t *testing.T) {
	minVal, maxVal := int64(500000), int64(200000)
	got := MergeUpdates(&Record{}, Updates{PriceMin: &minVal, PriceMax: &maxVal})

	require.NotNil(t, got.PriceMin)
	require.NotNil(t, got.PriceMax)
	assert.Equal(t, int64(200000), *got.PriceMin)
	assert.Equal(t, int64(500000), *got.PriceMax)
}

func TestMergeUpdates_PartialPriceAgainstExisting(t *testing.T) {
	existingMax := int64(300000)
	existing := &Record{PriceMax: &existingMax}

	// New min above the stored max: the pair is re-normalized.
	newMin := int64(800000)
	got := MergeUpdates(existing, Updates{PriceMin: &newMin})

	require.NotNil(t, got.PriceMin)
	require.NotNil(t, got.PriceMax)
	assert.Equal(t, int64(300000), *got.PriceMin)
	assert.Equal(t, int64(800000), *got.PriceMax)
}

func TestMergeUpdates_NilExisting(t *testing.T) {
	got := MergeUpdates(nil, Updates{FavoriteBrands: []string{"CeraVe"}})
	assert.Equal(t, []string{"CeraVe"}, got.FavoriteBrands)
}

// ============================================================================
// Apply
// ============================================================================

func TestApply_CreatesRecordLazily(t *testing.T) {
	mock := llm.NewMockProvider().WithContent(`{"skin_type": "da khô", "favorite_brands": ["CeraVe"]}`)
	engine, store := newTestInference(mock)

	fields, err := engine.Apply(context.Background(), "user-1", "da mình khô, mình hay dùng CeraVe")
	require.NoError(t, err)
	assert.Equal(t, []string{"favorite_brands", "skin_type"}, fields)

	record, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "da khô", record.SkinType)
	assert.Equal(t, []string{"CeraVe"}, record.FavoriteBrands)
}

func TestApply_NoChangeNoWrite(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), "user-1", &Record{SkinType: "da khô"}))

	mock := llm.NewMockProvider().WithContent(`{"skin_type": "Da Khô"}`)
	engine := NewInference(mock, store, logging.New(logging.Config{Level: "error"}))

	fields, err := engine.Apply(context.Background(), "user-1", "da mình khô")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestApply_ExtractionFailureLeavesStoreUntouched(t *testing.T) {
	store := NewMemoryStore()
	original := &Record{SkinConcerns: []string{"mụn"}}
	require.NoError(t, store.Upsert(context.Background(), "user-1", original))

	mock := llm.NewMockProvider().WithError(errors.New("provider down"))
	engine := NewInference(mock, store, logging.New(logging.Config{Level: "error"}))

	fields, err := engine.Apply(context.Background(), "user-1", "mình bị thâm nữa")
	require.NoError(t, err)
	assert.Empty(t, fields)

	record, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	if !reflect.DeepEqual(record.SkinConcerns, []string{"mụn"}) {
		t.Errorf("stored record corrupted: %+v", record)
	}
}
