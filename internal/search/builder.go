package search

import (
	"github.com/vbeauty-labs/glowbot/internal/prefs"
	"github.com/vbeauty-labs/glowbot/internal/vocab"
)

// QueryParams are the raw, possibly messy parameters of a live search
// query before normalization.
type QueryParams struct {
	Keyword   string
	Brand     string
	Category  string
	SkinTypes []string
	Concerns  []string
	Benefits  []string
	Tags      []string
	MinPrice  *int64
	MaxPrice  *int64
	Available *bool
}

// FromPreferences maps a stored preference record to a filter set.
// Only brand, skin type, concerns and price carry over; the keyword must
// always come from the live query, never from stored preferences.
func FromPreferences(record *prefs.Record) Filters {
	var f Filters
	if record == nil {
		return f
	}
	f.Brand = vocab.CleanBrand(record.PrimaryBrand())
	if record.SkinType != "" {
		f.SkinTypes = []string{vocab.NormalizeString(record.SkinType)}
	}
	f.Concerns = vocab.NormalizeList(record.SkinConcerns)
	if record.PriceMin != nil {
		v := *record.PriceMin
		f.MinPrice = &v
	}
	if record.PriceMax != nil {
		v := *record.PriceMax
		f.MaxPrice = &v
	}
	return f
}

// FromQuery normalizes explicit query parameters into a filter set.
func FromQuery(params QueryParams) Filters {
	var f Filters
	f.Keyword = vocab.NormalizeString(params.Keyword)
	f.Brand = vocab.CleanBrand(params.Brand)
	f.Category = vocab.NormalizeString(params.Category)
	f.SkinTypes = vocab.NormalizeList(params.SkinTypes)
	f.Concerns = vocab.NormalizeList(params.Concerns)
	f.Benefits = vocab.NormalizeList(params.Benefits)
	f.Tags = vocab.NormalizeList(params.Tags)
	if params.MinPrice != nil {
		v := *params.MinPrice
		f.MinPrice = &v
	}
	if params.MaxPrice != nil {
		v := *params.MaxPrice
		f.MaxPrice = &v
	}
	if params.Available != nil {
		v := *params.Available
		f.Available = &v
	}
	return f
}

// Merge combines a base filter set with an override. Override wins
// per-field: scalars when non-empty, price bounds when non-nil, lists
// wholesale when non-empty. Lists are never unioned here; union semantics
// belong to preference merging, not filter merging. Availability is
// override-only: it always takes the override's value, set or not.
// Merge is not commutative.
func Merge(base, override Filters) Filters {
	out := base.Clone()
	ov := override.Clone()

	if ov.Keyword != "" {
		out.Keyword = ov.Keyword
	}
	if ov.Brand != "" {
		out.Brand = ov.Brand
	}
	if ov.Category != "" {
		out.Category = ov.Category
	}
	if len(ov.SkinTypes) > 0 {
		out.SkinTypes = ov.SkinTypes
	}
	if len(ov.Concerns) > 0 {
		out.Concerns = ov.Concerns
	}
	if len(ov.Benefits) > 0 {
		out.Benefits = ov.Benefits
	}
	if len(ov.Tags) > 0 {
		out.Tags = ov.Tags
	}
	if ov.MinPrice != nil {
		out.MinPrice = ov.MinPrice
	}
	if ov.MaxPrice != nil {
		out.MaxPrice = ov.MaxPrice
	}
	out.Available = ov.Available
	return out
}

// BuildMerged builds a filter set from stored preferences overlaid with
// explicit query parameters. Explicit values always win.
func BuildMerged(record *prefs.Record, params QueryParams) Filters {
	return Merge(FromPreferences(record), FromQuery(params))
}
