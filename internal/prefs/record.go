// Package prefs manages per-user beauty preference records: storage,
// merge semantics, and LLM-based extraction from chat messages.
package prefs

// Record holds one user's stored beauty preferences. A record is created
// lazily on first write and is never hard-deleted by this subsystem.
type Record struct {
	// SkinType is the user's skin type ("da dầu", "da khô", ...).
	// Empty when unknown.
	SkinType string `json:"skin_type,omitempty"`

	// SkinConcerns are the user's skin concerns. Unique case-insensitively.
	SkinConcerns []string `json:"skin_concerns,omitempty"`

	// FavoriteBrands is ordered; the first entry is the primary brand.
	FavoriteBrands []string `json:"favorite_brands,omitempty"`

	// PriceMin and PriceMax bound the preferred price range in VND.
	// The store enforces PriceMin <= PriceMax on every write.
	PriceMin *int64 `json:"price_range_min,omitempty"`
	PriceMax *int64 `json:"price_range_max,omitempty"`

	// PreferredCategories are product categories the user favors.
	PreferredCategories []string `json:"preferred_categories,omitempty"`

	// Allergies lists ingredients the user avoids.
	Allergies []string `json:"allergies,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{SkinType: r.SkinType}
	out.SkinConcerns = append([]string(nil), r.SkinConcerns...)
	out.FavoriteBrands = append([]string(nil), r.FavoriteBrands...)
	out.PreferredCategories = append([]string(nil), r.PreferredCategories...)
	out.Allergies = append([]string(nil), r.Allergies...)
	if r.PriceMin != nil {
		v := *r.PriceMin
		out.PriceMin = &v
	}
	if r.PriceMax != nil {
		v := *r.PriceMax
		out.PriceMax = &v
	}
	return out
}

// PrimaryBrand returns the first favorite brand, or "" when none is set.
func (r *Record) PrimaryBrand() string {
	if r == nil || len(r.FavoriteBrands) == 0 {
		return ""
	}
	return r.FavoriteBrands[0]
}

// normalizePriceRange swaps the bounds when both are set and min > max.
// Data inconsistency here is auto-corrected, never rejected.
func (r *Record) normalizePriceRange() {
	if r.PriceMin != nil && r.PriceMax != nil && *r.PriceMin > *r.PriceMax {
		r.PriceMin, r.PriceMax = r.PriceMax, r.PriceMin
	}
}
