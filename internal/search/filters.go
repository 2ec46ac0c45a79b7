// Package search builds structured product-search filters and generates
// progressive filter relaxations when a strict search finds nothing.
package search

// Filters is an ephemeral value object describing one product search.
// Operations return new instances (clone-then-mutate); a Filters value
// handed to another component must never be mutated in place. The fallback
// engine depends on this: its relaxation sequence must not alias entries.
type Filters struct {
	Keyword   string   `json:"keyword,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	Category  string   `json:"category,omitempty"`
	SkinTypes []string `json:"skin_types,omitempty"`
	Concerns  []string `json:"concerns,omitempty"`
	Benefits  []string `json:"benefits,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	MinPrice  *int64   `json:"min_price,omitempty"`
	MaxPrice  *int64   `json:"max_price,omitempty"`
	Available *bool    `json:"is_available,omitempty"`
}

// Clone returns a deep copy of the filters.
func (f Filters) Clone() Filters {
	out := f
	out.SkinTypes = append([]string(nil), f.SkinTypes...)
	out.Concerns = append([]string(nil), f.Concerns...)
	out.Benefits = append([]string(nil), f.Benefits...)
	out.Tags = append([]string(nil), f.Tags...)
	if f.MinPrice != nil {
		v := *f.MinPrice
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		out.MaxPrice = &v
	}
	if f.Available != nil {
		v := *f.Available
		out.Available = &v
	}
	return out
}

// HasPrice reports whether either price bound is set.
func (f Filters) HasPrice() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

// IsEmpty reports whether no constraint at all is set.
func (f Filters) IsEmpty() bool {
	return f.Keyword == "" && f.Brand == "" && f.Category == "" &&
		len(f.SkinTypes) == 0 && len(f.Concerns) == 0 &&
		len(f.Benefits) == 0 && len(f.Tags) == 0 &&
		!f.HasPrice() && f.Available == nil
}

// Int64 returns a pointer to v. Convenience for building filter literals.
func Int64(v int64) *int64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
