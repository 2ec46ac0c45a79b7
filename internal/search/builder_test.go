package search

import (
	"reflect"
	"testing"

	"github.com/vbeauty-labs/glowbot/internal/prefs"
)

func TestFromPreferences(t *testing.T) {
	min, max := int64(100000), int64(500000)
	record := &prefs.Record{
		SkinType:       "Da Dầu",
		SkinConcerns:   []string{"Mụn", "mụn", "thâm"},
		FavoriteBrands: []string{`"CeraVe"`, "La Roche-Posay"},
		PriceMin:       &min,
		PriceMax:       &max,
	}

	f := FromPreferences(record)

	if f.Brand != "CeraVe" {
		t.Errorf("Brand = %q, want primary brand CeraVe", f.Brand)
	}
	if !reflect.DeepEqual(f.SkinTypes, []string{"da dầu"}) {
		t.Errorf("SkinTypes = %v", f.SkinTypes)
	}
	if !reflect.DeepEqual(f.Concerns, []string{"mụn", "thâm"}) {
		t.Errorf("Concerns = %v", f.Concerns)
	}
	if f.MinPrice == nil || *f.MinPrice != 100000 || f.MaxPrice == nil || *f.MaxPrice != 500000 {
		t.Errorf("price bounds = %v/%v", f.MinPrice, f.MaxPrice)
	}
	if f.Keyword != "" {
		t.Error("keyword must never come from preferences")
	}
}

func TestFromPreferences_Nil(t *testing.T) {
	if f := FromPreferences(nil); !f.IsEmpty() {
		t.Errorf("FromPreferences(nil) = %+v, want empty", f)
	}
}

func TestFromQuery_Normalizes(t *testing.T) {
	f := FromQuery(QueryParams{
		Keyword:   "  Sữa Rửa Mặt ",
		Brand:     `'CeraVe'`,
		Category:  " Cleanser ",
		SkinTypes: []string{"Da Dầu", "da dầu"},
		Available: Bool(true),
	})

	if f.Keyword != "sữa rửa mặt" {
		t.Errorf("Keyword = %q", f.Keyword)
	}
	if f.Brand != "CeraVe" {
		t.Errorf("Brand = %q", f.Brand)
	}
	if f.Category != "cleanser" {
		t.Errorf("Category = %q", f.Category)
	}
	if !reflect.DeepEqual(f.SkinTypes, []string{"da dầu"}) {
		t.Errorf("SkinTypes = %v", f.SkinTypes)
	}
	if f.Available == nil || !*f.Available {
		t.Error("Available lost in normalization")
	}
}

func TestMerge_OverrideWins(t *testing.T) {
	base := Filters{
		Brand:     "CeraVe",
		Concerns:  []string{"mụn"},
		MinPrice:  Int64(100000),
		MaxPrice:  Int64(500000),
		Available: Bool(true),
	}
	override := Filters{
		Keyword:  "toner",
		Brand:    "Paula's Choice",
		Concerns: []string{"thâm", "lão hóa"},
		MaxPrice: Int64(900000),
	}

	got := Merge(base, override)

	if got.Keyword != "toner" || got.Brand != "Paula's Choice" {
		t.Errorf("scalars = %q/%q", got.Keyword, got.Brand)
	}
	// Lists take override wholesale, never a union.
	if !reflect.DeepEqual(got.Concerns, []string{"thâm", "lão hóa"}) {
		t.Errorf("Concerns = %v", got.Concerns)
	}
	if got.MinPrice == nil || *got.MinPrice != 100000 {
		t.Errorf("MinPrice = %v, want inherited 100000", got.MinPrice)
	}
	if got.MaxPrice == nil || *got.MaxPrice != 900000 {
		t.Errorf("MaxPrice = %v, want override 900000", got.MaxPrice)
	}
	// Availability is override-only: base's value is never inherited.
	if got.Available != nil {
		t.Errorf("Available = %v, want unset from override", got.Available)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	base := Filters{
		Brand:    "CeraVe",
		Keyword:  "serum",
		Concerns: []string{"mụn"},
		MinPrice: Int64(100000),
	}
	override := Filters{
		Brand:     "The Ordinary",
		MaxPrice:  Int64(700000),
		Available: Bool(true),
	}

	once := Merge(base, override)
	twice := Merge(once, override)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\n once = %+v\ntwice = %+v", once, twice)
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	base := Filters{Concerns: []string{"mụn"}}
	override := Filters{SkinTypes: []string{"da dầu"}}

	got := Merge(base, override)
	got.Concerns[0] = "changed"
	got.SkinTypes[0] = "changed"

	if base.Concerns[0] != "mụn" || override.SkinTypes[0] != "da dầu" {
		t.Error("Merge result aliases its inputs")
	}
}

func TestBuildMerged(t *testing.T) {
	record := &prefs.Record{
		FavoriteBrands: []string{"CeraVe"},
		SkinType:       "da khô",
	}
	got := BuildMerged(record, QueryParams{Keyword: "kem chống nắng", Brand: "Anessa"})

	if got.Keyword != "kem chống nắng" {
		t.Errorf("Keyword = %q", got.Keyword)
	}
	if got.Brand != "Anessa" {
		t.Errorf("Brand = %q, explicit query must beat preference", got.Brand)
	}
	if !reflect.DeepEqual(got.SkinTypes, []string{"da khô"}) {
		t.Errorf("SkinTypes = %v, want inherited from preferences", got.SkinTypes)
	}
}
