package search

import (
	"fmt"
	"strings"
)

// Level identifies one relaxation step. Levels are ordered: a caller
// stepping through the sequence only ever moves to a higher level.
type Level int

const (
	// LevelNone means no relaxation has been applied yet.
	LevelNone Level = iota
	// LevelRelaxBrand drops the brand constraint.
	LevelRelaxBrand
	// LevelRelaxPrice doubles the price range.
	LevelRelaxPrice
	// LevelRelaxConcerns clears the skin-concern constraints.
	LevelRelaxConcerns
	// LevelRelaxSkinTypes clears the skin-type constraints.
	LevelRelaxSkinTypes
	// LevelMatchAll keeps only keyword and availability.
	LevelMatchAll
)

// String returns the level identifier.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelRelaxBrand:
		return "relax_brand"
	case LevelRelaxPrice:
		return "relax_price"
	case LevelRelaxConcerns:
		return "relax_concerns"
	case LevelRelaxSkinTypes:
		return "relax_skin_types"
	case LevelMatchAll:
		return "match_all"
	default:
		return "unknown"
	}
}

// PriceExpandFactor is how much each price bound is widened by the price
// relaxation step. Kept at 2.0 for behavioral compatibility with the
// production search flow.
const PriceExpandFactor = 2.0

// Explanations shown to the user for each relaxation step.
const (
	explainRelaxBrand     = "Không tìm thấy sản phẩm của thương hiệu này, mình đã mở rộng sang các thương hiệu khác nhé."
	explainRelaxPrice     = "Mình đã mở rộng khoảng giá để tìm thêm sản phẩm phù hợp cho bạn."
	explainRelaxConcerns  = "Mình đã bỏ bớt tiêu chí về vấn đề da để có thêm lựa chọn."
	explainRelaxSkinTypes = "Mình đã bỏ tiêu chí loại da để có thêm lựa chọn."
	explainMatchAll       = "Mình đã tìm với tiêu chí rộng nhất có thể."
)

// Result is one relaxation step: the relaxed filters, its level, and a
// user-facing explanation.
type Result struct {
	Filters     Filters `json:"filters"`
	Level       Level   `json:"level"`
	Explanation string  `json:"explanation"`
}

// Sequence generates the ordered fallback sequence for a filter set that
// produced zero results. Relaxation is a pure function of the original
// filters; the sequence is generated fresh on every call.
//
// Brand and price relaxations are derived independently from the original
// filters. Concern and skin-type relaxations chain off the most recently
// appended result so their effect is cumulative. A match-all entry keeping
// only keyword and availability is always appended last.
func Sequence(original Filters) []Result {
	var seq []Result

	if original.Brand != "" {
		relaxed := original.Clone()
		relaxed.Brand = ""
		seq = append(seq, Result{
			Filters:     relaxed,
			Level:       LevelRelaxBrand,
			Explanation: explainRelaxBrand,
		})
	}

	if original.HasPrice() {
		relaxed := original.Clone()
		if relaxed.MinPrice != nil {
			v := int64(float64(*relaxed.MinPrice) / PriceExpandFactor)
			if v < 0 {
				v = 0
			}
			relaxed.MinPrice = &v
		}
		if relaxed.MaxPrice != nil {
			v := int64(float64(*relaxed.MaxPrice) * PriceExpandFactor)
			relaxed.MaxPrice = &v
		}
		seq = append(seq, Result{
			Filters:     relaxed,
			Level:       LevelRelaxPrice,
			Explanation: explainRelaxPrice,
		})
	}

	if len(original.Concerns) > 0 {
		relaxed := latestOrOriginal(seq, original)
		relaxed.Concerns = nil
		seq = append(seq, Result{
			Filters:     relaxed,
			Level:       LevelRelaxConcerns,
			Explanation: explainRelaxConcerns,
		})
	}

	if len(original.SkinTypes) > 0 {
		relaxed := latestOrOriginal(seq, original)
		relaxed.SkinTypes = nil
		seq = append(seq, Result{
			Filters:     relaxed,
			Level:       LevelRelaxSkinTypes,
			Explanation: explainRelaxSkinTypes,
		})
	}

	matchAll := Filters{Keyword: original.Keyword}
	if original.Available != nil {
		v := *original.Available
		matchAll.Available = &v
	}
	seq = append(seq, Result{
		Filters:     matchAll,
		Level:       LevelMatchAll,
		Explanation: explainMatchAll,
	})

	return seq
}

// latestOrOriginal clones the most recently appended result, or the
// original filters when the sequence is still empty.
func latestOrOriginal(seq []Result, original Filters) Filters {
	if len(seq) == 0 {
		return original.Clone()
	}
	return seq[len(seq)-1].Filters.Clone()
}

// Next returns the first relaxation past currentLevel, or nil when the
// sequence is exhausted. Callers step through relaxations one at a time
// across repeated zero-result searches.
func Next(original Filters, currentLevel Level) *Result {
	for _, r := range Sequence(original) {
		if r.Level > currentLevel {
			out := r
			return &out
		}
	}
	return nil
}

// SuggestRelaxation returns only the first (cheapest) relaxation, for
// single-shot "would you like to broaden your search?" prompts.
func SuggestRelaxation(original Filters) *Result {
	seq := Sequence(original)
	if len(seq) == 0 {
		return nil
	}
	out := seq[0]
	return &out
}

// NoResultsMessage composes the user-facing zero-results message,
// naming the constraints that produced no matches and appending the
// suggestion text when provided.
func NoResultsMessage(original Filters, suggestion string) string {
	var constraints []string
	if original.Brand != "" {
		constraints = append(constraints, fmt.Sprintf("thương hiệu %s", original.Brand))
	}
	if original.Category != "" {
		constraints = append(constraints, fmt.Sprintf("danh mục %s", original.Category))
	}
	switch {
	case original.MinPrice != nil && original.MaxPrice != nil:
		constraints = append(constraints, fmt.Sprintf("giá từ %dđ đến %dđ", *original.MinPrice, *original.MaxPrice))
	case original.MinPrice != nil:
		constraints = append(constraints, fmt.Sprintf("giá từ %dđ", *original.MinPrice))
	case original.MaxPrice != nil:
		constraints = append(constraints, fmt.Sprintf("giá dưới %dđ", *original.MaxPrice))
	}

	var b strings.Builder
	if len(constraints) > 0 {
		b.WriteString(fmt.Sprintf("Mình không tìm thấy sản phẩm nào với %s.", strings.Join(constraints, ", ")))
	} else {
		b.WriteString("Mình không tìm thấy sản phẩm nào phù hợp.")
	}
	if suggestion != "" {
		b.WriteString(" ")
		b.WriteString(suggestion)
	}
	return b.String()
}
