// Package vocab provides text normalization utilities for the shopping
// assistant. All functions are pure; they never touch external state.
package vocab

import (
	"strconv"
	"strings"
)

// NormalizeString trims surrounding whitespace and lowercases the input.
// Returns "" for blank input.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeList trims each entry and removes case-insensitive duplicates.
// The lowercased form of each entry is kept; blank entries are dropped.
func NormalizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		norm := NormalizeString(item)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DedupPreserveCase removes case-insensitive duplicates while keeping the
// original casing of the first occurrence. Used for user-facing lists
// (brand names, concerns) where casing carries meaning.
func DedupPreserveCase(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CleanBrand strips wrapping quotes and collapses internal whitespace in a
// brand token. Casing is preserved (brands are displayed as stored).
func CleanBrand(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.Join(strings.Fields(s), " ")
}

// ParsePrice converts a user-supplied price token to VND.
// Accepted forms: "500000", "500.000", "500,000", "500k", "1tr", "1m",
// "1.5tr". The second return value reports whether parsing succeeded.
func ParsePrice(s string) (int64, bool) {
	s = NormalizeString(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimSuffix(s, "vnd")
	s = strings.TrimSuffix(s, "đ")
	s = strings.TrimSpace(s)

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "tr"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "tr")
	case strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "k")
	}
	s = strings.TrimSpace(s)

	if multiplier > 1 {
		// Fractional quantities like "1.5tr" are valid.
		value, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil || value < 0 {
			return 0, false
		}
		return int64(value * float64(multiplier)), true
	}

	// Plain numbers may use "." or "," as thousands separators.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
