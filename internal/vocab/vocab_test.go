package vocab

import (
	"reflect"
	"testing"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Da Dầu ", "da dầu"},
		{"CeraVe", "cerave"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeString(tt.input); got != tt.expected {
				t.Errorf("NormalizeString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "dedup case-insensitive",
			input:    []string{"Mụn", "mụn", " Khô "},
			expected: []string{"mụn", "khô"},
		},
		{
			name:     "drops blanks",
			input:    []string{"", "  ", "serum"},
			expected: []string{"serum"},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: nil,
		},
		{
			name:     "all blank",
			input:    []string{" ", ""},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeList(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("NormalizeList(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDedupPreserveCase(t *testing.T) {
	got := DedupPreserveCase([]string{"CeraVe", "cerave", "La Roche-Posay", " CERAVE "})
	expected := []string{"CeraVe", "La Roche-Posay"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("DedupPreserveCase() = %v, want %v", got, expected)
	}
}

func TestCleanBrand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"CeraVe"`, "CeraVe"},
		{"'La   Roche-Posay'", "La Roche-Posay"},
		{"  The Ordinary  ", "The Ordinary"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanBrand(tt.input); got != tt.expected {
				t.Errorf("CleanBrand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		ok       bool
	}{
		{"500000", 500000, true},
		{"500.000", 500000, true},
		{"500,000", 500000, true},
		{"500k", 500000, true},
		{"1tr", 1000000, true},
		{"1.5tr", 1500000, true},
		{"1m", 1000000, true},
		{"200K", 200000, true},
		{"500000đ", 500000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("ParsePrice(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
