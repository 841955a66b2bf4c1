package language

import (
	"testing"
)

func TestExtractFromTags(t *testing.T) {
	tests := []struct {
		name     string
		tags     map[string]string
		expected string
	}{
		{"nil tags", nil, ""},
		{"empty tags", map[string]string{}, ""},
		{"lowercase key", map[string]string{"language": "eng"}, "eng"},
		{"uppercase key", map[string]string{"LANGUAGE": "ENG"}, "eng"},
		{"lang key", map[string]string{"lang": "en"}, "en"},
		{"LANG key", map[string]string{"LANG": "EN"}, "en"},
		{"ietf key", map[string]string{"language_ietf": "en-US"}, "en-us"},
		{"null bytes stripped", map[string]string{"language": "eng\x00"}, "eng"},
		{"empty value", map[string]string{"language": ""}, ""},
		{"priority: language over LANG", map[string]string{"language": "fr", "LANG": "en"}, "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractFromTags(tt.tags)
			if result != tt.expected {
				t.Errorf("ExtractFromTags(%v) = %q, want %q", tt.tags, result, tt.expected)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"ENG", "eng"},
		{"english", "eng"},
		{"ger", "deu"},
		{"fre", "fra"},
		{"tha", "tha"}, // resolved through the CLDR registry
		{"", ""},
		{"not-a-language", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Canonical(tt.input); got != tt.expected {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		stream string
		wanted string
		match  bool
	}{
		{"eng", "eng", true},
		{"ENG", "eng", true},
		{"eng", "en", true},
		{"fre", "fr", true},
		{"ger", "deu", true},
		{"eng", "fra", false},
		{"", "eng", false},
		{"eng", "", false},
		{"und", "und", true},
	}
	for _, tt := range tests {
		t.Run(tt.stream+"_"+tt.wanted, func(t *testing.T) {
			if got := Matches(tt.stream, tt.wanted); got != tt.match {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.stream, tt.wanted, got, tt.match)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	for _, token := range []string{"en", "eng", "EN", "english", "fre"} {
		if !IsCode(token) {
			t.Errorf("expected %q to be a language code", token)
		}
	}
	for _, token := range []string{"", "forced", "1080p", "ffsubsync"} {
		if IsCode(token) {
			t.Errorf("expected %q not to be a language code", token)
		}
	}
}
