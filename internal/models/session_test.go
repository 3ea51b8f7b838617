package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "Short content unchanged",
			content:  "What is the refund policy?",
			expected: "What is the refund policy?",
		},
		{
			name:     "Exactly thirty characters has no ellipsis",
			content:  strings.Repeat("a", 30),
			expected: strings.Repeat("a", 30),
		},
		{
			name:     "Thirty-one characters is truncated",
			content:  strings.Repeat("a", 31),
			expected: strings.Repeat("a", 30) + "…",
		},
		{
			name:     "Empty content",
			content:  "",
			expected: "",
		},
		{
			name:     "Whitespace collapses to single spaces",
			content:  "line one\n\nline two\t end",
			expected: "line one line two end",
		},
		{
			name:     "Truncation counts runes not bytes",
			content:  strings.Repeat("ü", 31),
			expected: strings.Repeat("ü", 30) + "…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PreviewText(tt.content)
			if result != tt.expected {
				t.Errorf("PreviewText(%q) = %q, want %q", tt.content, result, tt.expected)
			}
		})
	}
}

func TestPreviewTextNeverExceedsLimit(t *testing.T) {
	inputs := []string{
		strings.Repeat("x", 500),
		strings.Repeat("héllo wörld ", 20),
		"short",
	}

	for _, input := range inputs {
		preview := PreviewText(input)
		trimmed := strings.TrimSuffix(preview, "…")
		if utf8.RuneCountInString(trimmed) > PreviewLimit {
			t.Errorf("preview %q exceeds %d characters", preview, PreviewLimit)
		}
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession("user-1", "")
	if s.ID == "" {
		t.Error("expected a generated session id")
	}
	if s.Title != DefaultTitle {
		t.Errorf("expected default title, got %q", s.Title)
	}
	if s.UserID != "user-1" {
		t.Errorf("expected owner user-1, got %q", s.UserID)
	}

	other := NewSession("user-1", "")
	if other.ID == s.ID {
		t.Error("expected unique session ids")
	}
}
