package sanitizer

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "garden drill", "garden drill"},
		{"leading and trailing space", "  garden drill  ", "garden drill"},
		{"inner whitespace collapsed", "garden \t  drill", "garden drill"},
		{"newlines collapsed", "line one\nline two", "line one line two"},
		{"control characters stripped", "dr\x00ill\x07", "drill"},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeTextIdempotent(t *testing.T) {
	inputs := []string{"  a  b  ", "drill", "", "x\ny"}
	for _, in := range inputs {
		once := SanitizeText(in)
		twice := SanitizeText(once)
		if once != twice {
			t.Errorf("SanitizeText not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  User@Example.COM "); got != "user@example.com" {
		t.Errorf("SanitizeEmail = %q, want user@example.com", got)
	}
}
