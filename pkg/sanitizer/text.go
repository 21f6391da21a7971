package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func stripControl(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

func collapseWhitespace(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// SanitizeText cleans a user-supplied name, description or comment body.
func SanitizeText(input string) string {
	p := Pipeline{
		stripControl,
		collapseWhitespace,
	}
	return p.Apply(input)
}

// SanitizeEmail lowercases and trims an email address. Validation of the
// address shape is left to the validator layer.
func SanitizeEmail(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
