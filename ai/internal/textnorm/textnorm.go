// Package textnorm provides text normalization helpers for the ai package.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fold lower-cases input for keyword scanning and collapses runs of
// whitespace into single spaces. Scanning tables are stored lower-cased,
// so callers fold once per message and reuse the result across stages.
func Fold(input string) string {
	// Quick ASCII-only path (most common for English input)
	isASCII := true
	for _, r := range input {
		if r > unicode.MaxASCII {
			isASCII = false
			break
		}
	}

	var lower string
	if isASCII {
		lower = strings.ToLower(input)
	} else {
		lower = strings.ToLower(strings.ToValidUTF8(input, ""))
	}

	return strings.Join(strings.Fields(lower), " ")
}

// HasTerm reports whether text contains term bounded by non-alphanumeric
// runes on both sides. Both arguments must already be folded. Multi-word
// terms match across their internal spaces ("last night").
func HasTerm(text, term string) bool {
	if term == "" || text == "" {
		return false
	}
	for start := 0; start <= len(text)-len(term); {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		if boundaryBefore(text, idx) && boundaryAfter(text, end) {
			return true
		}
		start = idx + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Truncate truncates a string to a maximum length.
// Uses rune-level truncation so multi-byte characters are never split.
// Returns empty string if maxLen <= 0 to prevent slice bounds panic.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
