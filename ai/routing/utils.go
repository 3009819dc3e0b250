package routing

import (
	"strings"

	"github.com/hisr2024/MindVibe-sub009/ai/internal/textnorm"
	"github.com/hisr2024/MindVibe-sub009/ai/signals"
)

// containsAny reports whether the folded text contains any of the
// terms. Terms come from the suggestion table and are stored folded.
func containsAny(text string, terms []string) bool {
	if text == "" {
		return false
	}
	folded := textnorm.Fold(text)
	for _, term := range terms {
		if term != "" && strings.Contains(folded, term) {
			return true
		}
	}
	return false
}

// ExtractThemes returns the theme names found in arbitrary text, using
// the same vocabulary the profile merger tracks. Case-insensitive,
// de-duplicated; empty input yields an empty list.
func ExtractThemes(text string) []string {
	return signals.DefaultExtractor().Themes(text)
}
