package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, s.Moods.Moods)
	assert.NotEmpty(t, s.Topics.Topics)
	assert.NotEmpty(t, s.Intents.Intents)
	assert.NotEmpty(t, s.Crisis.Phrases)
	assert.NotEmpty(t, s.Wisdom.Entries)
	assert.NotEmpty(t, s.Themes.Themes)
	assert.NotEmpty(t, s.Templates.Openers.Default)

	// Every tool the router can suggest needs a static target tuple.
	for _, tool := range []string{"kiaan", "viyoga", "ardha", "compass", "journey", "emotional-reset"} {
		target, ok := s.Suggestions.Targets[tool]
		require.True(t, ok, "missing target for %s", tool)
		assert.NotEmpty(t, target.Href)
		assert.NotEmpty(t, target.LabelFallback)
	}
}

func TestNegativeSetConsistency(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, m := range s.Moods.Moods {
		names[m.Name] = true
	}
	for _, n := range s.Moods.Negative {
		assert.True(t, names[n], "negative set references unknown mood %q", n)
	}

	assert.True(t, s.IsNegative("sad"))
	assert.False(t, s.IsNegative("grateful"))
	assert.False(t, s.IsNegative("neutral"))
}

func TestTermsAreFolded(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	for _, m := range s.Moods.Moods {
		for _, kw := range m.Keywords {
			assert.Equal(t, foldedForm(kw.Term), kw.Term, "mood %s keyword %q not lower-case", m.Name, kw.Term)
		}
	}
	for _, th := range s.Themes.Themes {
		for _, kw := range th.Keywords {
			assert.Equal(t, foldedForm(kw), kw, "theme %s keyword %q not lower-case", th.Name, kw)
		}
	}
}

func foldedForm(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	override := `version: 99
themes:
  - name: testing
    keywords: [unit test]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "themes.yaml"), []byte(override), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 99, s.Themes.Version)
	require.Len(t, s.Themes.Themes, 1)
	assert.Equal(t, "testing", s.Themes.Themes[0].Name)

	// Untouched documents still come from the embedded defaults.
	assert.NotEmpty(t, s.Moods.Moods)
}

func TestMalformedOverrideFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "themes.yaml"), []byte("themes: [broken"), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	// Embedded default survives a broken override.
	assert.NotEmpty(t, s.Themes.Themes)
	assert.NotEqual(t, 0, s.Themes.Version)
}

func TestInvalidOverrideFallsBack(t *testing.T) {
	dir := t.TempDir()
	// Parses fine but fails validation: a theme with no keywords.
	override := `version: 1
themes:
  - name: hollow
    keywords: []
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "themes.yaml"), []byte(override), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.NotEqual(t, "hollow", s.Themes.Themes[0].Name)
}

func TestVersionsReported(t *testing.T) {
	s := Default()
	versions := s.Versions()
	for _, doc := range []string{"moods", "topics", "intents", "crisis", "templates", "wisdom", "suggestions", "themes"} {
		assert.Positive(t, versions[doc], "document %s has no version", doc)
	}
}
