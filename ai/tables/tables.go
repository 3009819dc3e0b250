// Package tables loads the engine's curated data tables: mood, topic,
// intent, entity, crisis, template, wisdom, suggestion, and theme
// vocabularies. Defaults are embedded in the binary; a deployment may
// override individual documents from a directory on disk.
package tables

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/hisr2024/MindVibe-sub009/ai/configloader"
)

//go:embed defaults/*.yaml
var defaultFS embed.FS

// Document paths inside the defaults tree and the override directory.
const (
	pathMoods       = "moods.yaml"
	pathTopics      = "topics.yaml"
	pathIntents     = "intents.yaml"
	pathEntities    = "entities.yaml"
	pathCrisis      = "crisis.yaml"
	pathTemplates   = "templates.yaml"
	pathWisdom      = "wisdom.yaml"
	pathSuggestions = "suggestions.yaml"
	pathThemes      = "themes.yaml"
	pathCollector   = "collector.yaml"
)

// Set is one immutable, fully-validated snapshot of every table.
// All engine components share a single Set; nothing mutates it after Load.
type Set struct {
	Moods       *MoodTable
	Topics      *TopicTable
	Intents     *IntentTable
	Entities    *EntityTable
	Crisis      *CrisisTable
	Templates   *TemplateTable
	Wisdom      *WisdomTable
	Suggestions *SuggestionTable
	Themes      *ThemeTable
	Collector   *CollectorTable

	negative map[string]bool
}

// Load builds a Set from the embedded defaults, applying any overrides
// found in overrideDir. A malformed override falls back to the embedded
// document with a logged warning; a malformed embedded document is a
// build defect and returns an error.
func Load(overrideDir string) (*Set, error) {
	defaults, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		return nil, err
	}
	loader := configloader.NewLoader(defaults, overrideDir)

	s := &Set{}
	if s.Moods, err = loadDoc(loader, pathMoods, validateMoods); err != nil {
		return nil, err
	}
	if s.Topics, err = loadDoc(loader, pathTopics, validateTopics); err != nil {
		return nil, err
	}
	if s.Intents, err = loadDoc(loader, pathIntents, validateIntents); err != nil {
		return nil, err
	}
	if s.Entities, err = loadDoc(loader, pathEntities, noValidation[EntityTable]); err != nil {
		return nil, err
	}
	if s.Crisis, err = loadDoc(loader, pathCrisis, validateCrisis); err != nil {
		return nil, err
	}
	if s.Templates, err = loadDoc(loader, pathTemplates, validateTemplates); err != nil {
		return nil, err
	}
	if s.Wisdom, err = loadDoc(loader, pathWisdom, validateWisdom); err != nil {
		return nil, err
	}
	if s.Suggestions, err = loadDoc(loader, pathSuggestions, validateSuggestions); err != nil {
		return nil, err
	}
	if s.Themes, err = loadDoc(loader, pathThemes, validateThemes); err != nil {
		return nil, err
	}
	if s.Collector, err = loadDoc(loader, pathCollector, noValidation[CollectorTable]); err != nil {
		return nil, err
	}

	s.negative = make(map[string]bool, len(s.Moods.Negative))
	for _, name := range s.Moods.Negative {
		s.negative[name] = true
	}

	return s, nil
}

// loadDoc loads one document and validates it. When an override is in play
// and fails to parse or validate, a fresh target is re-loaded from the
// embedded defaults so no partially-applied override state leaks through.
func loadDoc[T any](loader *configloader.Loader, path string, validate func(*T) error) (*T, error) {
	target := new(T)
	err := loader.Load(path, target)
	if err == nil {
		err = validate(target)
	}
	if err == nil {
		return target, nil
	}

	if !loader.Overridden(path) {
		return nil, fmt.Errorf("embedded table %s: %w", path, err)
	}

	slog.Warn("table override rejected, using embedded default", "path", path, "err", err)
	target = new(T)
	if err := loader.LoadEmbedded(path, target); err != nil {
		return nil, fmt.Errorf("embedded table %s: %w", path, err)
	}
	if err := validate(target); err != nil {
		return nil, fmt.Errorf("embedded table %s: %w", path, err)
	}
	return target, nil
}

func noValidation[T any](*T) error { return nil }

func validateMoods(t *MoodTable) error {
	if len(t.Moods) == 0 {
		return fmt.Errorf("no mood entries")
	}
	names := make(map[string]bool, len(t.Moods))
	for _, m := range t.Moods {
		if m.Name == "" {
			return fmt.Errorf("mood with empty name")
		}
		if names[m.Name] {
			return fmt.Errorf("duplicate mood %q", m.Name)
		}
		names[m.Name] = true
		for _, kw := range m.Keywords {
			if kw.Term == "" || kw.Weight <= 0 {
				return fmt.Errorf("mood %q: bad keyword %q (weight %d)", m.Name, kw.Term, kw.Weight)
			}
		}
	}
	for _, n := range t.Negative {
		if !names[n] {
			return fmt.Errorf("negative set names unknown mood %q", n)
		}
	}
	return nil
}

func validateTopics(t *TopicTable) error {
	if len(t.Topics) == 0 {
		return fmt.Errorf("no topic entries")
	}
	for _, topic := range t.Topics {
		if topic.Name == "" || len(topic.Keywords) == 0 {
			return fmt.Errorf("topic %q: empty name or keyword list", topic.Name)
		}
	}
	return nil
}

func validateIntents(t *IntentTable) error {
	if len(t.Intents) == 0 {
		return fmt.Errorf("no intent entries")
	}
	for _, in := range t.Intents {
		if in.Name == t.Default {
			return nil
		}
	}
	return fmt.Errorf("default intent %q not present in table", t.Default)
}

func validateCrisis(t *CrisisTable) error {
	if len(t.Phrases) == 0 {
		return fmt.Errorf("no crisis phrases")
	}
	if t.Message == "" || t.Hotline == "" {
		return fmt.Errorf("crisis message and hotline are required")
	}
	return nil
}

func validateTemplates(t *TemplateTable) error {
	if len(t.Openers.Default) == 0 {
		return fmt.Errorf("default opener pool is empty")
	}
	if len(t.Bodies.Default) == 0 {
		return fmt.Errorf("default body pool is empty")
	}
	if len(t.Followups.Default) == 0 {
		return fmt.Errorf("default followup pool is empty")
	}
	return nil
}

func validateWisdom(t *WisdomTable) error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("no wisdom entries")
	}
	for i, e := range t.Entries {
		if e.Text == "" || e.Principle == "" {
			return fmt.Errorf("wisdom entry %d: text and principle are required", i)
		}
	}
	return nil
}

func validateSuggestions(t *SuggestionTable) error {
	for _, tool := range []string{"kiaan", "viyoga", "ardha", "compass", "journey", "emotional-reset"} {
		if _, ok := t.Targets[tool]; !ok {
			return fmt.Errorf("suggestion target %q missing", tool)
		}
	}
	return nil
}

func validateThemes(t *ThemeTable) error {
	if len(t.Themes) == 0 {
		return fmt.Errorf("no theme entries")
	}
	for _, th := range t.Themes {
		if th.Name == "" || len(th.Keywords) == 0 {
			return fmt.Errorf("theme %q: empty name or keyword list", th.Name)
		}
	}
	return nil
}

// IsNegative reports whether the mood name belongs to the negative set.
func (s *Set) IsNegative(mood string) bool {
	return s.negative[mood]
}

// Versions returns the version number of every loaded document, keyed by
// document name. Surfaced on the system overview endpoint.
func (s *Set) Versions() map[string]int {
	return map[string]int{
		"moods":       s.Moods.Version,
		"topics":      s.Topics.Version,
		"intents":     s.Intents.Version,
		"entities":    s.Entities.Version,
		"crisis":      s.Crisis.Version,
		"templates":   s.Templates.Version,
		"wisdom":      s.Wisdom.Version,
		"suggestions": s.Suggestions.Version,
		"themes":      s.Themes.Version,
		"collector":   s.Collector.Version,
	}
}

var (
	defaultSet     *Set
	defaultSetOnce sync.Once
)

// Default returns the Set built from the embedded defaults only.
// The embedded tables are covered by the test suite, so a load failure
// here means a corrupt build rather than a runtime condition.
func Default() *Set {
	defaultSetOnce.Do(func() {
		s, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("embedded tables corrupt: %v", err))
		}
		defaultSet = s
	})
	return defaultSet
}
