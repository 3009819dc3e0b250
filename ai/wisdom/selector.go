// Package wisdom selects curated maxims for the later phases of a
// conversation. Entries are scored against the current mood, topic, and
// phase, with a novelty bonus against the last principle used.
package wisdom

import (
	"math/rand"
	"slices"

	"github.com/hisr2024/MindVibe-sub009/ai/signals"
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
)

// Scoring weights. An entry keeps only what it earns: mood and topic
// matches, principle novelty, and phase affinity.
const (
	moodMatchScore     = 3
	topicMatchScore    = 2
	noveltyScore       = 3
	phaseAffinityScore = 2

	// Entries scoring this or less are discarded outright.
	discardThreshold = 2

	// Uniform draw among this many of the highest-scored survivors.
	topChoiceWindow = 3
)

// Selection is one chosen wisdom entry.
type Selection struct {
	Text      string `json:"text"`
	Principle string `json:"principle"`
}

// Selector scores and draws wisdom entries from one table set.
// Safe for concurrent use: it only reads the tables.
type Selector struct {
	ts *tables.Set
}

// NewSelector creates a selector over the given tables.
func NewSelector(ts *tables.Set) *Selector {
	return &Selector{ts: ts}
}

type candidate struct {
	entry tables.WisdomEntry
	score int
}

// Select returns a wisdom entry for the given phase, or nil when the phase
// carries no wisdom or no entry scores above the discard threshold.
// Only "guide" and "empower" phases ever receive wisdom. lastPrinciple may
// be empty (first selection of a conversation); every principle then earns
// the novelty bonus. rng drives the uniform draw among the top candidates.
func (s *Selector) Select(rng *rand.Rand, phase string, mood signals.Mood, topic signals.Topic, lastPrinciple string) *Selection {
	affinity, ok := s.ts.Wisdom.PhaseAffinity[phase]
	if !ok {
		return nil
	}

	scored := make([]candidate, 0, len(s.ts.Wisdom.Entries))
	for _, entry := range s.ts.Wisdom.Entries {
		score := 0
		if slices.Contains(entry.Moods, string(mood)) {
			score += moodMatchScore
		}
		if slices.Contains(entry.Topics, string(topic)) {
			score += topicMatchScore
		}
		if entry.Principle != lastPrinciple {
			score += noveltyScore
		}
		if slices.Contains(affinity, entry.Principle) {
			score += phaseAffinityScore
		}
		if score <= discardThreshold {
			continue
		}
		scored = append(scored, candidate{entry: entry, score: score})
	}

	if len(scored) == 0 {
		return nil
	}

	// Stable sort keeps table order among equal scores.
	slices.SortStableFunc(scored, func(a, b candidate) int {
		return b.score - a.score
	})

	window := topChoiceWindow
	if len(scored) < window {
		window = len(scored)
	}
	chosen := scored[rng.Intn(window)]

	return &Selection{
		Text:      chosen.entry.Text,
		Principle: chosen.entry.Principle,
	}
}

// Daily returns the wisdom entry for a calendar day, stable for that day.
// The feed and the daily endpoint use it so every caller sees the same
// entry until midnight.
func (s *Selector) Daily(year int, yearDay int) Selection {
	entries := s.ts.Wisdom.Entries
	idx := (year*366 + yearDay) % len(entries)
	return Selection{
		Text:      entries[idx].Text,
		Principle: entries[idx].Principle,
	}
}
