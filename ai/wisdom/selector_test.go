package wisdom

import (
	"math/rand"
	"testing"

	"github.com/hisr2024/MindVibe-sub009/ai/signals"
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestSelect_OnlyLatePhasesCarryWisdom(t *testing.T) {
	s := NewSelector(tables.Default())
	rng := testRNG()

	for _, phase := range []string{"connect", "listen", "understand", "", "nonsense"} {
		if got := s.Select(rng, phase, signals.MoodAnxious, "work", ""); got != nil {
			t.Errorf("Select(phase=%q) = %+v, want nil", phase, got)
		}
	}

	for _, phase := range []string{"guide", "empower"} {
		if got := s.Select(rng, phase, signals.MoodAnxious, "work", ""); got == nil {
			t.Errorf("Select(phase=%q) = nil, want an entry", phase)
		}
	}
}

func TestSelect_DrawsFromTopWindow(t *testing.T) {
	s := NewSelector(tables.Default())
	rng := testRNG()

	// With a fresh conversation the draw must always land on one of the
	// three highest-scoring entries. Recompute the expected window here
	// instead of hardcoding table content.
	affinity := tables.Default().Wisdom.PhaseAffinity["guide"]
	inAffinity := func(p string) bool {
		for _, a := range affinity {
			if a == p {
				return true
			}
		}
		return false
	}
	type scored struct {
		principle string
		score     int
	}
	var all []scored
	for _, e := range tables.Default().Wisdom.Entries {
		score := 3 // novelty always applies with no prior principle
		for _, m := range e.Moods {
			if m == "anxious" {
				score += 3
				break
			}
		}
		for _, tp := range e.Topics {
			if tp == "work" {
				score += 2
				break
			}
		}
		if inAffinity(e.Principle) {
			score += 2
		}
		if score > 2 {
			all = append(all, scored{e.Principle, score})
		}
	}
	// Anything at or above the third-best score is drawable; principles
	// below that score must never be drawn.
	best := make([]int, len(all))
	for i, c := range all {
		best[i] = c.score
	}
	for i := 0; i < len(best); i++ {
		for j := i + 1; j < len(best); j++ {
			if best[j] > best[i] {
				best[i], best[j] = best[j], best[i]
			}
		}
	}
	cutoff := best[2]
	valid := make(map[string]bool)
	for _, c := range all {
		if c.score >= cutoff {
			valid[c.principle] = true
		}
	}

	for i := 0; i < 50; i++ {
		got := s.Select(rng, "guide", signals.MoodAnxious, "work", "")
		if got == nil {
			t.Fatal("Select returned nil for a guide phase with matching entries")
		}
		if !valid[got.Principle] {
			t.Errorf("Select principle %q outside the top-score window %v", got.Principle, valid)
		}
	}
}

func TestSelect_NoveltyAvoidsRepeatPrinciple(t *testing.T) {
	s := NewSelector(tables.Default())
	rng := testRNG()

	// The last-used principle loses its novelty bonus; with several
	// same-score alternatives it must drop out of the draw window.
	for i := 0; i < 30; i++ {
		got := s.Select(rng, "guide", signals.MoodAnxious, "work", "equanimity")
		if got == nil {
			t.Fatal("Select returned nil")
		}
		if got.Principle == "equanimity" {
			t.Fatal("Select repeated the last-used principle despite fresh alternatives")
		}
	}
}

func TestSelect_DiscardsLowScores(t *testing.T) {
	ts := &tables.Set{Wisdom: &tables.WisdomTable{
		PhaseAffinity: map[string][]string{
			"guide":   {"presence"},
			"empower": {"courage"},
		},
		Entries: []tables.WisdomEntry{
			{Text: "a", Principle: "presence", Moods: []string{"anxious"}, Topics: []string{"work"}},
			{Text: "b", Principle: "courage", Moods: []string{"fearful"}, Topics: []string{"self"}},
		},
	}}
	s := NewSelector(ts)
	rng := testRNG()

	// b scores only the empower affinity (2) once its novelty is gone:
	// discarded, so a is the single survivor.
	for i := 0; i < 10; i++ {
		got := s.Select(rng, "empower", "neutral", "general", "courage")
		if got == nil || got.Principle != "presence" {
			t.Fatalf("Select = %+v, want the sole surviving entry (presence)", got)
		}
	}
}

func TestSelect_AllDiscardedReturnsNil(t *testing.T) {
	ts := &tables.Set{Wisdom: &tables.WisdomTable{
		PhaseAffinity: map[string][]string{"guide": {"other"}},
		Entries: []tables.WisdomEntry{
			{Text: "only", Principle: "stale", Moods: []string{"sad"}, Topics: []string{"loss"}},
		},
	}}
	s := NewSelector(ts)

	if got := s.Select(testRNG(), "guide", "neutral", "general", "stale"); got != nil {
		t.Errorf("Select = %+v, want nil when every entry is discarded", got)
	}
}

func TestDaily_StableWithinDay(t *testing.T) {
	s := NewSelector(tables.Default())

	first := s.Daily(2026, 120)
	for i := 0; i < 5; i++ {
		if got := s.Daily(2026, 120); got != first {
			t.Fatalf("Daily not stable within a day: %+v vs %+v", got, first)
		}
	}
	if first.Text == "" || first.Principle == "" {
		t.Errorf("Daily returned an empty selection: %+v", first)
	}
}
