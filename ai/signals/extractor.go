package signals

import (
	"sort"
	"strings"

	"github.com/hisr2024/MindVibe-sub009/ai/internal/textnorm"
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
)

// Extractor runs the classification pipeline against one table set.
// Safe for concurrent use: it only reads the tables.
type Extractor struct {
	ts *tables.Set
	// Highest weight sum any single mood pool can reach, precomputed for
	// intensity normalization.
	maxMoodScore int
}

// NewExtractor creates an extractor over the given tables.
func NewExtractor(ts *tables.Set) *Extractor {
	maxScore := 0
	for _, m := range ts.Moods.Moods {
		sum := 0
		for _, kw := range m.Keywords {
			sum += kw.Weight
		}
		if sum > maxScore {
			maxScore = sum
		}
	}
	return &Extractor{ts: ts, maxMoodScore: maxScore}
}

var defaultExtractor = NewExtractor(tables.Default())

// DefaultExtractor returns the extractor over the embedded default tables.
func DefaultExtractor() *Extractor {
	return defaultExtractor
}

// Classify turns one message into mood/topic/intent/entity signals.
// The crisis check runs before every other stage on every message; when it
// fires, the remaining stages are bypassed and the fixed safety payload is
// returned alongside an all-defaults extraction.
func (e *Extractor) Classify(message string) (Extraction, *SafetyPayload) {
	folded := textnorm.Fold(message)

	if e.isCrisis(folded) {
		return Extraction{
			Mood:          MoodNeutral,
			MoodIntensity: NeutralIntensity,
			Topic:         TopicGeneral,
			Intent:        Intent(e.ts.Intents.Default),
		}, e.safetyPayload()
	}

	mood, intensity := e.detectMood(folded)
	return Extraction{
		Mood:          mood,
		MoodIntensity: intensity,
		Topic:         e.detectTopic(folded),
		Intent:        e.detectIntent(folded),
		Entities:      e.extractEntities(folded),
	}, nil
}

// IsNegative reports whether mood belongs to the table's negative set.
// Neutral is not negative.
func (e *Extractor) IsNegative(mood Mood) bool {
	return e.ts.IsNegative(string(mood))
}

// isCrisis scans the folded message against the crisis phrase list.
// Substring match on purpose: a phrase must not slip past on punctuation
// or run-together words.
func (e *Extractor) isCrisis(folded string) bool {
	for _, phrase := range e.ts.Crisis.Phrases {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	return false
}

func (e *Extractor) safetyPayload() *SafetyPayload {
	return &SafetyPayload{
		Message: e.ts.Crisis.Message,
		Hotline: e.ts.Crisis.Hotline,
	}
}

// detectMood sums keyword weights per label and normalizes the winner's
// score against the strongest possible pool. All-zero scores report
// neutral at the fixed baseline intensity. Ties break toward the earlier
// table entry.
func (e *Extractor) detectMood(folded string) (Mood, float64) {
	bestScore := 0
	bestMood := MoodNeutral
	for _, entry := range e.ts.Moods.Moods {
		score := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(folded, kw.Term) {
				score += kw.Weight
			}
		}
		if score > bestScore {
			bestScore = score
			bestMood = Mood(entry.Name)
		}
	}

	if bestScore == 0 {
		return MoodNeutral, NeutralIntensity
	}

	intensity := float64(bestScore) / (float64(e.maxMoodScore) * NeutralIntensity)
	if intensity > 1.0 {
		intensity = 1.0
	}
	return bestMood, intensity
}

// detectTopic counts keyword hits per topic; the first strictly-highest
// count wins, no hits at all falls back to general.
func (e *Extractor) detectTopic(folded string) Topic {
	bestHits := 0
	best := TopicGeneral
	for _, entry := range e.ts.Topics.Topics {
		hits := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(folded, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = Topic(entry.Name)
		}
	}
	return best
}

// detectIntent walks the intent table in priority order; the first entry
// with any phrase hit wins. Phrases match on word boundaries so a bare
// "hi" doesn't fire inside "this". Messages with no hit fall back to the
// table default.
func (e *Extractor) detectIntent(folded string) Intent {
	for _, entry := range e.ts.Intents.Intents {
		for _, phrase := range entry.Phrases {
			if textnorm.HasTerm(folded, phrase) {
				return Intent(entry.Name)
			}
		}
	}
	return Intent(e.ts.Intents.Default)
}

// Themes returns the theme names whose keywords appear in arbitrary
// text. Case-insensitive, de-duplicated, ordered by where each theme
// first surfaces in the text; themes tied on position keep table order.
// Empty or keyword-free input yields an empty (non-nil) result.
func (e *Extractor) Themes(text string) []string {
	out := []string{}
	folded := textnorm.Fold(text)
	if folded == "" {
		return out
	}
	type themeHit struct {
		name string
		pos  int
	}
	var hits []themeHit
	for _, entry := range e.ts.Themes.Themes {
		first := -1
		for _, kw := range entry.Keywords {
			if idx := strings.Index(folded, kw); idx >= 0 && (first < 0 || idx < first) {
				first = idx
			}
		}
		if first >= 0 {
			hits = append(hits, themeHit{name: entry.Name, pos: first})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	for _, hit := range hits {
		out = append(out, hit.name)
	}
	return out
}

// extractEntities matches the person/event/time vocabularies on word
// boundaries. A person term also yields the combined "my <person>" token
// when the possessive is present. De-duplicated, first occurrence wins.
func (e *Extractor) extractEntities(folded string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(token string) {
		if !seen[token] {
			seen[token] = true
			out = append(out, token)
		}
	}

	for _, person := range e.ts.Entities.People {
		if !textnorm.HasTerm(folded, person) {
			continue
		}
		add(person)
		if possessive := "my " + person; textnorm.HasTerm(folded, possessive) {
			add(possessive)
		}
	}
	for _, event := range e.ts.Entities.Events {
		if textnorm.HasTerm(folded, event) {
			add(event)
		}
	}
	for _, t := range e.ts.Entities.Times {
		if textnorm.HasTerm(folded, t) {
			add(t)
		}
	}
	return out
}
