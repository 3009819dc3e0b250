package insight

import (
	"strings"

	"github.com/hisr2024/MindVibe-sub009/ai/internal/textnorm"
	"github.com/hisr2024/MindVibe-sub009/ai/signals"
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
)

// highIntensity is the mood intensity at which a turn counts as a
// reactivity observation.
const highIntensity = 0.5

// Collector aggregates per-turn extractor output into the session
// summary the merger consumes. One collector lives for one session and
// is owned by it; not safe for concurrent use.
type Collector struct {
	ts *tables.Set
	ex *signals.Extractor

	themeCounts map[string]int
	themeOrder  []string
	growth      map[string]bool
	growthOrder []string
	reactivity  map[string]float64
	awareness   map[string]bool
	awareOrder  []string
	turns       int
	steadyTurns int
}

// NewCollector returns an empty collector over the given tables.
func NewCollector(ts *tables.Set) *Collector {
	return &Collector{
		ts:          ts,
		ex:          signals.NewExtractor(ts),
		themeCounts: map[string]int{},
		growth:      map[string]bool{},
		reactivity:  map[string]float64{},
		awareness:   map[string]bool{},
	}
}

// Observe folds one user turn into the running summary. The raw
// message is scanned for theme and awareness phrases; the extraction
// supplies mood, intensity, and intent.
func (c *Collector) Observe(message string, ex signals.Extraction) {
	c.turns++
	folded := textnorm.Fold(message)

	for _, theme := range c.ex.Themes(message) {
		if c.themeCounts[theme] == 0 {
			c.themeOrder = append(c.themeOrder, theme)
		}
		c.themeCounts[theme]++
	}

	mood := string(ex.Mood)
	if name, ok := c.ts.Collector.GrowthMoods[mood]; ok {
		c.addGrowth(name)
	}
	if name, ok := c.ts.Collector.GrowthIntents[string(ex.Intent)]; ok {
		c.addGrowth(name)
	}
	if name, ok := c.ts.Collector.ReactivityMoods[mood]; ok && ex.MoodIntensity >= highIntensity {
		// A session keeps the strongest observation per pattern.
		if ex.MoodIntensity > c.reactivity[name] {
			c.reactivity[name] = ex.MoodIntensity
		}
	}
	for area, phrases := range c.ts.Collector.AwarenessPhrases {
		if c.awareness[area] {
			continue
		}
		for _, phrase := range phrases {
			if strings.Contains(folded, phrase) {
				c.awareness[area] = true
				c.awareOrder = append(c.awareOrder, area)
				break
			}
		}
	}
	if !c.ex.IsNegative(ex.Mood) {
		c.steadyTurns++
	}
}

func (c *Collector) addGrowth(name string) {
	if c.growth[name] {
		return
	}
	c.growth[name] = true
	c.growthOrder = append(c.growthOrder, name)
}

// Signals returns the aggregated summary for the merger. Steadiness is
// the share of observed turns whose mood was not negative; with no
// turns it stays unobserved.
func (c *Collector) Signals() *SessionSignals {
	sig := &SessionSignals{
		ThemesDetected:        append([]string(nil), c.themeOrder...),
		GrowthSignalsDetected: append([]string(nil), c.growthOrder...),
		AwarenessIndicators:   append([]string(nil), c.awareOrder...),
	}
	if len(c.reactivity) > 0 {
		sig.ReactivityMarkers = make(map[string]Intensity, len(c.reactivity))
		for name, v := range c.reactivity {
			sig.ReactivityMarkers[name] = Intensity(v)
		}
	}
	if c.turns > 0 {
		steady := float64(c.steadyTurns) / float64(c.turns)
		sig.SteadinessObserved = &steady
	}
	return sig
}

// ThemeCounts reports per-theme observation counts, used by the
// next-step router at session end.
func (c *Collector) ThemeCounts() map[string]int {
	out := make(map[string]int, len(c.themeCounts))
	for name, n := range c.themeCounts {
		out[name] = n
	}
	return out
}

// Turns reports how many user turns have been observed.
func (c *Collector) Turns() int { return c.turns }
