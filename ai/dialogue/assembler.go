// Package dialogue advances the conversational phase machine and
// assembles templated replies. Which template pool is used for a given
// turn is fully deterministic; which member of the pool is drawn comes
// from an injected random source so tests can assert pool membership.
package dialogue

import (
	"math/rand"
	"strings"

	"github.com/hisr2024/MindVibe-sub009/ai/signals"
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
	"github.com/hisr2024/MindVibe-sub009/ai/wisdom"
)

// State is the per-conversation accumulator fed back into every turn.
// The empty value is a fresh conversation.
type State struct {
	TurnCount           int            `json:"turnCount"`
	MoodHistory         []signals.Mood `json:"moodHistory"`
	LastWisdomPrinciple string         `json:"lastWisdomPrinciple,omitempty"`
}

// clone returns a structurally independent copy of the state.
func (s State) clone() State {
	out := s
	out.MoodHistory = make([]signals.Mood, len(s.MoodHistory))
	copy(out.MoodHistory, s.MoodHistory)
	return out
}

// Reply is the assembled result of one turn.
type Reply struct {
	Response   string             `json:"response"`
	Extraction signals.Extraction `json:"extraction"`
	Phase      Phase              `json:"phase"`
	Wisdom     *wisdom.Selection  `json:"wisdom,omitempty"`
	Crisis     bool               `json:"crisis,omitempty"`
	Hotline    string             `json:"hotline,omitempty"`
}

// Assembler builds replies over one table set. Stateless and safe for
// concurrent use; all per-conversation state travels in State.
type Assembler struct {
	extractor *signals.Extractor
	selector  *wisdom.Selector
	ts        *tables.Set
}

// NewAssembler creates an assembler over the given tables.
func NewAssembler(ts *tables.Set) *Assembler {
	return &Assembler{
		extractor: signals.NewExtractor(ts),
		selector:  wisdom.NewSelector(ts),
		ts:        ts,
	}
}

// Extractor exposes the assembler's extractor for callers that classify
// without responding.
func (a *Assembler) Extractor() *signals.Extractor {
	return a.extractor
}

// Respond runs one turn: classify the message, compute the phase, select
// templates, and return the assembled reply plus the advanced state.
// The input state is never mutated.
//
// Crisis messages short-circuit the whole pipeline: the fixed safety
// payload comes back with phase connect and no wisdom, and the state is
// returned unchanged.
func (a *Assembler) Respond(rng *rand.Rand, message string, st State) (Reply, State) {
	extraction, safety := a.extractor.Classify(message)
	if safety != nil {
		return Reply{
			Response:   safety.Message,
			Extraction: extraction,
			Phase:      PhaseConnect,
			Crisis:     true,
			Hotline:    safety.Hotline,
		}, st.clone()
	}

	phase := PhaseFor(st.TurnCount, a.extractor.IsNegative(extraction.Mood))

	var sel *wisdom.Selection
	if phase == PhaseGuide || phase == PhaseEmpower {
		sel = a.selector.Select(rng, string(phase), extraction.Mood, extraction.Topic, st.LastWisdomPrinciple)
	}

	response := a.assemble(rng, extraction, phase, sel)

	next := st.clone()
	next.TurnCount++
	next.MoodHistory = append(next.MoodHistory, extraction.Mood)
	if sel != nil {
		next.LastWisdomPrinciple = sel.Principle
	}

	return Reply{
		Response:   response,
		Extraction: extraction,
		Phase:      phase,
		Wisdom:     sel,
	}, next
}

// assemble concatenates opener, body, optional wisdom, and follow-up.
func (a *Assembler) assemble(rng *rand.Rand, ex signals.Extraction, phase Phase, sel *wisdom.Selection) string {
	parts := make([]string, 0, 4)
	parts = append(parts, a.opener(rng, ex))
	parts = append(parts, a.body(rng, ex))
	if sel != nil {
		parts = append(parts, sel.Text)
	}
	parts = append(parts, a.followup(rng, phase))
	return strings.Join(parts, " ")
}

// opener pools key on mood; a known mood always wins, an entity-bearing
// message without a mood pool gets the entity variant, everything else
// the default pool.
func (a *Assembler) opener(rng *rand.Rand, ex signals.Extraction) string {
	pools := a.ts.Templates.Openers
	if pool, ok := pools.ByMood[string(ex.Mood)]; ok && len(pool) > 0 {
		return draw(rng, pool)
	}
	if len(ex.Entities) > 0 && len(pools.WithEntity) > 0 {
		line := draw(rng, pools.WithEntity)
		return strings.ReplaceAll(line, "{entity}", ex.Entities[0])
	}
	return draw(rng, pools.Default)
}

// body pools key on intent first (an explicitly detected intent outranks
// the topic), then topic, then the default pool. The default intent has
// no pool of its own, so shared everyday messages flow to their topic.
func (a *Assembler) body(rng *rand.Rand, ex signals.Extraction) string {
	pools := a.ts.Templates.Bodies
	if pool, ok := pools.ByIntent[string(ex.Intent)]; ok && len(pool) > 0 {
		return draw(rng, pool)
	}
	if pool, ok := pools.ByTopic[string(ex.Topic)]; ok && len(pool) > 0 {
		return draw(rng, pool)
	}
	return draw(rng, pools.Default)
}

// followup pools key on phase.
func (a *Assembler) followup(rng *rand.Rand, phase Phase) string {
	pools := a.ts.Templates.Followups
	if pool, ok := pools.ByPhase[string(phase)]; ok && len(pool) > 0 {
		return draw(rng, pool)
	}
	return draw(rng, pools.Default)
}

func draw(rng *rand.Rand, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}
