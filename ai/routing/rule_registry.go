package routing

import (
	"slices"
	"strings"
	"sync"

	"github.com/hisr2024/MindVibe-sub009/ai/tables"
)

// RuleRegistry manages suggestion rules with priority-ordered
// evaluation. Rules can be registered or replaced at runtime; the
// built-in rule set covers every tool surface.
type RuleRegistry struct {
	mu     sync.RWMutex
	ts     *tables.Set
	rules  map[string]Rule
	sorted []Rule // cache for evaluation order
}

// NewRuleRegistry creates an empty registry over the given tables.
func NewRuleRegistry(ts *tables.Set) *RuleRegistry {
	return &RuleRegistry{
		ts:    ts,
		rules: make(map[string]Rule),
	}
}

// Register adds or replaces a rule by name.
func (r *RuleRegistry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules[rule.Name] = rule
	r.rebuildSortedCache()
}

// rebuildSortedCache rebuilds the priority-sorted rule slice.
// Must be called with lock held. Name is the tiebreaker so map
// iteration order never leaks into evaluation order.
func (r *RuleRegistry) rebuildSortedCache() {
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	slices.SortFunc(rules, func(a, b Rule) int {
		if a.Priority != b.Priority {
			return b.Priority - a.Priority
		}
		return strings.Compare(a.Name, b.Name)
	})
	r.sorted = rules
}

// Suggest evaluates the active tool's rules in priority order and
// returns the first suggestion, or nil when no rule fires.
func (r *RuleRegistry) Suggest(in Input) *Suggestion {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.sorted {
		if rule.Tool != in.Tool {
			continue
		}
		if s := rule.Decide(in, r.ts); s != nil {
			return s
		}
	}
	return nil
}

// suggestionFor builds the fixed tuple for a target tool from the
// suggestion table.
func suggestionFor(ts *tables.Set, target Tool) *Suggestion {
	t, ok := ts.Suggestions.Targets[string(target)]
	if !ok {
		return nil
	}
	return &Suggestion{
		TargetTool:    target,
		Href:          t.Href,
		LabelKey:      t.LabelKey,
		LabelFallback: t.LabelFallback,
	}
}

// RegisterDefaults registers the built-in rule set:
//
//	viyoga  -> always ardha
//	ardha   -> always kiaan
//	compass -> viyoga on a high-reactivity keyword, else emotional-reset
//	kiaan   -> journey on a practice keyword or a theme seen twice
//	journey -> viyoga when the user reports being triggered today
func (r *RuleRegistry) RegisterDefaults() {
	r.Register(Rule{
		Name:     "viyoga_to_ardha",
		Tool:     ToolViyoga,
		Priority: 100,
		Decide: func(_ Input, ts *tables.Set) *Suggestion {
			return suggestionFor(ts, ToolArdha)
		},
	})
	r.Register(Rule{
		Name:     "ardha_to_kiaan",
		Tool:     ToolArdha,
		Priority: 100,
		Decide: func(_ Input, ts *tables.Set) *Suggestion {
			return suggestionFor(ts, ToolKiaan)
		},
	})
	r.Register(Rule{
		Name:     "compass_high_reactivity",
		Tool:     ToolCompass,
		Priority: 110,
		Decide: func(in Input, ts *tables.Set) *Suggestion {
			if containsAny(in.UserText, ts.Suggestions.HighReactivity) ||
				containsAny(in.AIText, ts.Suggestions.HighReactivity) {
				return suggestionFor(ts, ToolViyoga)
			}
			return nil
		},
	})
	r.Register(Rule{
		Name:     "compass_reset",
		Tool:     ToolCompass,
		Priority: 100,
		Decide: func(_ Input, ts *tables.Set) *Suggestion {
			return suggestionFor(ts, ToolEmotionalReset)
		},
	})
	r.Register(Rule{
		Name:     "kiaan_practice",
		Tool:     ToolKiaan,
		Priority: 110,
		Decide: func(in Input, ts *tables.Set) *Suggestion {
			if containsAny(in.UserText, ts.Suggestions.Practice) {
				return suggestionFor(ts, ToolJourney)
			}
			return nil
		},
	})
	r.Register(Rule{
		Name:     "kiaan_recurring_theme",
		Tool:     ToolKiaan,
		Priority: 100,
		Decide: func(in Input, ts *tables.Set) *Suggestion {
			// A theme seen exactly once is not a pattern yet.
			for _, n := range in.ThemeCounts {
				if n >= 2 {
					return suggestionFor(ts, ToolJourney)
				}
			}
			return nil
		},
	})
	r.Register(Rule{
		Name:     "journey_triggered_today",
		Tool:     ToolJourney,
		Priority: 100,
		Decide: func(in Input, ts *tables.Set) *Suggestion {
			rule := ts.Suggestions.TriggeredToday
			if containsAny(in.UserText, rule.Markers) && containsAny(in.UserText, rule.Times) {
				return suggestionFor(ts, ToolViyoga)
			}
			return nil
		},
	})
}

// Global default registry over the embedded tables.
var defaultRegistry *RuleRegistry

func init() {
	defaultRegistry = NewRuleRegistry(tables.Default())
	defaultRegistry.RegisterDefaults()
}

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *RuleRegistry {
	return defaultRegistry
}

// Suggest evaluates the default registry.
func Suggest(in Input) *Suggestion {
	return DefaultRegistry().Suggest(in)
}
