package tables

// The engine's curated vocabularies are versioned YAML documents, one per
// concern, parsed once at startup. Content edits never touch control flow.

// WeightedKeyword is a single scoring term in a mood pool.
type WeightedKeyword struct {
	Term   string `yaml:"term"`
	Weight int    `yaml:"weight"`
}

// MoodEntry is one mood label with its weighted keyword pool.
// Document order is significant: score ties break toward earlier entries.
type MoodEntry struct {
	Name     string            `yaml:"name"`
	Keywords []WeightedKeyword `yaml:"keywords"`
}

// MoodTable holds every mood label plus the negative-mood set.
type MoodTable struct {
	Version  int         `yaml:"version"`
	Negative []string    `yaml:"negative"`
	Moods    []MoodEntry `yaml:"moods"`
}

// TopicEntry is one topic with its flat keyword list.
type TopicEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// TopicTable holds the topic vocabulary. Order is significant: the first
// strictly-highest hit count wins.
type TopicTable struct {
	Version int          `yaml:"version"`
	Topics  []TopicEntry `yaml:"topics"`
}

// IntentEntry is one intent with its phrase list.
type IntentEntry struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// IntentTable holds the intent vocabulary in priority order, first match
// wins, with a declared default for phrase-free messages.
type IntentTable struct {
	Version int           `yaml:"version"`
	Default string        `yaml:"default"`
	Intents []IntentEntry `yaml:"intents"`
}

// EntityTable holds the person/event/time vocabularies for entity
// extraction. All terms are stored folded (lower-case).
type EntityTable struct {
	Version int      `yaml:"version"`
	People  []string `yaml:"people"`
	Events  []string `yaml:"events"`
	Times   []string `yaml:"times"`
}

// CrisisTable holds the short-circuit phrase list and the fixed safety
// payload returned when any phrase matches.
type CrisisTable struct {
	Version int      `yaml:"version"`
	Phrases []string `yaml:"phrases"`
	Message string   `yaml:"message"`
	Hotline string   `yaml:"hotline"`
}

// TemplateTable holds the opener/body/follow-up pools for response
// assembly. Pool choice is deterministic; member choice is random.
type TemplateTable struct {
	Version   int           `yaml:"version"`
	Openers   OpenerPools   `yaml:"openers"`
	Bodies    BodyPools     `yaml:"bodies"`
	Followups FollowupPools `yaml:"followups"`
}

// OpenerPools selects by mood, with entity-aware variants that carry an
// {entity} placeholder.
type OpenerPools struct {
	ByMood     map[string][]string `yaml:"by_mood"`
	WithEntity []string            `yaml:"with_entity"`
	Default    []string            `yaml:"default"`
}

// BodyPools selects by intent first, then topic, then the default pool.
type BodyPools struct {
	ByIntent map[string][]string `yaml:"by_intent"`
	ByTopic  map[string][]string `yaml:"by_topic"`
	Default  []string            `yaml:"default"`
}

// FollowupPools selects by conversational phase.
type FollowupPools struct {
	ByPhase map[string][]string `yaml:"by_phase"`
	Default []string            `yaml:"default"`
}

// WisdomEntry is one curated maxim tagged for selection scoring.
type WisdomEntry struct {
	Text      string   `yaml:"text"`
	Principle string   `yaml:"principle"`
	Moods     []string `yaml:"moods"`
	Topics    []string `yaml:"topics"`
}

// WisdomTable holds the wisdom entries plus the per-phase principle
// affinity lists used by the selector.
type WisdomTable struct {
	Version       int                 `yaml:"version"`
	PhaseAffinity map[string][]string `yaml:"phase_affinity"`
	Entries       []WisdomEntry       `yaml:"entries"`
}

// SuggestionTarget is the static tuple returned for a suggested tool.
type SuggestionTarget struct {
	Href          string `yaml:"href"`
	LabelKey      string `yaml:"label_key"`
	LabelFallback string `yaml:"label_fallback"`
}

// SuggestionTable holds the per-tool targets and the keyword lists the
// router rules test against.
type SuggestionTable struct {
	Version        int                         `yaml:"version"`
	Targets        map[string]SuggestionTarget `yaml:"targets"`
	HighReactivity []string                    `yaml:"high_reactivity"`
	Practice       []string                    `yaml:"practice"`
	TriggeredToday TriggeredTodayRule          `yaml:"triggered_today"`
}

// TriggeredTodayRule fires when any marker term and any time term both
// appear in the text ("I got triggered again this morning").
type TriggeredTodayRule struct {
	Markers []string `yaml:"markers"`
	Times   []string `yaml:"times"`
}

// ThemeEntry is one theme name with its keyword list, shared between the
// theme extractor and the profile merger.
type ThemeEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ThemeTable holds the theme vocabulary in document order.
type ThemeTable struct {
	Version int          `yaml:"version"`
	Themes  []ThemeEntry `yaml:"themes"`
}

// CollectorTable maps extractor output onto session-signal names for the
// profile merger: which moods and intents feed growth signals, which
// moods count as reactivity markers, and the awareness phrase list.
type CollectorTable struct {
	Version          int                 `yaml:"version"`
	GrowthMoods      map[string]string   `yaml:"growth_moods"`
	GrowthIntents    map[string]string   `yaml:"growth_intents"`
	ReactivityMoods  map[string]string   `yaml:"reactivity_moods"`
	AwarenessPhrases map[string][]string `yaml:"awareness_phrases"`
}
