// Package routing decides which MindVibe surface to offer next when the
// user finishes with a tool. Rules are registered per active tool with a
// priority; evaluation walks the active tool's rules in priority order
// and returns the first suggestion, or none.
package routing

import (
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
)

// Tool identifies one MindVibe surface.
type Tool string

const (
	ToolKiaan          Tool = "kiaan"
	ToolViyoga         Tool = "viyoga"
	ToolArdha          Tool = "ardha"
	ToolCompass        Tool = "compass"
	ToolJourney        Tool = "journey"
	ToolEmotionalReset Tool = "emotional-reset"
)

// Suggestion is the static next-step tuple for one target tool. Every
// field comes straight from the suggestion table; nothing is computed
// per request.
type Suggestion struct {
	TargetTool    Tool   `json:"targetTool"`
	Href          string `json:"href"`
	LabelKey      string `json:"labelKey"`
	LabelFallback string `json:"labelFallback"`
}

// Input carries everything a rule may inspect: the tool the user is
// leaving, the closing user and assistant text, and the per-theme
// observation counts collected during the session.
type Input struct {
	Tool        Tool           `json:"tool"`
	UserText    string         `json:"userText,omitempty"`
	AIText      string         `json:"aiText,omitempty"`
	ThemeCounts map[string]int `json:"themeCounts,omitempty"`
}

// Rule is one registered routing decision for a single active tool.
// Decide returns nil to pass evaluation to the next rule in priority
// order.
type Rule struct {
	Name     string
	Tool     Tool
	Priority int // higher = checked first
	Decide   func(in Input, ts *tables.Set) *Suggestion
}
