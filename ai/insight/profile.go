// Package insight maintains the durable inner-state profile, the one
// record that outlives a single conversation. A profile changes only
// through Merge, which folds one session's aggregated signals into a
// deep copy of the previous profile; everything else reads it.
package insight

import "time"

// Trend labels the direction a reactivity pattern is moving in.
type Trend string

const (
	TrendEscalating Trend = "escalating"
	TrendSoftening  Trend = "softening"
	TrendStable     Trend = "stable"
)

// ThemeState tracks one recurring concern. Weight lives in
// [weightFloor, 1] from the moment the theme first appears.
type ThemeState struct {
	Weight           float64 `json:"weight"`
	FirstSeenSession int     `json:"firstSeenSession"`
	LastSeenSession  int     `json:"lastSeenSession"`
	OccurrenceCount  int     `json:"occurrenceCount"`
}

// GrowthSignal tracks an emerging positive capacity. Level rises only
// on consecutive sightings; an observation gap resets the streak but
// never the accumulated level.
type GrowthSignal struct {
	Level                float64 `json:"level"`
	ConsecutiveSessions  int     `json:"consecutiveSessions"`
	LastConfirmedSession int     `json:"lastConfirmedSession"`
}

// ReactivityPattern tracks an emotional-intensity signal blended
// session to session with a directional trend label.
type ReactivityPattern struct {
	Intensity       float64 `json:"intensity"`
	Trend           Trend   `json:"trend"`
	SessionCount    int     `json:"sessionCount"`
	LastSeenSession int     `json:"lastSeenSession"`
}

// Profile is the durable inner-state record for one user.
type Profile struct {
	Themes        map[string]ThemeState        `json:"themes"`
	GrowthSignals map[string]GrowthSignal      `json:"growthSignals"`
	Reactivity    map[string]ReactivityPattern `json:"reactivity"`
	Awareness     map[string]float64           `json:"awareness"`
	Steadiness    float64                      `json:"steadiness"`
	SessionCount  int                          `json:"sessionCount"`
	LastUpdated   time.Time                    `json:"lastUpdated"`
}

// NewProfile returns an empty scaffold with no sessions merged yet.
func NewProfile() *Profile {
	return &Profile{
		Themes:        map[string]ThemeState{},
		GrowthSignals: map[string]GrowthSignal{},
		Reactivity:    map[string]ReactivityPattern{},
		Awareness:     map[string]float64{},
		Steadiness:    initialSteadiness,
	}
}

// Clone returns a deep copy sharing no mutable state with p.
// A nil receiver clones to a fresh scaffold.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return NewProfile()
	}
	out := &Profile{
		Themes:        make(map[string]ThemeState, len(p.Themes)),
		GrowthSignals: make(map[string]GrowthSignal, len(p.GrowthSignals)),
		Reactivity:    make(map[string]ReactivityPattern, len(p.Reactivity)),
		Awareness:     make(map[string]float64, len(p.Awareness)),
		Steadiness:    p.Steadiness,
		SessionCount:  p.SessionCount,
		LastUpdated:   p.LastUpdated,
	}
	for name, st := range p.Themes {
		out.Themes[name] = st
	}
	for name, g := range p.GrowthSignals {
		out.GrowthSignals[name] = g
	}
	for name, r := range p.Reactivity {
		out.Reactivity[name] = r
	}
	for area, v := range p.Awareness {
		out.Awareness[area] = v
	}
	return out
}
