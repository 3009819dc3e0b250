package insight

import (
	"math"
	"time"
)

const (
	// Theme weights move in reinforceStep increments and never drop
	// below weightFloor once a theme exists.
	reinforceStep = 0.05
	weightFloor   = 0.05

	// A theme unseen for decayGap sessions loses decayFactor of its
	// weight on each further merge.
	decayGap    = 5
	decayFactor = 0.85

	// growthStep is added to a growth signal's level on each
	// consecutive re-observation.
	growthStep = 0.03

	// Reactivity and steadiness blend as exponential moving averages;
	// the carry is the share the prior value keeps.
	reactivityCarry = 0.85
	steadinessCarry = 0.88

	// trendDelta is how far an observation must sit from the prior
	// smoothed intensity to count as escalating or softening.
	trendDelta = 0.1

	// awarenessRate controls the asymptotic approach toward 1.
	awarenessRate = 0.1

	// initialSteadiness seeds a fresh scaffold at the midpoint.
	initialSteadiness = 0.5
)

// Merge folds one session's signals into prev and returns a new
// profile. prev is never mutated. A nil prev starts from a fresh
// scaffold; a nil sig counts as an empty session. SessionCount
// advances and LastUpdated refreshes on every merge, empty or not.
func Merge(prev *Profile, sig *SessionSignals, now time.Time) *Profile {
	next := prev.Clone()
	if sig == nil {
		sig = &SessionSignals{}
	}
	session := next.SessionCount + 1

	mergeThemes(next, sig.ThemesDetected, session)
	mergeGrowth(next, sig.GrowthSignalsDetected, session)
	mergeReactivity(next, sig.ReactivityMarkers, session)
	mergeAwareness(next, sig.AwarenessIndicators)
	if sig.SteadinessObserved != nil {
		observed := clamp01(*sig.SteadinessObserved)
		next.Steadiness = clamp01(next.Steadiness*steadinessCarry + observed*(1-steadinessCarry))
	}

	next.SessionCount = session
	next.LastUpdated = now
	return next
}

// mergeThemes reinforces every detected theme and decays themes that
// have been absent for decayGap sessions or longer. Keys only ever
// come from the previous profile or this session's detections.
func mergeThemes(p *Profile, detected []string, session int) {
	seen := make(map[string]bool, len(detected))
	for _, name := range detected {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		st, ok := p.Themes[name]
		if !ok {
			p.Themes[name] = ThemeState{
				Weight:           reinforceStep,
				FirstSeenSession: session,
				LastSeenSession:  session,
				OccurrenceCount:  1,
			}
			continue
		}
		st.Weight = math.Min(1, st.Weight+reinforceStep)
		st.OccurrenceCount++
		st.LastSeenSession = session
		p.Themes[name] = st
	}
	for name, st := range p.Themes {
		if seen[name] {
			continue
		}
		if session-st.LastSeenSession >= decayGap {
			st.Weight = math.Max(weightFloor, st.Weight*decayFactor)
			p.Themes[name] = st
		}
	}
}

// mergeGrowth seeds new signals at level zero and raises level only
// when the signal was also confirmed in the immediately preceding
// session. A gap resets the streak and leaves the level alone.
func mergeGrowth(p *Profile, detected []string, session int) {
	seen := make(map[string]bool, len(detected))
	for _, name := range detected {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		g, ok := p.GrowthSignals[name]
		if !ok {
			p.GrowthSignals[name] = GrowthSignal{
				ConsecutiveSessions:  1,
				LastConfirmedSession: session,
			}
			continue
		}
		if g.LastConfirmedSession == session-1 {
			g.ConsecutiveSessions++
			g.Level = math.Min(1, g.Level+growthStep)
		} else {
			g.ConsecutiveSessions = 1
		}
		g.LastConfirmedSession = session
		p.GrowthSignals[name] = g
	}
}

// mergeReactivity blends observed markers into the smoothed intensity
// and softens every known pattern the session did not mention. Trend
// compares the raw observation against the intensity before blending.
func mergeReactivity(p *Profile, markers map[string]Intensity, session int) {
	for name, raw := range markers {
		if name == "" {
			continue
		}
		observed := clamp01(float64(raw))
		r, ok := p.Reactivity[name]
		if !ok {
			p.Reactivity[name] = ReactivityPattern{
				Intensity:       observed,
				Trend:           TrendStable,
				SessionCount:    1,
				LastSeenSession: session,
			}
			continue
		}
		switch {
		case observed > r.Intensity+trendDelta:
			r.Trend = TrendEscalating
		case observed < r.Intensity-trendDelta:
			r.Trend = TrendSoftening
		default:
			r.Trend = TrendStable
		}
		r.Intensity = clamp01(r.Intensity*reactivityCarry + observed*(1-reactivityCarry))
		r.SessionCount++
		r.LastSeenSession = session
		p.Reactivity[name] = r
	}
	for name, r := range p.Reactivity {
		if _, ok := markers[name]; ok {
			continue
		}
		r.Intensity = clamp01(r.Intensity * reactivityCarry)
		r.Trend = TrendSoftening
		p.Reactivity[name] = r
	}
}

// mergeAwareness nudges each indicated area toward 1; areas not
// indicated this session stay where they are.
func mergeAwareness(p *Profile, indicators []string) {
	seen := make(map[string]bool, len(indicators))
	for _, area := range indicators {
		if area == "" || seen[area] {
			continue
		}
		seen[area] = true
		old := p.Awareness[area]
		p.Awareness[area] = clamp01(old + awarenessRate*(1-old))
	}
}

// clamp01 bounds v to [0,1]; NaN collapses to 0 so malformed input
// can never poison a stored profile.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
