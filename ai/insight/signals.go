package insight

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Intensity is a reactivity-marker value in [0,1]. On the wire it is
// accepted either as a bare number or as an object carrying an
// "intensity" field; both shapes are in circulation.
type Intensity float64

// UnmarshalJSON implements the two accepted wire shapes.
func (i *Intensity) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*i = Intensity(n)
		return nil
	}
	var wrapped struct {
		Intensity float64 `json:"intensity"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return errors.Wrap(err, "reactivity marker")
	}
	*i = Intensity(wrapped.Intensity)
	return nil
}

// SessionSignals is one session's aggregated evidence, produced by a
// Collector (or supplied directly over the API) and consumed by Merge.
// Every field may be empty; an all-empty summary is a valid session.
type SessionSignals struct {
	ThemesDetected        []string             `json:"themesDetected"`
	GrowthSignalsDetected []string             `json:"growthSignalsDetected"`
	ReactivityMarkers     map[string]Intensity `json:"reactivityMarkers"`
	AwarenessIndicators   []string             `json:"awarenessIndicators"`
	SteadinessObserved    *float64             `json:"steadinessObserved"`
}
