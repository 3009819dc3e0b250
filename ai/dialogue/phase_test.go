package dialogue

import "testing"

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		name     string
		turn     int
		negative bool
		want     Phase
	}{
		// Non-negative ladder: 0-1 connect, 2-3 listen, 4-5 understand,
		// 6-8 guide, 9+ empower.
		{"turn 0", 0, false, PhaseConnect},
		{"turn 1", 1, false, PhaseConnect},
		{"turn 2", 2, false, PhaseListen},
		{"turn 3", 3, false, PhaseListen},
		{"turn 4", 4, false, PhaseUnderstand},
		{"turn 5", 5, false, PhaseUnderstand},
		{"turn 6", 6, false, PhaseGuide},
		{"turn 7", 7, false, PhaseGuide},
		{"turn 8", 8, false, PhaseGuide},
		{"turn 9", 9, false, PhaseEmpower},
		{"turn 20", 20, false, PhaseEmpower},

		// Negative ladder skips understand entirely: 0-1 connect,
		// 2 listen, 3-4 guide, 5+ empower.
		{"negative turn 0", 0, true, PhaseConnect},
		{"negative turn 1", 1, true, PhaseConnect},
		{"negative turn 2", 2, true, PhaseListen},
		{"negative turn 3", 3, true, PhaseGuide},
		{"negative turn 4", 4, true, PhaseGuide},
		{"negative turn 5", 5, true, PhaseEmpower},
		{"negative turn 20", 20, true, PhaseEmpower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseFor(tt.turn, tt.negative); got != tt.want {
				t.Errorf("PhaseFor(%d, %v) = %q, want %q", tt.turn, tt.negative, got, tt.want)
			}
		})
	}
}

func TestPhaseFor_UnderstandNeverReachedUnderDistress(t *testing.T) {
	for turn := 0; turn <= 30; turn++ {
		if got := PhaseFor(turn, true); got == PhaseUnderstand {
			t.Fatalf("PhaseFor(%d, negative) = understand; the negative ladder must skip it", turn)
		}
	}
}
