package dialogue

// Phase is the current stage of one conversation's arc. It is always
// computed from the turn count and the latest mood, never stored.
type Phase string

const (
	PhaseConnect    Phase = "connect"
	PhaseListen     Phase = "listen"
	PhaseUnderstand Phase = "understand"
	PhaseGuide      Phase = "guide"
	PhaseEmpower    Phase = "empower"
)

// PhaseFor maps a turn count onto the conversational arc.
//
// When the most recent mood is negative the arc shortens and skips the
// understand stage entirely: someone in distress moves from being heard
// straight to being guided. The two ladders are intentionally asymmetric.
func PhaseFor(turnCount int, negativeMood bool) Phase {
	if negativeMood {
		switch {
		case turnCount <= 1:
			return PhaseConnect
		case turnCount == 2:
			return PhaseListen
		case turnCount <= 4:
			return PhaseGuide
		default:
			return PhaseEmpower
		}
	}

	switch {
	case turnCount <= 1:
		return PhaseConnect
	case turnCount <= 3:
		return PhaseListen
	case turnCount <= 5:
		return PhaseUnderstand
	case turnCount <= 8:
		return PhaseGuide
	default:
		return PhaseEmpower
	}
}
