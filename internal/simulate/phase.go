package simulate

// Phase is the turn-count-derived conversation stage. It selects the
// instructional suffix injected into prompts and gates ending checks.
type Phase int

const (
	PhaseActive Phase = iota
	PhasePreClosure
	PhaseSoftClosure
	PhaseClosure
	PhaseFinal
)

// Fixed phase boundaries (turn counts).
const (
	preClosureAt  = 16
	softClosureAt = 18
	closureAt     = 20
	finalAt       = 22
)

// phaseFor maps a turn count to its phase.
func phaseFor(turns int) Phase {
	switch {
	case turns < preClosureAt:
		return PhaseActive
	case turns < softClosureAt:
		return PhasePreClosure
	case turns < closureAt:
		return PhaseSoftClosure
	case turns < finalAt:
		return PhaseClosure
	default:
		return PhaseFinal
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhasePreClosure:
		return "pre_closure"
	case PhaseSoftClosure:
		return "soft_closure"
	case PhaseClosure:
		return "closure"
	default:
		return "final"
	}
}

// agentInstruction is the phase-specific guidance injected into agent prompts.
func (p Phase) agentInstruction() string {
	switch p {
	case PhaseActive:
		return "Continue the conversation normally. Focus on understanding their position."
	case PhasePreClosure:
		return "Start summarizing key points naturally. Don't end abruptly."
	case PhaseSoftClosure:
		return "Begin wrapping up by highlighting areas of agreement."
	case PhaseClosure:
		return "Provide a thoughtful closing that acknowledges both perspectives."
	default:
		return "End gracefully with appreciation for the dialogue."
	}
}

// windingDown reports whether subject prompts should hint at wrapping up.
func (p Phase) windingDown() bool {
	return p == PhaseSoftClosure || p == PhaseClosure
}
