package states

import "fmt"

// GamePhase represents the current phase of a simulation
type GamePhase int

const (
	// PhaseNotStarted - history holds only the opening board
	PhaseNotStarted GamePhase = iota

	// PhaseRunning - moves are being resolved
	PhaseRunning

	// PhaseFinished - a winner or a tie was declared
	PhaseFinished

	// PhaseAborted - a fatal error stopped the simulation
	PhaseAborted
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseRunning:
		return "Running"
	case PhaseFinished:
		return "Finished"
	case PhaseAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseFinished || p == PhaseAborted
}

// CanReceiveMoves returns true if the simulation may resolve moves in this phase
func (p GamePhase) CanReceiveMoves() bool {
	return p == PhaseNotStarted || p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseNotStarted:
		return []GamePhase{PhaseRunning, PhaseAborted}
	case PhaseRunning:
		return []GamePhase{PhaseFinished, PhaseAborted}
	case PhaseFinished, PhaseAborted:
		return []GamePhase{PhaseNotStarted}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	switch s {
	case "NotStarted":
		return PhaseNotStarted, nil
	case "Running":
		return PhaseRunning, nil
	case "Finished":
		return PhaseFinished, nil
	case "Aborted":
		return PhaseAborted, nil
	default:
		return PhaseNotStarted, fmt.Errorf("unknown phase %q", s)
	}
}
