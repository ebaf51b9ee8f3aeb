package game

// Phase is the lifecycle position of a session.
type Phase string

const (
	PhaseIdle     Phase = "idle"     // created or acknowledged, waiting for Start
	PhaseRunning  Phase = "running"  // countdown active, guesses accepted
	PhaseFinished Phase = "finished" // time expired, waiting for acknowledgement
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a move from p to target is part of the lifecycle.
func (p Phase) CanTransitionTo(target Phase) bool {
	switch p {
	case PhaseIdle:
		return target == PhaseRunning
	case PhaseRunning:
		// restart keeps the session running
		return target == PhaseRunning || target == PhaseFinished
	case PhaseFinished:
		return target == PhaseIdle
	}
	return false
}
