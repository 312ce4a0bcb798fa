package core

// Phase is the game loop state.
type Phase int

const (
	PhaseIdle       Phase = iota // Waiting for the first start
	PhaseRunning                 // Frames are being simulated
	PhaseEliminated              // Idle after a collision, start re-enters Running
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseEliminated:
		return "eliminated"
	default:
		return "unknown"
	}
}

// GameState is a snapshot of the game for the host.
type GameState struct {
	Score int   // Displayed score (floor of the accumulator)
	Best  int   // Best score, persisted
	Phase Phase // Loop state
}

// Running reports whether frames are being simulated.
func (s GameState) Running() bool {
	return s.Phase == PhaseRunning
}

// StepResult is returned by Game.Update() after each frame.
type StepResult struct {
	State GameState
	// Eliminated is set only on the frame that ended the run.
	Eliminated bool
}
