package engine

import "fmt"

// Phase is the session phase of the engine.
type Phase int

const (
	PhaseMenu     Phase = iota // Title screen, nothing simulated
	PhasePlaying               // Ticks advance the simulation
	PhasePaused                // Frozen until resumed
	PhaseGameOver              // Lives exhausted, waiting for restart or quit
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
