// Package game provides the main simulation loop and state management.
package game

// State represents the current game state.
type State int

const (
	// StatePlaying advances the simulation every tick.
	StatePlaying State = iota
	// StatePaused freezes every behaviour; tools can still be moved.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
