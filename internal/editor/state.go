// Package editor provides the map editing session and the terminal event loop.
package editor

// State represents the current editing state.
type State int

const (
	// StateNavigating is the default mode where keys move the cursor and edit tiles.
	StateNavigating State = iota
	// StateAwaitingInput means a label or comment dialog owns the keyboard.
	StateAwaitingInput
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNavigating:
		return "navigating"
	case StateAwaitingInput:
		return "awaiting-input"
	default:
		return "unknown"
	}
}
