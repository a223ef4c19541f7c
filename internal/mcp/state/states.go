// Package state defines the states and events of the server lifecycle.
// file: internal/mcp/state/states.go
package state

import "github.com/dkoosis/manifest-mcp/internal/fsm"

// Lifecycle states.
const (
	StateIdle    fsm.State = "idle"    // Constructed, not yet serving.
	StateServing fsm.State = "serving" // Serve loop running.
	StateStopped fsm.State = "stopped" // Serve loop returned; the server cannot be reused.
)

// IsTerminal reports whether no further transitions are possible from s.
func IsTerminal(s fsm.State) bool {
	return s == StateStopped
}
