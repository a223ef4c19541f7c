// file: internal/mcp/state/events.go
package state

import "github.com/dkoosis/manifest-mcp/internal/fsm"

// Lifecycle events.
const (
	EventServe fsm.Event = "serve" // Serve was called.
	EventStop  fsm.Event = "stop"  // The serve loop ended or the server was shut down before serving.
)
