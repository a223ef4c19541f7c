// file: internal/mcp/state/machine.go
package state

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/manifest-mcp/internal/fsm"
	"github.com/dkoosis/manifest-mcp/internal/logging"
)

// ErrAlreadyServing is returned when Serve is called on a server that is
// serving or has stopped.
var ErrAlreadyServing = errors.New("server is already serving or has stopped")

// Lifecycle tracks whether a server is idle, serving or stopped.
type Lifecycle struct {
	fsm.FSM
	logger logging.Logger
}

// NewLifecycle builds the lifecycle machine in the idle state.
func NewLifecycle(logger logging.Logger) (*Lifecycle, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "lifecycle")

	m := fsm.NewFSM(StateIdle, log)
	m.AddTransition(fsm.Transition{
		From:  []fsm.State{StateIdle},
		Event: EventServe,
		To:    StateServing,
	})
	m.AddTransition(fsm.Transition{
		From:  []fsm.State{StateIdle, StateServing},
		Event: EventStop,
		To:    StateStopped,
	})

	if err := m.Build(); err != nil {
		return nil, errors.Wrap(err, "failed to build lifecycle state machine")
	}
	return &Lifecycle{FSM: m, logger: log}, nil
}

// Start moves the machine from idle to serving. It fails with
// ErrAlreadyServing from any other state.
func (l *Lifecycle) Start(ctx context.Context) error {
	if !l.CanTransition(EventServe) {
		l.logger.Warn("Refusing to serve twice.", "state", l.CurrentState())
		return errors.WithStack(ErrAlreadyServing)
	}
	return l.Transition(ctx, EventServe, nil)
}

// Stop moves the machine to stopped. Stopping twice is a no-op.
func (l *Lifecycle) Stop(ctx context.Context) error {
	if IsTerminal(l.CurrentState()) {
		return nil
	}
	return l.Transition(ctx, EventStop, nil)
}
