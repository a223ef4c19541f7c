// Package fsm provides a small finite state machine built on looplab/fsm.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"

	"github.com/dkoosis/manifest-mcp/internal/logging"
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// TransitionAction runs after a transition completes.
type TransitionAction func(ctx context.Context, event Event, data interface{}) error

// GuardCondition decides whether a transition may proceed.
type GuardCondition func(ctx context.Context, event Event, data interface{}) bool

// Transition defines a transition rule between states.
type Transition struct {
	From      []State
	To        State
	Event     Event
	Action    TransitionAction
	Condition GuardCondition
}

// FSM is the state machine interface used by the server lifecycle.
type FSM interface {
	// AddTransition stores a transition definition. Call Build after adding all transitions.
	AddTransition(transition Transition) FSM
	// Build creates the underlying machine.
	Build() error
	// CurrentState returns the current state, or "" before Build.
	CurrentState() State
	// CanTransition reports whether event is allowed from the current state.
	CanTransition(event Event) bool
	// Transition fires event, passing data to guards and actions.
	Transition(ctx context.Context, event Event, data interface{}) error
}

type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition
	fsm          *lfsm.FSM
	buildErr     error
	mu           sync.RWMutex
}

// NewFSM creates an FSM builder with the given initial state.
func NewFSM(initialState State, logger logging.Logger) FSM {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &loopFSM{
		initialState: initialState,
		logger:       logger.WithField("component", "fsm"),
	}
}

// AddTransition stores a transition definition to be used during Build.
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.fsm != nil:
		l.setBuildErr(errors.New("cannot AddTransition after Build"))
	case len(t.From) == 0:
		l.setBuildErr(errors.Newf("transition for event '%s' has no source states", t.Event))
	default:
		l.transitions = append(l.transitions, t)
	}
	return l
}

func (l *loopFSM) setBuildErr(err error) {
	l.logger.Error("Invalid FSM configuration.", "error", err)
	if l.buildErr == nil {
		l.buildErr = err
	}
}

// Build finalizes the configuration. Calling it again is a no-op.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil || l.buildErr != nil {
		return l.buildErr
	}

	descs := make(map[string]*lfsm.EventDesc)
	order := make([]string, 0, len(l.transitions))
	callbacks := make(lfsm.Callbacks)

	for _, t := range l.transitions {
		name := string(t.Event)
		desc, ok := descs[name]
		if !ok {
			desc = &lfsm.EventDesc{Name: name, Dst: string(t.To)}
			descs[name] = desc
			order = append(order, name)
		} else if desc.Dst != string(t.To) {
			l.buildErr = errors.Newf("conflicting destinations ('%s' and '%s') for event '%s'", desc.Dst, t.To, name)
			return l.buildErr
		}
		for _, s := range t.From {
			desc.Src = appendUnique(desc.Src, string(s))
		}
	}

	for _, name := range order {
		event := Event(name)
		callbacks["before_"+name] = l.guardCallback(event)
		callbacks["after_"+name] = l.actionCallback(event)
	}

	events := make([]lfsm.EventDesc, 0, len(order))
	for _, name := range order {
		events = append(events, *descs[name])
	}

	l.fsm = lfsm.NewFSM(string(l.initialState), events, callbacks)
	l.logger.Debug("FSM built.", "initialState", l.initialState, "events", len(events))
	return nil
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// matching returns the transitions for event that start in src.
func (l *loopFSM) matching(event Event, src string) []Transition {
	var out []Transition
	for _, t := range l.transitions {
		if t.Event != event {
			continue
		}
		for _, from := range t.From {
			if string(from) == src {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func eventData(e *lfsm.Event) interface{} {
	if len(e.Args) > 0 {
		return e.Args[0]
	}
	return nil
}

func (l *loopFSM) guardCallback(event Event) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		for _, t := range l.matching(event, e.Src) {
			if t.Condition != nil && !t.Condition(ctx, event, eventData(e)) {
				l.logger.Debug("Guard condition failed.", "event", event, "from", e.Src)
				e.Cancel(errors.Newf("guard condition for event '%s' from state '%s' failed", event, e.Src))
				return
			}
		}
	}
}

func (l *loopFSM) actionCallback(event Event) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		for _, t := range l.matching(event, e.Src) {
			if t.Action == nil {
				continue
			}
			if err := t.Action(ctx, event, eventData(e)); err != nil {
				l.logger.Error("Error executing transition action.", "event", event, "to", t.To, "error", err)
			}
		}
	}
}

// CurrentState returns the current state of the FSM.
func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return ""
	}
	return State(l.fsm.Current())
}

// CanTransition reports whether event can fire from the current state.
func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return false
	}
	return l.fsm.Can(string(event))
}

// Transition fires event. Guards see data; actions run after the state changes.
func (l *loopFSM) Transition(ctx context.Context, event Event, data interface{}) error {
	l.mu.RLock()
	machine := l.fsm
	buildErr := l.buildErr
	l.mu.RUnlock()

	if machine == nil {
		if buildErr == nil {
			buildErr = errors.New("fsm not built")
		}
		return buildErr
	}

	from := machine.Current()
	var args []interface{}
	if data != nil {
		args = append(args, data)
	}

	if err := machine.Event(ctx, string(event), args...); err != nil {
		l.logger.Debug("FSM transition failed.", "event", event, "from", from, "error", err)
		return errors.Wrapf(err, "transition '%s' from '%s'", event, from)
	}

	l.logger.Debug("FSM transition succeeded.", "event", event, "from", from, "to", machine.Current())
	return nil
}
