// Package fsm_test tests the FSM wrapper.
package fsm

// file: internal/fsm/fsm_test.go

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	lfsm "github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/manifest-mcp/internal/logging"
)

const (
	StateIdle     State = "idle"
	StateServing  State = "serving"
	StateDraining State = "draining"
	StateStopped  State = "stopped"

	EventStart Event = "start"
	EventDrain Event = "drain"
	EventStop  Event = "stop"
	EventForce Event = "force"
)

func buildTestFSM(t *testing.T) FSM {
	t.Helper()
	machine := NewFSM(StateIdle, logging.GetNoopLogger())
	machine.AddTransition(Transition{From: []State{StateIdle}, Event: EventStart, To: StateServing})
	machine.AddTransition(Transition{From: []State{StateServing}, Event: EventDrain, To: StateDraining})
	machine.AddTransition(Transition{From: []State{StateIdle, StateServing, StateDraining}, Event: EventStop, To: StateStopped})
	require.NoError(t, machine.Build(), "Failed to build test FSM.")
	return machine
}

func TestFSM_Build_IsIdempotent(t *testing.T) {
	machine := NewFSM(StateIdle, nil)
	require.NoError(t, machine.Build())
	require.NoError(t, machine.Build(), "Calling Build() twice should not error.")
	assert.Equal(t, StateIdle, machine.CurrentState())
}

func TestFSM_CurrentStateBeforeBuild(t *testing.T) {
	machine := NewFSM(StateIdle, nil)
	assert.Equal(t, State(""), machine.CurrentState(), "An unbuilt FSM has no state.")
	assert.False(t, machine.CanTransition(EventStart))
	assert.Error(t, machine.Transition(context.Background(), EventStart, nil))
}

func TestFSM_BasicTransitions_Succeeds(t *testing.T) {
	machine := buildTestFSM(t)
	ctx := context.Background()

	assert.Equal(t, StateIdle, machine.CurrentState(), "Initial state should be idle.")
	require.NoError(t, machine.Transition(ctx, EventStart, nil))
	assert.Equal(t, StateServing, machine.CurrentState())
	require.NoError(t, machine.Transition(ctx, EventDrain, nil))
	require.NoError(t, machine.Transition(ctx, EventStop, nil))
	assert.Equal(t, StateStopped, machine.CurrentState())
}

func TestFSM_SharedEventFromSeveralStates(t *testing.T) {
	machine := buildTestFSM(t)
	require.NoError(t, machine.Transition(context.Background(), EventStop, nil),
		"Stop is allowed straight from idle.")
	assert.Equal(t, StateStopped, machine.CurrentState())
}

func TestFSM_InvalidTransition_ReturnsError(t *testing.T) {
	machine := buildTestFSM(t)

	assert.False(t, machine.CanTransition(EventDrain), "Drain is not defined from idle.")
	err := machine.Transition(context.Background(), EventDrain, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inappropriate in current state")

	var invalid lfsm.InvalidEventError
	assert.True(t, errors.As(err, &invalid), "The looplab error should remain reachable.")
	assert.Equal(t, StateIdle, machine.CurrentState(), "State should remain idle.")
}

func TestFSM_TransitionWithAction_ExecutesAction(t *testing.T) {
	machine := NewFSM(StateIdle, nil)
	var executed atomic.Bool

	action := func(_ context.Context, event Event, data interface{}) error {
		executed.Store(true)
		assert.Equal(t, EventStart, event)
		assert.Equal(t, "payload", data)
		return nil
	}
	machine.AddTransition(Transition{From: []State{StateIdle}, Event: EventStart, To: StateServing, Action: action})
	require.NoError(t, machine.Build())

	require.NoError(t, machine.Transition(context.Background(), EventStart, "payload"))
	assert.Equal(t, StateServing, machine.CurrentState())
	assert.True(t, executed.Load(), "Transition action should have run.")
}

func TestFSM_TransitionWithFailingAction_StillTransitions(t *testing.T) {
	machine := NewFSM(StateIdle, nil)
	action := func(_ context.Context, _ Event, _ interface{}) error {
		return fmt.Errorf("action failed deliberately")
	}
	machine.AddTransition(Transition{From: []State{StateIdle}, Event: EventStart, To: StateServing, Action: action})
	require.NoError(t, machine.Build())

	require.NoError(t, machine.Transition(context.Background(), EventStart, nil),
		"Action failures are logged, not returned.")
	assert.Equal(t, StateServing, machine.CurrentState())
}

func TestFSM_TransitionWithGuard_AllowsAndBlocks(t *testing.T) {
	var allow atomic.Bool
	guard := func(_ context.Context, event Event, data interface{}) bool {
		assert.Equal(t, EventForce, event)
		assert.Equal(t, "force data", data)
		return allow.Load()
	}

	machine := NewFSM(StateIdle, nil)
	machine.AddTransition(Transition{From: []State{StateIdle}, Event: EventForce, To: StateServing, Condition: guard})
	require.NoError(t, machine.Build())
	ctx := context.Background()

	allow.Store(false)
	err := machine.Transition(ctx, EventForce, "force data")
	require.Error(t, err, "Transition should fail when the guard refuses.")
	var canceled lfsm.CanceledError
	assert.True(t, errors.As(err, &canceled), "A refused guard surfaces as a CanceledError.")
	assert.Equal(t, StateIdle, machine.CurrentState())

	allow.Store(true)
	require.NoError(t, machine.Transition(ctx, EventForce, "force data"))
	assert.Equal(t, StateServing, machine.CurrentState())
}

func TestFSM_Build_Fails_When_ConflictingDestinations(t *testing.T) {
	machine := NewFSM(StateIdle, nil)
	machine.AddTransition(Transition{From: []State{StateIdle}, Event: EventStart, To: StateServing})
	machine.AddTransition(Transition{From: []State{StateIdle}, Event: EventStart, To: StateDraining})

	err := machine.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting destinations")
}

func TestFSM_Build_Fails_When_MissingFromState(t *testing.T) {
	machine := NewFSM(StateIdle, nil)
	machine.AddTransition(Transition{Event: EventStart, To: StateServing})

	err := machine.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source states")
}
