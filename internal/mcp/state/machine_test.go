// file: internal/mcp/state/machine_test.go
package state

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/manifest-mcp/internal/logging"
)

func newLifecycle(t *testing.T) *Lifecycle {
	t.Helper()
	l, err := NewLifecycle(logging.GetNoopLogger())
	require.NoError(t, err, "Building the lifecycle should succeed.")
	return l
}

func TestLifecycle_StartsIdle(t *testing.T) {
	l := newLifecycle(t)
	assert.Equal(t, StateIdle, l.CurrentState())
	assert.True(t, l.CanTransition(EventServe))
	assert.False(t, IsTerminal(l.CurrentState()))
}

func TestLifecycle_ServeThenStop(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	require.NoError(t, l.Start(ctx))
	assert.Equal(t, StateServing, l.CurrentState())

	require.NoError(t, l.Stop(ctx))
	assert.Equal(t, StateStopped, l.CurrentState())
	assert.True(t, IsTerminal(l.CurrentState()))

	assert.NoError(t, l.Stop(ctx), "Stopping twice is a no-op.")
}

func TestLifecycle_CannotServeTwice(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)
	require.NoError(t, l.Start(ctx))

	err := l.Start(ctx)
	assert.True(t, errors.Is(err, ErrAlreadyServing), "A serving server refuses to serve again.")

	require.NoError(t, l.Stop(ctx))
	err = l.Start(ctx)
	assert.True(t, errors.Is(err, ErrAlreadyServing), "A stopped server cannot be restarted.")
}

func TestLifecycle_StopBeforeServe(t *testing.T) {
	ctx := context.Background()
	l := newLifecycle(t)

	require.NoError(t, l.Stop(ctx))
	assert.Equal(t, StateStopped, l.CurrentState())
	assert.Error(t, l.Start(ctx))
}
