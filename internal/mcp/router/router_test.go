// file: internal/mcp/router/router_test.go
package router

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
)

var errHandler = errors.New("handler failed")

func echoHandler(method string) Handler {
	return func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		return json.Marshal(map[string]string{"method": method, "params": string(params)})
	}
}

func failingHandler(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return nil, errHandler
}

func countingNotification(counter *atomic.Int32) NotificationHandler {
	return func(_ context.Context, _ json.RawMessage) error {
		counter.Add(1)
		return nil
	}
}

func requireCode(t *testing.T, want mcperrors.ErrorCode, err error) {
	t.Helper()
	var base *mcperrors.BaseError
	require.True(t, errors.As(err, &base), "Expected an MCP error, got %T.", err)
	assert.Equal(t, want, base.Code)
}

func TestRouter_AddRoute(t *testing.T) {
	r := NewRouter(logging.GetNoopLogger())

	require.NoError(t, r.AddRoute(Route{Method: "prompts/list", Handler: echoHandler("prompts/list")}))
	require.NoError(t, r.AddRoute(Route{Method: "notifications/initialized", NotificationHandler: func(context.Context, json.RawMessage) error { return nil }}))

	err := r.AddRoute(Route{Method: "prompts/list", Handler: echoHandler("again")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	err = r.AddRoute(Route{Method: "resources/read"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have at least one handler")

	err = r.AddRoute(Route{Handler: echoHandler("")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty method name")

	assert.Equal(t, []string{"notifications/initialized", "prompts/list"}, r.GetRoutes(), "Routes are listed in sorted order.")
	assert.True(t, r.HasRoute("prompts/list"))
	assert.False(t, r.HasRoute("tools/list"))
}

func TestRouter_RouteRequest(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "prompts/get", Handler: echoHandler("prompts/get")}))

	out, err := r.Route(context.Background(), "prompts/get", json.RawMessage(`{"name":"a"}`), false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"prompts/get","params":"{\"name\":\"a\"}"}`, string(out))

	out, err = r.Route(context.Background(), "tools/list", nil, false)
	assert.Nil(t, out)
	requireCode(t, mcperrors.ErrMethodNotFound, err)
}

func TestRouter_RouteNotification(t *testing.T) {
	r := NewRouter(nil)
	var count atomic.Int32
	require.NoError(t, r.AddRoute(Route{Method: "notifications/initialized", NotificationHandler: countingNotification(&count)}))
	require.NoError(t, r.AddRoute(Route{Method: "prompts/list", Handler: echoHandler("prompts/list")}))

	out, err := r.Route(context.Background(), "notifications/initialized", nil, true)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, int32(1), count.Load())

	out, err = r.Route(context.Background(), "prompts/list", nil, true)
	require.NoError(t, err, "A request handler may serve a notification.")
	assert.Nil(t, out, "The result is discarded for notifications.")

	_, err = r.Route(context.Background(), "notifications/initialized", nil, false)
	requireCode(t, mcperrors.ErrMethodNotFound, err)
}

func TestRouter_PropagatesHandlerErrors(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "resources/read", Handler: failingHandler}))

	_, err := r.Route(context.Background(), "resources/read", nil, false)
	assert.ErrorIs(t, err, errHandler)
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	r := NewRouter(nil)
	require.NoError(t, r.AddRoute(Route{Method: "prompts/get", Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
		panic("nil map")
	}}))

	out, err := r.Route(context.Background(), "prompts/get", nil, false)
	assert.Nil(t, out)
	requireCode(t, mcperrors.ErrInternalError, err)
	assert.Contains(t, err.Error(), "panicked")
}
