// file: internal/middleware/chain_test.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	mcptypes "github.com/dkoosis/manifest-mcp/internal/mcp_types"
)

func tag(name string, order *[]string) mcptypes.MiddlewareFunc {
	return func(next mcptypes.MessageHandler) mcptypes.MessageHandler {
		return func(ctx context.Context, msg []byte) ([]byte, error) {
			*order = append(*order, name)
			return next(ctx, msg)
		}
	}
}

func TestChain_OrderAndFinalize(t *testing.T) {
	var order []string
	final := func(_ context.Context, msg []byte) ([]byte, error) {
		order = append(order, "final")
		return bytes.ToUpper(msg), nil
	}

	chain := NewChain(final).Use(tag("outer", &order)).Use(tag("inner", &order))
	h := chain.Handler()

	out, err := h(context.Background(), []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ABC", string(out))
	assert.Equal(t, []string{"outer", "inner", "final"}, order, "The first middleware added runs outermost.")

	order = nil
	_, _ = chain.Handler()(context.Background(), []byte("x"))
	assert.Equal(t, []string{"outer", "inner", "final"}, order, "A finalized chain returns the same handler.")
}

func TestTracing_PassesThroughWithSpan(t *testing.T) {
	var spanCtx trace.SpanContext
	final := func(ctx context.Context, msg []byte) ([]byte, error) {
		spanCtx = trace.SpanContextFromContext(ctx)
		return msg, nil
	}
	h := NewChain(final).Use(Tracing(noop.NewTracerProvider())).Handler()

	out, err := h(context.Background(), []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, "ping", string(out))
	assert.False(t, spanCtx.IsSampled(), "The no-op provider never samples.")

	failing := NewChain(func(context.Context, []byte) ([]byte, error) {
		return nil, errors.New("boom")
	}).Use(Tracing(nil)).Handler()
	_, err = failing(context.Background(), nil)
	assert.EqualError(t, err, "boom", "Errors are returned unchanged.")
}

func TestLogging_WritesEntries(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLevel(logging.LevelDebug)
	t.Cleanup(func() { logging.SetLevel(logging.LevelInfo) })
	logger := logging.NewLogger(&buf, logging.FormatJSON)

	h := NewChain(func(_ context.Context, msg []byte) ([]byte, error) {
		return msg, nil
	}).Use(Logging(logger)).Handler()
	_, err := h(context.Background(), []byte(`{"x":1}`))
	require.NoError(t, err)

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "Message handled.", entry["msg"])
	assert.Equal(t, "message_log", entry["component"])
	assert.EqualValues(t, 7, entry["requestSize"])
}
