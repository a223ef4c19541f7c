// file: internal/transport/transport_test.go
package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func readAll(t *testing.T, tr Transport) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var out []string
	for {
		msg, err := tr.ReadMessage(ctx)
		if err != nil {
			require.True(t, IsClosedError(err), "Reading should end with a closed error, got %v.", err)
			return out
		}
		out = append(out, string(msg))
	}
}

func TestNDJSONTransport_ReadsLines(t *testing.T) {
	input := "{\"a\":1}\n\n   \n{\"b\":2}\r\n{\"c\":3}"
	tr := NewNDJSONTransport(strings.NewReader(input), &bytes.Buffer{}, nil, nil)

	got := readAll(t, tr)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, got,
		"Blank lines are skipped and a trailing line without newline is delivered.")
	require.NoError(t, tr.Close())
}

func TestNDJSONTransport_OversizedLineIsSkipped(t *testing.T) {
	big := strings.Repeat("x", MaxMessageSize+10)
	input := big + "\n{\"next\":true}\n"
	tr := NewNDJSONTransport(strings.NewReader(input), &bytes.Buffer{}, nil, nil)
	ctx := context.Background()

	_, err := tr.ReadMessage(ctx)
	require.Error(t, err)
	assert.True(t, IsRecoverable(err), "Oversized messages should not end the stream.")

	code, msg, data := MapErrorToJSONRPC(err)
	assert.Equal(t, mcp.INVALID_REQUEST, code)
	assert.Equal(t, "Invalid Request", msg)
	assert.Contains(t, data["detail"], "exceeds limit")

	next, err := tr.ReadMessage(ctx)
	require.NoError(t, err, "The line after an oversized one should still be readable.")
	assert.Equal(t, `{"next":true}`, string(next))

	_, err = tr.ReadMessage(ctx)
	assert.True(t, IsClosedError(err))
	require.NoError(t, tr.Close())
}

func TestNDJSONTransport_WriteAddsNewline(t *testing.T) {
	var out bytes.Buffer
	tr := NewNDJSONTransport(strings.NewReader(""), &out, nil, nil)

	require.NoError(t, tr.WriteMessage(context.Background(), []byte(`{"ok":true}`)))
	require.NoError(t, tr.WriteMessage(context.Background(), []byte(`{"ok":false}`)))
	assert.Equal(t, "{\"ok\":true}\n{\"ok\":false}\n", out.String())

	require.NoError(t, tr.Close())
	err := tr.WriteMessage(context.Background(), []byte(`{}`))
	assert.True(t, IsClosedError(err), "Writes after Close should fail with a closed error.")
	_, err = tr.ReadMessage(context.Background())
	assert.True(t, IsClosedError(err), "Reads after Close should fail with a closed error.")
}

func TestNDJSONTransport_ReadHonorsContext(t *testing.T) {
	tr := NewNDJSONTransport(strings.NewReader("{}\n"), &bytes.Buffer{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.ReadMessage(ctx)
	require.Error(t, err)
	assert.False(t, IsClosedError(err), "A cancelled read is a timeout, not a closed transport.")

	require.NoError(t, tr.Close())
}

func TestInMemoryTransportPair(t *testing.T) {
	pair := NewInMemoryTransportPair()
	ctx := context.Background()

	require.NoError(t, pair.ClientTransport.WriteMessage(ctx, []byte("ping")))
	msg, err := pair.ServerTransport.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(msg))

	require.NoError(t, pair.ServerTransport.WriteMessage(ctx, []byte("pong")))
	msg, err = pair.ClientTransport.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(msg))

	require.NoError(t, pair.ClientTransport.Close())
	_, err = pair.ServerTransport.ReadMessage(ctx)
	assert.True(t, IsClosedError(err), "Closing the client should end the server's input.")

	require.NoError(t, pair.ServerTransport.Close())
	require.NoError(t, pair.ServerTransport.Close(), "Close should be idempotent.")
}
