// file: internal/mcp/mcp_server_error_handling_test.go
package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
)

func TestExtractRequestID(t *testing.T) {
	logger := logging.GetNoopLogger()
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"NumberID", `{"id":42,"method":"x"}`, `42`},
		{"StringID", `{"id":"abc","method":"x"}`, `"abc"`},
		{"NullID", `{"id":null}`, `null`},
		{"MissingID", `{"method":"x"}`, `null`},
		{"ObjectID", `{"id":{"a":1}}`, `null`},
		{"ArrayID", `{"id":[1]}`, `null`},
		{"Unparsable", `{"id":`, `null`},
		{"NotAnObject", `[1,2]`, `null`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(extractRequestID(logger, []byte(tc.msg))))
		})
	}
}

func TestCreateErrorResponse(t *testing.T) {
	s := &Server{logger: logging.GetNoopLogger()}

	out, err := s.createErrorResponse([]byte(`{"jsonrpc":"2.0","id":9,"method":"prompts/get"}`), mcperrors.NewPromptNotFoundError("missing"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":9,"error":{"code":-32602,"message":"Prompt not found","data":{"name":"missing"}}}`, string(out))

	out, err = s.createErrorResponse([]byte(`{"id":1}`), mcperrors.NewParseError("bad", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"error":{"code":-32700,"message":"Parse error"}}`, string(out),
		"An empty data map is omitted.")

	out, err = s.createErrorResponse([]byte(`{"jsonrpc":"2.0","id":"a","method":"x"}`), mcperrors.NewMethodNotFoundError("x"))
	require.NoError(t, err)
	var resp struct {
		ID    json.RawMessage `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, `"a"`, string(resp.ID))
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Equal(t, "Method not found", resp.Error.Message)
}
